package apperror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMap_AddError(t *testing.T) {
	m := NewErrorMap[string, string]()
	m.AddError("username", "Missing field").
		AddError("email", "Missing field").
		AddError("username", "too short")

	assert.Equal(t, []string{"username", "email"}, m.Keys())
	assert.Equal(t, 2, m.Len())

	got, ok := m.Get("username")
	require.True(t, ok)
	assert.Equal(t, []string{"Missing field", "too short"}, got)

	got, ok = m.Get("email")
	require.True(t, ok)
	assert.Equal(t, []string{"Missing field"}, got)

	_, ok = m.Get("password")
	assert.False(t, ok)
}

func TestErrorMap_KeySetMatchesCalls(t *testing.T) {
	calls := []struct{ key, value string }{
		{"a", "1"}, {"b", "2"}, {"a", "3"}, {"c", "4"}, {"b", "5"}, {"a", "6"},
	}

	m := NewErrorMap[string, string]()
	want := map[string][]string{}
	for _, c := range calls {
		m.AddError(c.key, c.value)
		want[c.key] = append(want[c.key], c.value)
	}

	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())
	for key, values := range want {
		got, ok := m.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, values, got, key)
	}
}

func TestErrorMap_ZeroValue(t *testing.T) {
	var m ErrorMap[string, int]
	assert.True(t, m.IsEmpty())

	m.AddError("x", 1)
	assert.False(t, m.IsEmpty())

	got, _ := m.Get("x")
	assert.Equal(t, []int{1}, got)
}

func TestErrorMap_Merge(t *testing.T) {
	a := NewFieldErrors().
		AddError("username", "Invalid field").
		AddError("nickname", "Invalid field")
	b := NewFieldErrors().
		AddError("username", "Missing field").
		AddError("email", "Missing field")

	out := a.Merge(b)
	assert.Same(t, a, out)

	assert.Equal(t, []string{"username", "nickname", "email"}, a.Keys())
	username, _ := a.Get("username")
	assert.Equal(t, []string{"Invalid field", "Missing field"}, username)

	// the merged-in map is left untouched
	assert.Equal(t, []string{"username", "email"}, b.Keys())
}

func TestErrorMap_MergeNil(t *testing.T) {
	a := NewFieldErrors().AddError("k", "v")
	a.Merge(nil)
	assert.Equal(t, 1, a.Len())
}

func TestErrorMap_All(t *testing.T) {
	m := NewFieldErrors().AddError("b", "1").AddError("a", "2").AddError("b", "3")

	var keys []string
	var values [][]string
	for key, vs := range m.All() {
		keys = append(keys, key)
		values = append(values, vs)
	}

	assert.Equal(t, []string{"b", "a"}, keys)
	assert.Equal(t, [][]string{{"1", "3"}, {"2"}}, values)
}

func TestErrorMap_GetReturnsCopy(t *testing.T) {
	m := NewFieldErrors().AddError("k", "v")
	got, _ := m.Get("k")
	got[0] = "changed"

	again, _ := m.Get("k")
	assert.Equal(t, []string{"v"}, again)
}

func TestErrorMap_NilReceiver(t *testing.T) {
	var m *FieldErrors
	assert.Equal(t, 0, m.Len())
	assert.True(t, m.IsEmpty())
	assert.Nil(t, m.Keys())
	for range m.All() {
		t.Fatal("nil map must not yield")
	}
}
