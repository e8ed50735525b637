package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the tests fast
var testParams = Params{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashAndVerify(t *testing.T) {
	encoded, err := HashWithParams("secret", testParams)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=64,t=1,p=1$"))

	ok, err := Verify("secret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("Secret", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_UsesRandomSalt(t *testing.T) {
	a, err := HashWithParams("secret", testParams)
	require.NoError(t, err)
	b, err := HashWithParams("secret", testParams)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHash_DefaultParams(t *testing.T) {
	encoded, err := Hash("secret")
	require.NoError(t, err)
	assert.Contains(t, encoded, "m=19456,t=2,p=1")
}

func TestVerify_InvalidHash(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		wantErr error
	}{
		{"empty", "", ErrInvalidHash},
		{"bcrypt", "$2a$10$abcdefghijklmnopqrstuu", ErrInvalidHash},
		{"wrong version", "$argon2id$v=16$m=64,t=1,p=1$c2FsdA$a2V5", ErrIncompatibleVersion},
		{"bad params", "$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5", ErrInvalidHash},
		{"bad salt", "$argon2id$v=19$m=64,t=1,p=1$!!!$a2V5", ErrInvalidHash},
		{"zero memory", "$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5", ErrInvalidHash},
		{"zero iterations", "$argon2id$v=19$m=64,t=0,p=1$c2FsdA$a2V5", ErrInvalidHash},
		{"zero parallelism", "$argon2id$v=19$m=64,t=1,p=0$c2FsdA$a2V5", ErrInvalidHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Verify("secret", tt.encoded)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
