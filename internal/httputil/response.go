package httputil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ContentTypeProblem is the media type of problem documents (RFC 7807).
const ContentTypeProblem = "application/problem+json"

// problemTypeBase is prefixed to the status code to build the "type" member.
const problemTypeBase = "https://httpstatuses.io/"

var reservedMembers = map[string]struct{}{
	"type":      {},
	"title":     {},
	"status":    {},
	"detail":    {},
	"instance":  {},
	"timestamp": {},
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent, nothing left to tell the client
			slog.Error("failed to encode json response", "error", err)
		}
	}
}

type extension struct {
	key   string
	value any
}

// Problem is a problem-details document. Standard members are written first,
// followed by extension members in the order they were added.
type Problem struct {
	Type      string
	Title     string
	Status    int
	Detail    string
	Timestamp time.Time

	extensions []extension
}

// NewProblem returns a problem for status with type and title filled in.
func NewProblem(status int) *Problem {
	return &Problem{
		Type:      fmt.Sprintf("%s%d", problemTypeBase, status),
		Title:     http.StatusText(status),
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
}

func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithExtension adds an extension member. Keys that clash with a standard
// member are ignored, as is a repeated key.
func (p *Problem) WithExtension(key string, value any) *Problem {
	if _, reserved := reservedMembers[key]; reserved {
		return p
	}
	for _, ext := range p.extensions {
		if ext.key == key {
			return p
		}
	}
	p.extensions = append(p.extensions, extension{key: key, value: value})
	return p
}

// MarshalJSON implements json.Marshaler keeping member order stable.
func (p *Problem) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	write := func(key string, value any) error {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode problem member %q: %w", key, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		name, _ := json.Marshal(key)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(encoded)
		return nil
	}

	if err := write("type", p.Type); err != nil {
		return nil, err
	}
	if err := write("title", p.Title); err != nil {
		return nil, err
	}
	if err := write("status", p.Status); err != nil {
		return nil, err
	}
	if p.Detail != "" {
		if err := write("detail", p.Detail); err != nil {
			return nil, err
		}
	}
	if err := write("timestamp", p.Timestamp.Format(time.RFC3339Nano)); err != nil {
		return nil, err
	}
	for _, ext := range p.extensions {
		if err := write(ext.key, ext.value); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteProblem writes p as an application/problem+json response.
func WriteProblem(w http.ResponseWriter, p *Problem) {
	body, err := json.Marshal(p)
	if err != nil {
		slog.Error("failed to encode problem response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ContentTypeProblem)
	w.WriteHeader(p.Status)
	_, _ = w.Write(body)
}

// WriteBadRequest writes a 400 Bad Request problem
func WriteBadRequest(w http.ResponseWriter, detail string) {
	WriteProblem(w, NewProblem(http.StatusBadRequest).WithDetail(detail))
}

// WriteTooLarge writes a 413 Request Entity Too Large problem
func WriteTooLarge(w http.ResponseWriter, detail string) {
	WriteProblem(w, NewProblem(http.StatusRequestEntityTooLarge).WithDetail(detail))
}

// WriteTooManyRequests writes a 429 Too Many Requests problem
func WriteTooManyRequests(w http.ResponseWriter, detail string) {
	WriteProblem(w, NewProblem(http.StatusTooManyRequests).WithDetail(detail))
}
