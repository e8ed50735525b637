package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types for the users stream
const (
	EventUserRegistered = "user_registered"
)

// Stream names
const (
	StreamUsers = "stream:users"
)

// UserEvent represents an event published to the users stream. Consumers
// (e.g. a confirmation mailer) read it to act on new accounts.
type UserEvent struct {
	Type      string    `json:"type"`
	Timestamp int64     `json:"timestamp"` // Unix timestamp when event occurred
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	EmailID   uuid.UUID `json:"email_id"`
}

// NewUserRegisteredEvent creates an event for a freshly registered user.
func NewUserRegisteredEvent(userID uuid.UUID, username string, emailID uuid.UUID) UserEvent {
	return UserEvent{
		Type:      EventUserRegistered,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
		Username:  username,
		EmailID:   emailID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e UserEvent) ToMap() (map[string]any, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]any{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseUserEvent parses a UserEvent from Redis stream message values.
func ParseUserEvent(values map[string]any) (UserEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return UserEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event UserEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return UserEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
