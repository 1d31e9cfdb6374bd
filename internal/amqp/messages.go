package amqp

import (
	"encoding/json"
	"time"
)

// ChangeEvent is a lightweight notification that a collection changed for a
// user. It carries no entity payload; the consumer refetches the full state
// from the remote backend.
type ChangeEvent struct {
	Collection string    `json:"collection"`
	Op         string    `json:"op"`
	EntityID   string    `json:"entity_id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// NewChangeEvent creates a change event stamped with the current time.
func NewChangeEvent(collection, op, entityID, userID string) ChangeEvent {
	return ChangeEvent{
		Collection: collection,
		Op:         op,
		EntityID:   entityID,
		UserID:     userID,
		OccurredAt: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON parses an event from JSON bytes.
func ChangeEventFromJSON(data []byte) (ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return ChangeEvent{}, err
	}
	return e, nil
}
