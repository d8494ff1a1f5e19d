package amqp

import (
	"encoding/json"
	"time"
)

// MutationMessage announces that backend data changed and cached analytics
// derived from it are stale. The consumer only needs to know that something
// changed; entity and action are carried for logging.
type MutationMessage struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMutationMessage creates a mutation message stamped with the current time.
func NewMutationMessage(entity, action, id string) *MutationMessage {
	return &MutationMessage{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *MutationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MutationMessageFromJSON creates a message from JSON bytes.
func MutationMessageFromJSON(data []byte) (*MutationMessage, error) {
	var msg MutationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
