package bus

import (
	"encoding/json"
	"time"
)

// Actions carried by transaction events.
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// TransactionEvent announces a change to a user's transaction collection.
// It carries only identifiers; the worker reads the full record back from
// the store when it needs one.
type TransactionEvent struct {
	UID       string    `json:"uid"`
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(uid, id, action string) *TransactionEvent {
	return &TransactionEvent{
		UID:       uid,
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
