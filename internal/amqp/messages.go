package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecordKind names the kind of record an event refers to.
type RecordKind string

const (
	KindTransaction          RecordKind = "transaction"
	KindSavingsGoal          RecordKind = "savings_goal"
	KindRecurringTransaction RecordKind = "recurring_transaction"
	KindSalaryAllocation     RecordKind = "salary_allocation"
)

// RecordAction is what happened to the record.
type RecordAction string

const (
	ActionCreated RecordAction = "created"
	ActionUpdated RecordAction = "updated"
	ActionDeleted RecordAction = "deleted"
)

// RecordEvent is a lightweight change notification. It carries only the id;
// consumers fetch the current record from the store.
type RecordEvent struct {
	Kind      RecordKind   `json:"kind"`
	Action    RecordAction `json:"action"`
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewRecordEvent(kind RecordKind, action RecordAction, id, userID string) *RecordEvent {
	return &RecordEvent{
		Kind:      kind,
		Action:    action,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes an event and rejects ones without kind, action or id.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Kind == "" || e.Action == "" || e.ID == "" {
		return nil, fmt.Errorf("incomplete record event: %s", data)
	}
	return &e, nil
}
