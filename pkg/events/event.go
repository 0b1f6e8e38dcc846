package events

import "time"

// Event defines the contract for all published domain events.
type Event interface {
	// EventType returns the subject suffix, e.g. "lesson_plan.generated".
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a generic Event.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeLessonPlanGenerated = "lesson_plan.generated"
	TypeLessonPlanFailed    = "lesson_plan.failed"
)

// LessonPlanGenerated is emitted after a lesson plan document is delivered.
func LessonPlanGenerated(chatID, source, title string, at time.Time) Event {
	return BaseEvent{
		Type: TypeLessonPlanGenerated,
		Data: map[string]interface{}{
			"chat_id":     chatID,
			"source":      source,
			"title":       title,
			"occurred_at": at.UTC().Format(time.RFC3339),
		},
		OccurredAt: at,
	}
}

// LessonPlanFailed is emitted when a pipeline run ends with a user-facing error.
func LessonPlanFailed(chatID, source, reason string, at time.Time) Event {
	return BaseEvent{
		Type: TypeLessonPlanFailed,
		Data: map[string]interface{}{
			"chat_id":     chatID,
			"source":      source,
			"reason":      reason,
			"occurred_at": at.UTC().Format(time.RFC3339),
		},
		OccurredAt: at,
	}
}
