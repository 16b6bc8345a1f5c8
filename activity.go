package tracker

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventRegisterSuccess ActivityEventType = "auth.register.success"
	ActivityEventRegisterFailure ActivityEventType = "auth.register.failure"
	ActivityEventLoginSuccess    ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure    ActivityEventType = "auth.login.failure"
	ActivityEventProjectCreated  ActivityEventType = "project.created"
	ActivityEventProjectUpdated  ActivityEventType = "project.updated"
	ActivityEventProjectDeleted  ActivityEventType = "project.deleted"
	ActivityEventTaskCreated     ActivityEventType = "task.created"
	ActivityEventTaskUpdated     ActivityEventType = "task.updated"
	ActivityEventTaskDeleted     ActivityEventType = "task.deleted"
	ActivityEventUserDeleted     ActivityEventType = "user.deleted"
	ActivityEventAccessDenied    ActivityEventType = "policy.denied"
)

// ActorRef identifies who performed an action
type ActorRef struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`
	Role string `json:"role,omitempty"`
}

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	Actor      ActorRef
	ObjectType string
	ObjectID   string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// NewLoggerActivitySink writes every event to logger at info level
func NewLoggerActivitySink(logger Logger) ActivitySink {
	if logger == nil {
		logger = defLogger{}
	}
	return ActivitySinkFunc(func(_ context.Context, event ActivityEvent) error {
		logger.Info("activity",
			"event", event.EventType,
			"actor_id", event.Actor.ID,
			"actor_type", event.Actor.Type,
			"object_type", event.ObjectType,
			"object_id", event.ObjectID,
			"metadata", event.Metadata,
		)
		return nil
	})
}

func actorFromCaller(caller Caller) ActorRef {
	if caller.IsZero() {
		return ActorRef{Type: "anonymous"}
	}
	return ActorRef{
		ID:   caller.UserID.String(),
		Type: "user",
		Role: caller.Role.String(),
	}
}

// activityRecorder is embedded by services to emit events without failing
// the operation when the sink errors.
type activityRecorder struct {
	sink   ActivitySink
	logger Logger
}

func (r activityRecorder) emit(ctx context.Context, eventType ActivityEventType, actor ActorRef, objectType, objectID string, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}

	event := ActivityEvent{
		EventType:  eventType,
		Actor:      actor,
		ObjectType: objectType,
		ObjectID:   objectID,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(r.sink).Record(ctx, event); err != nil && r.logger != nil {
		r.logger.Warn("activity sink record error", "event", eventType, "error", err)
	}
}
