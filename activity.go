package auth

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventLoginSuccess    ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure    ActivityEventType = "auth.login.failure"
	ActivityEventTokenRefreshed  ActivityEventType = "auth.token.refreshed"
	ActivityEventRefreshRejected ActivityEventType = "auth.token.rejected"
	ActivityEventEntityCreated   ActivityEventType = "entity.created"
	ActivityEventEntityUpdated   ActivityEventType = "entity.updated"
	ActivityEventEntityDeleted   ActivityEventType = "entity.deleted"
)

// ActorRef identifies who performed an action
type ActorRef struct {
	ID   string
	Type string
}

var (
	actorUnknown = ActorRef{Type: "unknown"}
	actorSystem  = ActorRef{Type: "system"}
)

func actorFromUser(user *User) ActorRef {
	if user == nil {
		return actorUnknown
	}
	return ActorRef{ID: user.ID.String(), Type: "user"}
}

// ActorFromContext resolves the actor from request scoped claims. Calls
// without claims are attributed to the system.
func ActorFromContext(ctx context.Context) ActorRef {
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims == nil {
		return actorSystem
	}
	return ActorRef{ID: claims.UserID(), Type: "user"}
}

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	Actor      ActorRef
	UserID     string
	Resource   string
	EntityID   string
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

// ActivitySinks fans out to every sink, the first error is returned
type ActivitySinks []ActivitySink

func (s ActivitySinks) Record(ctx context.Context, event ActivityEvent) error {
	var first error
	for _, sink := range s {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
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

// emitActivity records event best effort. Sink failures are logged only.
func emitActivity(ctx context.Context, sink ActivitySink, logger Logger, event ActivityEvent) {
	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if err := normalizeActivitySink(sink).Record(ctx, event); err != nil {
		normalizeLogger(logger).Warn("activity sink record error", "event", event.EventType, "error", err)
	}
}
