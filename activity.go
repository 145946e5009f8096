package session

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventSignUp          ActivityEventType = "session.signup"
	ActivityEventSignUpConfirmed ActivityEventType = "session.signup.confirmed"
	ActivityEventSignInSuccess   ActivityEventType = "session.signin.success"
	ActivityEventSignInFailure   ActivityEventType = "session.signin.failure"
	ActivityEventSignOut         ActivityEventType = "session.signout"
	ActivityEventIdleExpired     ActivityEventType = "session.idle.expired"
	ActivityEventRestored        ActivityEventType = "session.restored"
	ActivityEventPasswordReset   ActivityEventType = "session.password.reset"
	ActivityEventPasswordChanged ActivityEventType = "session.password.changed"
	ActivityEventAccountDeleted  ActivityEventType = "session.account.deleted"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	Username   string
	SubjectID  string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
// Sinks run best-effort: errors are logged, never propagated, so a slow
// or failing sink cannot block a session transition.
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
