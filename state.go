package session

import "fmt"

// Phase discriminates the session state variant.
type Phase string

const (
	PhaseSignedOut           Phase = "signed_out"
	PhasePendingConfirmation Phase = "pending_confirmation"
	PhaseAuthenticated       Phase = "authenticated"
	PhaseFailed              Phase = "failed"
)

// SignOutReason annotates a SignedOut state so the UI can explain why
// the session ended. It is informational only.
type SignOutReason string

const (
	SignOutReasonUser           SignOutReason = "user"
	SignOutReasonIdleTimeout    SignOutReason = "idle_timeout"
	SignOutReasonAccountDeleted SignOutReason = "account_deleted"
	SignOutReasonExpired        SignOutReason = "session_expired"
)

// Failure describes the last failed operation. It is transient: the
// next operation supersedes it and it is never persisted.
type Failure struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
}

// State is the tagged session variant published to the host application.
// Exactly one phase is active; the payload fields for the other phases
// are zero.
type State struct {
	Phase    Phase           `json:"phase"`
	Username string          `json:"username,omitempty"`
	User     *UserAttributes `json:"user,omitempty"`
	Failure  *Failure        `json:"failure,omitempty"`
	Reason   SignOutReason   `json:"reason,omitempty"`
}

// SignedOut builds the signed-out state, optionally annotated with a reason.
func SignedOut(reason SignOutReason) State {
	return State{Phase: PhaseSignedOut, Reason: reason}
}

// PendingConfirmation builds the state for an account awaiting its
// verification code.
func PendingConfirmation(username string) State {
	return State{Phase: PhasePendingConfirmation, Username: username}
}

// Authenticated builds the state for a valid session with resolved
// identity attributes.
func Authenticated(user *UserAttributes) State {
	return State{Phase: PhaseAuthenticated, User: user}
}

// Failed builds the transient failure state from an operation error.
func Failed(err error) State {
	return State{Phase: PhaseFailed, Failure: failureFromError(err)}
}

func (s State) IsSignedOut() bool     { return s.Phase == PhaseSignedOut }
func (s State) IsPending() bool       { return s.Phase == PhasePendingConfirmation }
func (s State) IsAuthenticated() bool { return s.Phase == PhaseAuthenticated }
func (s State) IsFailed() bool        { return s.Phase == PhaseFailed }

func (s State) String() string {
	switch s.Phase {
	case PhasePendingConfirmation:
		return fmt.Sprintf("pending_confirmation user=%s", s.Username)
	case PhaseAuthenticated:
		sub := ""
		if s.User != nil {
			sub = s.User.SubjectID
		}
		return fmt.Sprintf("authenticated sub=%s", sub)
	case PhaseFailed:
		if s.Failure != nil {
			return fmt.Sprintf("failed kind=%s retryable=%t", s.Failure.Kind, s.Failure.Retryable)
		}
		return "failed"
	default:
		if s.Reason != "" {
			return fmt.Sprintf("signed_out reason=%s", s.Reason)
		}
		return "signed_out"
	}
}
