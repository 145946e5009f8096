package session

import (
	"context"
	"sync"
	"time"
)

// Option customizes Manager construction.
type Option func(*Manager)

// WithLogger overrides the default stdout logger.
func WithLogger(logger Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithActivitySink sets the ActivitySink used to publish session events.
func WithActivitySink(sink ActivitySink) Option {
	return func(m *Manager) {
		m.sink = normalizeActivitySink(sink)
	}
}

// WithIdleTimeout overrides the 30 minute inactivity window.
func WithIdleTimeout(window time.Duration) Option {
	return func(m *Manager) {
		if window > 0 {
			m.idleWindow = window
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// Manager is the session state machine. It is the single writer of
// session state: every operation runs under one lock, including the
// idle-timeout sign-out, so credential writes never interleave. The
// zero state is SignedOut; RestoreSession is the only path that starts
// a process in Authenticated.
type Manager struct {
	provider   Provider
	store      CredentialStore
	idle       *IdleSupervisor
	logger     Logger
	sink       ActivitySink
	now        func() time.Time
	idleWindow time.Duration

	mu    sync.Mutex
	state State
	creds *Credentials

	subMu   sync.Mutex
	subs    map[uint64]func(State)
	nextSub uint64
}

// NewManager wires the state machine to its provider and credential
// store collaborators.
func NewManager(provider Provider, store CredentialStore, opts ...Option) *Manager {
	m := &Manager{
		provider:   provider,
		store:      store,
		logger:     defLogger{},
		sink:       noopActivitySink{},
		now:        time.Now,
		idleWindow: DefaultIdleTimeout,
		state:      SignedOut(""),
		subs:       map[uint64]func(State){},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	m.idle = NewIdleSupervisor(m.idleWindow, m.idleExpired, WithIdleClock(m.now))

	return m
}

// Current returns the last published session state.
func (m *Manager) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IdleDeadline exposes the pending idle deadline, if armed.
func (m *Manager) IdleDeadline() (time.Time, bool) {
	return m.idle.Deadline()
}

// Subscribe registers an observer for state transitions. The returned
// function removes the subscription.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

// SignUp registers a new account with the identity provider. When the
// provider requires email confirmation the state moves to
// PendingConfirmation; otherwise the state is left unchanged and the
// caller must still sign in.
func (m *Manager) SignUp(ctx context.Context, payload SignUpPayload) (State, error) {
	m.mu.Lock()

	if err := payload.Validate(); err != nil {
		st := m.failLocked(err, true)
		m.mu.Unlock()
		m.publish(st)
		return st, err
	}

	result, err := m.provider.SignUp(ctx, payload)
	if err != nil {
		st := m.failLocked(err, true)
		m.mu.Unlock()
		m.publish(st)
		return st, err
	}

	if result.ConfirmationRequired {
		// registering a second account supersedes any live session;
		// leaving Authenticated tears down timer, credentials and store
		m.bestEffortSignOutLocked(ctx)
		m.state = PendingConfirmation(payload.Email)
	}

	st := m.state
	m.mu.Unlock()

	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventSignUp,
		Username:  payload.Email,
		Metadata: map[string]any{
			"confirmation_required": result.ConfirmationRequired,
			"delivery":              result.Delivery,
		},
	})
	m.publish(st)

	return st, nil
}

// ConfirmSignUp submits the emailed verification code. Success lands in
// SignedOut: the user must sign in explicitly. On failure the code is
// unconsumed and the caller may retry.
func (m *Manager) ConfirmSignUp(ctx context.Context, username, code string) (State, error) {
	m.mu.Lock()

	p := confirmSignUpPayload{Username: username, Code: code}
	if err := p.Validate(); err != nil {
		return m.failAndPublish(err)
	}

	if err := m.provider.ConfirmSignUp(ctx, username, code); err != nil {
		return m.failAndPublish(err)
	}

	// SignedOut means no credentials anywhere; a session left over from
	// before the sign-up flow is ended, not carried across.
	m.bestEffortSignOutLocked(ctx)
	m.state = SignedOut("")
	st := m.state
	m.mu.Unlock()

	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventSignUpConfirmed,
		Username:  username,
	})
	m.publish(st)

	return st, nil
}

// ResendCode asks the provider to re-send the confirmation code.
func (m *Manager) ResendCode(ctx context.Context, username string) (State, error) {
	m.mu.Lock()

	if err := validateUsername(username); err != nil {
		return m.failAndPublish(err)
	}

	if err := m.provider.ResendCode(ctx, username); err != nil {
		return m.failAndPublish(err)
	}

	st := m.state
	m.mu.Unlock()
	return st, nil
}

// SignIn authenticates against the provider. A stale local session is
// signed out best-effort first. Success persists credentials, resolves
// the user attributes, and arms the idle watchdog; no partial
// authenticated state is ever published.
func (m *Manager) SignIn(ctx context.Context, email, password string) (State, error) {
	m.mu.Lock()

	p := signInPayload{Username: email, Password: password}
	if err := p.Validate(); err != nil {
		return m.failAndPublish(err)
	}

	m.bestEffortSignOutLocked(ctx)

	result, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		st := m.failLocked(err, false)
		m.mu.Unlock()
		m.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventSignInFailure,
			Username:  email,
			Metadata:  map[string]any{"error": err.Error()},
		})
		m.publish(st)
		return st, err
	}

	switch result.Step {
	case SignInStepConfirmSignUp:
		m.state = PendingConfirmation(email)
		st := m.state
		m.mu.Unlock()
		m.publish(st)
		return st, nil

	case SignInStepNewPasswordRequired:
		err := NewKindError(KindPasswordChangeRequired, "password change required")
		return m.failAndPublish(err)
	}

	creds := result.Credentials
	if creds == nil {
		return m.failAndPublish(ErrIncompleteCredentials)
	}
	if err := creds.Validate(); err != nil {
		return m.failAndPublish(WrapKind(err, KindProvider, "incomplete credential record"))
	}

	attrs, err := m.provider.FetchUser(ctx, creds.AccessToken)
	if err != nil {
		return m.failAndPublish(err)
	}

	if err := m.store.Save(ctx, *creds); err != nil {
		st := m.failLocked(err, false)
		m.mu.Unlock()
		m.publish(st)
		return st, err
	}

	m.creds = creds
	m.state = Authenticated(attrs)
	m.idle.Arm()

	st := m.state
	m.mu.Unlock()

	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventSignInSuccess,
		Username:  email,
		SubjectID: creds.SubjectID,
	})
	m.publish(st)

	return st, nil
}

// SignOut ends the session. The local transition is authoritative: a
// failing remote sign-out or storage layer is logged, never surfaced,
// so a network outage cannot trap the user in an authenticated UI.
func (m *Manager) SignOut(ctx context.Context) (State, error) {
	return m.signOut(ctx, SignOutReasonUser, ActivityEventSignOut)
}

func (m *Manager) signOut(ctx context.Context, reason SignOutReason, event ActivityEventType) (State, error) {
	m.mu.Lock()
	m.signOutLocked(ctx, reason)
	st := m.state
	m.mu.Unlock()

	m.recordActivity(ctx, ActivityEvent{
		EventType: event,
		Metadata:  map[string]any{"reason": string(reason)},
	})
	m.publish(st)

	return st, nil
}

// ResetPassword starts the forgot-password flow. Password flows do not
// imply sign-in, so success leaves the state unchanged.
func (m *Manager) ResetPassword(ctx context.Context, username string) (State, error) {
	m.mu.Lock()

	if err := validateUsername(username); err != nil {
		return m.failAndPublish(err)
	}

	if err := m.provider.ResetPassword(ctx, username); err != nil {
		return m.failAndPublish(err)
	}

	st := m.state
	m.mu.Unlock()

	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventPasswordReset,
		Username:  username,
	})
	return st, nil
}

// ConfirmResetPassword completes the forgot-password flow with the
// emailed code.
func (m *Manager) ConfirmResetPassword(ctx context.Context, username, newPassword, code string) (State, error) {
	m.mu.Lock()

	p := confirmResetPayload{Username: username, NewPassword: newPassword, Code: code}
	if err := p.Validate(); err != nil {
		return m.failAndPublish(err)
	}

	if err := m.provider.ConfirmResetPassword(ctx, username, newPassword, code); err != nil {
		return m.failAndPublish(err)
	}

	st := m.state
	m.mu.Unlock()

	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventPasswordChanged,
		Username:  username,
	})
	return st, nil
}

// ChangePassword updates the password of the authenticated user.
func (m *Manager) ChangePassword(ctx context.Context, oldPassword, newPassword string) (State, error) {
	m.mu.Lock()

	p := changePasswordPayload{OldPassword: oldPassword, NewPassword: newPassword}
	if err := p.Validate(); err != nil {
		return m.failAndPublish(err)
	}

	if m.creds == nil {
		return m.failAndPublish(ErrNotAuthenticated)
	}

	if err := m.provider.ChangePassword(ctx, m.creds.AccessToken, oldPassword, newPassword); err != nil {
		return m.failAndPublish(err)
	}

	st := m.state
	subject := m.creds.SubjectID
	m.mu.Unlock()

	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventPasswordChanged,
		SubjectID: subject,
	})
	return st, nil
}

// DeleteAccount removes the account at the provider. Local session
// cleanup happens regardless of the delete outcome so stale credentials
// never survive a possibly-deleted account; a provider failure is still
// returned to the caller.
func (m *Manager) DeleteAccount(ctx context.Context) (State, error) {
	m.mu.Lock()

	if m.state.Phase != PhaseAuthenticated || m.creds == nil {
		return m.failAndPublish(ErrNotAuthenticated)
	}

	subject := m.creds.SubjectID
	delErr := m.provider.DeleteAccount(ctx, m.creds.AccessToken)
	if delErr != nil {
		m.logger.Error("account delete failed: %v", delErr)
	}

	m.signOutLocked(ctx, SignOutReasonAccountDeleted)
	st := m.state
	m.mu.Unlock()

	meta := map[string]any{}
	if delErr != nil {
		meta["error"] = delErr.Error()
	}
	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventAccountDeleted,
		SubjectID: subject,
		Metadata:  meta,
	})
	m.publish(st)

	return st, delErr
}

// RestoreSession is called at process start. It loads any persisted
// credentials and refreshes them with the provider; a valid refresh
// lands in Authenticated with the watchdog armed, anything else lands
// in SignedOut. A failed restore is not an operation failure: the
// process simply starts signed out.
func (m *Manager) RestoreSession(ctx context.Context) (State, error) {
	m.mu.Lock()

	stored, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Error("credential load failed: %v", err)
		m.state = SignedOut("")
		st := m.state
		m.mu.Unlock()
		m.publish(st)
		return st, err
	}

	if stored == nil {
		m.state = SignedOut("")
		st := m.state
		m.mu.Unlock()
		m.publish(st)
		return st, nil
	}

	refreshed, err := m.provider.RefreshSession(ctx, stored.RefreshToken)
	if err != nil {
		m.logger.Info("session refresh rejected, starting signed out: %v", err)
		st := m.restoreFailedLocked(ctx, err)
		m.mu.Unlock()
		m.publish(st)
		return st, nil
	}

	if refreshed == nil {
		st := m.restoreFailedLocked(ctx, NewKindError(KindProvider, "empty refresh result"))
		m.mu.Unlock()
		m.publish(st)
		return st, nil
	}

	// Cognito-style providers do not rotate the refresh token on refresh.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = stored.RefreshToken
	}
	if refreshed.SubjectID == "" {
		refreshed.SubjectID = stored.SubjectID
	}
	if err := refreshed.Validate(); err != nil {
		st := m.restoreFailedLocked(ctx, WrapKind(err, KindProvider, "incomplete refreshed record"))
		m.mu.Unlock()
		m.publish(st)
		return st, nil
	}

	attrs, err := m.provider.FetchUser(ctx, refreshed.AccessToken)
	if err != nil {
		m.logger.Info("user fetch failed during restore: %v", err)
		st := m.restoreFailedLocked(ctx, err)
		m.mu.Unlock()
		m.publish(st)
		return st, nil
	}

	if err := m.store.Save(ctx, *refreshed); err != nil {
		m.logger.Error("credential save failed during restore: %v", err)
		m.creds = nil
		m.state = SignedOut("")
		st := m.state
		m.mu.Unlock()
		m.publish(st)
		return st, err
	}

	m.creds = refreshed
	m.state = Authenticated(attrs)
	m.idle.Arm()

	st := m.state
	m.mu.Unlock()

	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventRestored,
		SubjectID: refreshed.SubjectID,
	})
	m.publish(st)

	return st, nil
}

// NotifyActivity is called by the host on foreground/interaction events.
// While authenticated it pushes the idle deadline out a full window;
// otherwise it is a no-op.
func (m *Manager) NotifyActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()

	// A transient Failed (e.g. a rejected password change) does not end
	// the session, so key off the live credentials, not the phase.
	if m.creds != nil {
		m.idle.Reset()
	}
}

// signOutLocked is the single local sign-out path: disarm the watchdog,
// best-effort remote sign-out, clear storage, drop in-memory
// credentials, land in SignedOut. Remote and storage failures are
// logged, never propagated.
func (m *Manager) signOutLocked(ctx context.Context, reason SignOutReason) {
	m.idle.Disarm()

	if m.creds != nil {
		if err := m.provider.SignOut(ctx, m.creds.AccessToken); err != nil {
			m.logger.Warn("remote sign out failed: %v", err)
		}
	}

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("credential store clear failed: %v", err)
	}

	m.creds = nil
	m.state = SignedOut(reason)
}

// bestEffortSignOutLocked tears down any stale session before a fresh
// sign-in attempt without touching the published state.
func (m *Manager) bestEffortSignOutLocked(ctx context.Context) {
	m.idle.Disarm()

	if m.creds != nil {
		if err := m.provider.SignOut(ctx, m.creds.AccessToken); err != nil {
			m.logger.Debug("stale session sign out: %v", err)
		}
		m.creds = nil
	}

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("stale credential clear failed: %v", err)
	}
}

// restoreFailedLocked ends a failed restore. A non-retryable rejection
// (revoked token, deleted account) discards the stored record; a
// transient failure, like launching offline, keeps it so the next
// restore can try the same refresh token again.
func (m *Manager) restoreFailedLocked(ctx context.Context, err error) State {
	if !KindOf(err).Retryable() {
		return m.expireLocked(ctx)
	}
	m.creds = nil
	m.state = SignedOut(SignOutReasonExpired)
	return m.state
}

// expireLocked discards an unrestorable persisted session.
func (m *Manager) expireLocked(ctx context.Context) State {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("credential store clear failed: %v", err)
	}
	m.creds = nil
	m.state = SignedOut(SignOutReasonExpired)
	return m.state
}

// failLocked records a transient failure. keepAuthenticated preserves a
// live session on registration failures: creating a second account must
// not demote the current one.
func (m *Manager) failLocked(err error, keepAuthenticated bool) State {
	if keepAuthenticated && m.state.Phase == PhaseAuthenticated {
		return m.state
	}
	m.state = Failed(err)
	return m.state
}

// failAndPublish is the common failure tail for operations: it must be
// called with the lock held and releases it.
func (m *Manager) failAndPublish(err error) (State, error) {
	st := m.failLocked(err, false)
	m.mu.Unlock()
	m.publish(st)
	return st, err
}

func (m *Manager) idleExpired(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	m.mu.Lock()
	// A fire can be in flight while an operation holding m.mu disarms or
	// re-arms the watchdog; by the time we get the lock the deadline that
	// fired may belong to a session that no longer exists. Only a fire
	// whose generation is still current may end the session.
	if gen != m.idle.generation() || m.creds == nil {
		m.mu.Unlock()
		return
	}
	m.signOutLocked(ctx, SignOutReasonIdleTimeout)
	st := m.state
	m.mu.Unlock()

	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventIdleExpired,
	})
	m.publish(st)
}

func (m *Manager) publish(st State) {
	m.subMu.Lock()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func (m *Manager) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = m.now()
	}

	sink := normalizeActivitySink(m.sink)
	if err := sink.Record(ctx, event); err != nil {
		m.logger.Warn("activity sink record error: %v", err)
	}
}
