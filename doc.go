// Package session owns the credential lifecycle for the club app: it
// reconciles identity-provider responses into a single tagged session state,
// persists tokens across restarts, and enforces the idle-timeout policy.
//
// Session lifecycle:
//   - Manager is the only writer of session state. Every operation (sign-up,
//     confirmation, sign-in, password flows, sign-out, restore) runs under a
//     single-writer lock so concurrent callers never interleave credential
//     writes. The resulting State is returned to the caller and published to
//     subscribers.
//   - State is one of SignedOut, PendingConfirmation, Authenticated, or
//     Failed. Failed is transient: the next operation supersedes it. There is
//     no mid-operation state.
//   - The idle supervisor arms a 30 minute watchdog whenever the session
//     becomes authenticated. Expiry re-enters Manager.SignOut through the same
//     serialized path as an explicit sign-out, annotated with the idle reason
//     so the UI can explain why the session ended.
//
// Seams:
//   - Provider adapts the remote identity provider (see provider/cognito).
//     It is stateless and maps provider error codes into the ErrorKind
//     taxonomy exactly once, at its boundary.
//   - CredentialStore persists the access/ID/refresh tokens and subject
//     identifier (see store). Authenticated is never published unless the
//     store holds the complete record.
//   - ActivitySink is a best-effort audit emitter; sink errors are logged and
//     never block a transition.
package session
