package session_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	session "github.com/Crzzy98/BTG"
)

// MockProvider implements session.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) SignUp(ctx context.Context, payload session.SignUpPayload) (session.SignUpResult, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(session.SignUpResult), args.Error(1)
}

func (m *MockProvider) ConfirmSignUp(ctx context.Context, username, code string) error {
	args := m.Called(ctx, username, code)
	return args.Error(0)
}

func (m *MockProvider) ResendCode(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockProvider) SignIn(ctx context.Context, username, password string) (session.SignInResult, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(session.SignInResult), args.Error(1)
}

func (m *MockProvider) SignOut(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

func (m *MockProvider) ResetPassword(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockProvider) ConfirmResetPassword(ctx context.Context, username, newPassword, code string) error {
	args := m.Called(ctx, username, newPassword, code)
	return args.Error(0)
}

func (m *MockProvider) ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error {
	args := m.Called(ctx, accessToken, oldPassword, newPassword)
	return args.Error(0)
}

func (m *MockProvider) DeleteAccount(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

func (m *MockProvider) RefreshSession(ctx context.Context, refreshToken string) (*session.Credentials, error) {
	args := m.Called(ctx, refreshToken)
	if creds, ok := args.Get(0).(*session.Credentials); ok {
		return creds, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) FetchUser(ctx context.Context, accessToken string) (*session.UserAttributes, error) {
	args := m.Called(ctx, accessToken)
	if attrs, ok := args.Get(0).(*session.UserAttributes); ok {
		return attrs, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockStore implements session.CredentialStore for failure-path tests;
// happy paths use the real in-memory store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, creds session.Credentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

func (m *MockStore) Load(ctx context.Context) (*session.Credentials, error) {
	args := m.Called(ctx)
	if creds, ok := args.Get(0).(*session.Credentials); ok {
		return creds, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// captureSink records activity events for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []session.ActivityEvent
}

func (s *captureSink) Record(_ context.Context, event session.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) Events() []session.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]session.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

func testCredentials() session.Credentials {
	return session.Credentials{
		AccessToken:  "access-token",
		IDToken:      "id-token",
		RefreshToken: "refresh-token",
		SubjectID:    "c7b9f1f2-9c5f-4a41-9589-77a7cbc1fbd6",
	}
}

func testAttributes() *session.UserAttributes {
	return &session.UserAttributes{
		SubjectID: "c7b9f1f2-9c5f-4a41-9589-77a7cbc1fbd6",
		Email:     "a@b.com",
		FirstName: "A",
		LastName:  "B",
		Handicap:  10,
	}
}
