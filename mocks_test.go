package authclient_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	authclient "github.com/sharif-senfi/go-auth-client"
)

// MockAuthService is the testify mock for the remote auth backend.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) CheckEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthService) SendVerificationCode(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthService) VerifyCode(ctx context.Context, email, code string) (bool, error) {
	args := m.Called(ctx, email, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, req authclient.RegisterRequest) (*authclient.Credentials, error) {
	args := m.Called(ctx, req)
	if creds, ok := args.Get(0).(*authclient.Credentials); ok {
		return creds, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*authclient.Credentials, error) {
	args := m.Called(ctx, email, password)
	if creds, ok := args.Get(0).(*authclient.Credentials); ok {
		return creds, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*authclient.Account, error) {
	args := m.Called(ctx, token)
	if account, ok := args.Get(0).(*authclient.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

// stubAuthService gives tests direct control over each call, including
// blocking ones for cancellation scenarios.
type stubAuthService struct {
	checkEmail func(ctx context.Context, email string) (bool, error)
	sendCode   func(ctx context.Context, email string) error
	verifyCode func(ctx context.Context, email, code string) (bool, error)
	register   func(ctx context.Context, req authclient.RegisterRequest) (*authclient.Credentials, error)
	login      func(ctx context.Context, email, password string) (*authclient.Credentials, error)
	validate   func(ctx context.Context, token string) (*authclient.Account, error)
}

func (s *stubAuthService) CheckEmail(ctx context.Context, email string) (bool, error) {
	if s.checkEmail == nil {
		return false, nil
	}
	return s.checkEmail(ctx, email)
}

func (s *stubAuthService) SendVerificationCode(ctx context.Context, email string) error {
	if s.sendCode == nil {
		return nil
	}
	return s.sendCode(ctx, email)
}

func (s *stubAuthService) VerifyCode(ctx context.Context, email, code string) (bool, error) {
	if s.verifyCode == nil {
		return false, nil
	}
	return s.verifyCode(ctx, email, code)
}

func (s *stubAuthService) Register(ctx context.Context, req authclient.RegisterRequest) (*authclient.Credentials, error) {
	if s.register == nil {
		return nil, nil
	}
	return s.register(ctx, req)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*authclient.Credentials, error) {
	if s.login == nil {
		return nil, nil
	}
	return s.login(ctx, email, password)
}

func (s *stubAuthService) ValidateToken(ctx context.Context, token string) (*authclient.Account, error) {
	if s.validate == nil {
		return nil, nil
	}
	return s.validate(ctx, token)
}

// eventRecorder captures broadcast session events.
type eventRecorder struct {
	mu     sync.Mutex
	events []authclient.SessionEvent
}

func (r *eventRecorder) Notify(event authclient.SessionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) Events() []authclient.SessionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]authclient.SessionEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *eventRecorder) Count(eventType authclient.SessionEventType) int {
	n := 0
	for _, event := range r.Events() {
		if event.Type == eventType {
			n++
		}
	}
	return n
}
