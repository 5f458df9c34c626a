package authclient

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// SessionStore is the key-value storage backing a Manager. The default
// implementation is process scoped, mirroring tab-lifetime browser storage:
// nothing survives the process.
type SessionStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(keys ...string)
}

// Credentials is what a successful login or registration yields.
type Credentials struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Account describes the identity the backend resolves for a valid token.
type Account struct {
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	Faculty string `json:"faculty,omitempty"`
}

// RegisterRequest carries the fields collected by the registration wizard.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Code      string `json:"code"`
	Faculty   string `json:"faculty"`
	Dormitory string `json:"dormitory"`
}

// AuthService describes the remote auth backend the flow talks to.
type AuthService interface {
	CheckEmail(ctx context.Context, email string) (bool, error)
	SendVerificationCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (bool, error)
	Register(ctx context.Context, req RegisterRequest) (*Credentials, error)
	Login(ctx context.Context, email, password string) (*Credentials, error)
	ValidateToken(ctx context.Context, token string) (*Account, error)
}

// Config holds client options
type Config interface {
	GetBaseURL() string
	GetRequestTimeout() int
	GetMonitorInterval() int
	GetExpiryWarningThreshold() int
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
