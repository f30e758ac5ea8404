// Package session wraps the auth side of the API client with input
// validation and user-visible error reporting, mirroring what the task store
// does for record operations.
package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/daylogapp/daylog/api/transport"
	"github.com/daylogapp/daylog/client/i18n"
	"github.com/daylogapp/daylog/client/store"
	"github.com/daylogapp/daylog/client/validate"
	"github.com/daylogapp/daylog/domain"
)

// API is the auth surface of the REST client.
type API interface {
	Register(ctx context.Context, email, password string) (*transport.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*transport.AuthResponse, error)
	Logout(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	Token() string
}

// Manager drives sign-up/sign-in/sign-out and account deletion.
type Manager struct {
	api    API
	tr     i18n.Translator
	alerts store.Alerter
	logger *zap.Logger
}

// NewManager builds a manager; nil collaborators get safe defaults.
func NewManager(api API, tr i18n.Translator, alerts store.Alerter, logger *zap.Logger) *Manager {
	if tr == nil {
		tr = func(key string) string { return key }
	}
	if alerts == nil {
		alerts = store.AlertFunc(func(string, string) {})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{api: api, tr: tr, alerts: alerts, logger: logger}
}

// SignedIn reports whether a bearer credential is present.
func (m *Manager) SignedIn() bool {
	return m.api != nil && m.api.Token() != ""
}

// SignUp validates email, password and confirmation, then registers.
func (m *Manager) SignUp(ctx context.Context, email, password, confirm string) error {
	if m.api == nil {
		return nil
	}
	for _, res := range []validate.Result{
		validate.Email(email),
		validate.Password(password),
		validate.PasswordConfirm(password, confirm),
	} {
		if !res.Valid {
			m.alert("inputError", res.Error)
			return domain.NewError(domain.ErrCodeInvalid, res.Error)
		}
	}

	if _, err := m.api.Register(ctx, email, password); err != nil {
		m.logger.Error("sign up failed", zap.Error(err))
		m.alert("error", "loginRequired")
		return err
	}
	return nil
}

// SignIn validates inputs and authenticates; the API client stores the
// returned credentials on success.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	if m.api == nil {
		return nil
	}
	for _, res := range []validate.Result{validate.Email(email), validate.Password(password)} {
		if !res.Valid {
			m.alert("inputError", res.Error)
			return domain.NewError(domain.ErrCodeInvalid, res.Error)
		}
	}

	if _, err := m.api.Login(ctx, email, password); err != nil {
		m.logger.Error("sign in failed", zap.Error(err))
		m.alert("error", "loginRequired")
		return err
	}
	return nil
}

// SignOut revokes the session. A failure is logged but the local credential
// is cleared regardless, matching the original client's behavior.
func (m *Manager) SignOut(ctx context.Context) error {
	if m.api == nil {
		return nil
	}
	if err := m.api.Logout(ctx); err != nil {
		m.logger.Warn("sign out failed", zap.Error(err))
		return err
	}
	return nil
}

// DeleteAccount invokes the backend's account-deletion endpoint with the
// caller's bearer credential. Failure is surfaced, never retried.
func (m *Manager) DeleteAccount(ctx context.Context) error {
	if m.api == nil {
		return nil
	}
	if !m.SignedIn() {
		m.alert("error", "sessionNotFound")
		return domain.ErrUnauthorized
	}
	if err := m.api.DeleteAccount(ctx); err != nil {
		m.logger.Error("account deletion failed", zap.Error(err))
		m.alert("error", "deleteAccountFailed")
		return err
	}
	return nil
}

func (m *Manager) alert(titleKey, messageKey string) {
	m.alerts.Alert(m.tr(titleKey), m.tr(messageKey))
}
