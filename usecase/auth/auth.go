package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/daylogapp/daylog/client/validate"
	"github.com/daylogapp/daylog/domain"
	"github.com/daylogapp/daylog/repository"
)

// Result carries what a successful register/login/refresh hands the client.
type Result struct {
	Token   string
	Session *domain.Session
	User    *domain.User
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	secret   []byte
	issuer   string
	tokenTTL time.Duration
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, secret, issuer string, tokenTTL time.Duration, logger *zap.Logger) *UseCase {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		issuer:   issuer,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Register creates an account and signs the user in.
func (uc *UseCase) Register(ctx context.Context, email, password string, sessionTTL time.Duration) (*Result, error) {
	if res := validate.Email(email); !res.Valid {
		return nil, domain.NewError(domain.ErrCodeInvalid, res.Error)
	}
	if res := validate.Password(password); !res.Valid {
		return nil, domain.NewError(domain.ErrCodeInvalid, res.Error)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "hash password", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return uc.startSession(ctx, user, sessionTTL)
}

// Login verifies the password and opens a session.
func (uc *UseCase) Login(ctx context.Context, email, password string, sessionTTL time.Duration) (*Result, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrBadCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrBadCredentials
	}

	return uc.startSession(ctx, user, sessionTTL)
}

// Refresh extends a live session and issues a fresh token.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string) (*Result, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}

	ttl := time.Until(session.ExpiresAt)
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, err
	}

	token, err := uc.issueToken(session.UserID, session.ID)
	if err != nil {
		return nil, err
	}
	return &Result{Token: token, Session: session}, nil
}

// Revoke deletes a session.
func (uc *UseCase) Revoke(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

func (uc *UseCase) startSession(ctx context.Context, user *domain.User, ttl time.Duration) (*Result, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := uc.issueToken(user.ID, session.ID)
	if err != nil {
		return nil, err
	}

	return &Result{Token: token, Session: session, User: user}, nil
}

// issueToken signs an access token carrying the user and session ids; the
// middleware forwards both so handlers can act on the calling session.
func (uc *UseCase) issueToken(userID, sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"sid":     sessionID,
		"iss":     uc.issuer,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(uc.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(uc.secret)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}
	return signed, nil
}
