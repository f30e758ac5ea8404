package account

import (
	"context"

	"go.uber.org/zap"

	"github.com/daylogapp/daylog/repository"
)

// UseCase handles whole-account deletion: the user's todos, the calling
// session and the user row itself. Other live sessions for the user are left
// to expire via their Redis TTL.
type UseCase struct {
	users    repository.UserRepository
	todos    repository.TodoRepository
	sessions repository.SessionRepository
	logger   *zap.Logger
}

func New(users repository.UserRepository, todos repository.TodoRepository, sessions repository.SessionRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		todos:    todos,
		sessions: sessions,
		logger:   logger,
	}
}

// Delete removes everything the user owns. Todos go first so a failure
// part-way never leaves orphaned records behind a deleted account.
func (uc *UseCase) Delete(ctx context.Context, userID, sessionID string) error {
	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		return err
	}

	if err := uc.todos.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := uc.users.Delete(ctx, userID); err != nil {
		return err
	}
	if sessionID != "" {
		if err := uc.sessions.Delete(ctx, sessionID); err != nil {
			uc.logger.Warn("failed to revoke session after account deletion", zap.Error(err))
		}
	}

	uc.logger.Info("account deleted", zap.String("user_id", userID))
	return nil
}
