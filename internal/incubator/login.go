package incubator

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"animai/internal/egg"
	"animai/internal/lock"
	"animai/internal/user"
)

// Login returns the account for email, creating it on first sight. An
// account with a stored password hash requires the matching password;
// accounts created without one accept any password.
func (inc *Incubator) Login(ctx context.Context, email, password, nickname string) (*user.User, error) {
	const op = "incubator.Login"
	email = user.NormalizeEmail(email)
	if email == "" {
		return nil, egg.Validation(op, "email is required")
	}

	lockCtx, cancel := context.WithTimeout(ctx, inc.lockWait)
	defer cancel()
	unlock, err := inc.locker.Lock(lockCtx, lock.EmailKey(email))
	if err != nil {
		return nil, egg.StoreFailure(op, err)
	}
	defer unlock()

	u, err := inc.store.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		if u.PasswordHash != "" && user.CheckPassword(u.PasswordHash, password) != nil {
			return nil, egg.Auth(op, "invalid email or password")
		}
		return u, nil
	case !errors.Is(err, egg.ErrNotFound):
		return nil, egg.StoreFailure(op, err)
	}

	u = &user.User{Email: email, Nickname: strings.TrimSpace(nickname)}
	if u.Nickname == "" {
		u.Nickname = user.DefaultNickname(email)
	}
	if password != "" {
		if u.PasswordHash, err = user.HashPassword(password); err != nil {
			return nil, &egg.Error{Kind: egg.KindInternal, Op: op, Err: err}
		}
	}
	if err := inc.store.CreateUser(ctx, u); err != nil {
		return nil, egg.StoreFailure(op, err)
	}
	inc.logger.Info("Created user", zap.Uint("user_id", u.ID), zap.String("nickname", u.Nickname))
	return u, nil
}
