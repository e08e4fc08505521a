package store

import (
	"context"
	"fmt"
	"time"

	"animai/internal/egg"
	"animai/internal/user"
)

// NullID is the identifier the null backend hands out for every user and
// every new egg.
const NullID uint = 1

// Null persists nothing. Every login resolves to user 1, every egg is a
// fresh one and the history is always empty, so the orchestrator reports
// egg/10/neutral for every message. It stands in for a real backend in
// demos and when no database is configured.
type Null struct{}

func NewNull() *Null { return &Null{} }

func (Null) Close() error { return nil }

func (n Null) Tx(_ context.Context, fn func(Repo) error) error { return fn(n) }

func (Null) FindUserByEmail(_ context.Context, email string) (*user.User, error) {
	return nil, fmt.Errorf("user %q: %w", email, egg.ErrNotFound)
}

func (Null) FindUser(_ context.Context, id uint) (*user.User, error) {
	return &user.User{ID: id}, nil
}

func (Null) CreateUser(_ context.Context, u *user.User) error {
	u.ID = NullID
	u.Email = user.NormalizeEmail(u.Email)
	return nil
}

func (Null) FindEgg(_ context.Context, userID, eggID uint) (*egg.Egg, error) {
	e := egg.NewEgg(userID)
	e.ID = eggID
	return e, nil
}

func (Null) FindActiveEgg(_ context.Context, userID uint) (*egg.Egg, error) {
	return nil, fmt.Errorf("active egg for user %d: %w", userID, egg.ErrNotFound)
}

func (Null) CreateEgg(_ context.Context, e *egg.Egg) error {
	e.ID = NullID
	return nil
}

func (Null) SaveEggState(context.Context, uint, egg.GrowthState, egg.Archetype, egg.Scores) error {
	return nil
}

func (Null) ArchiveEgg(context.Context, uint, time.Time) error { return nil }

func (Null) AppendUtterance(context.Context, *egg.Utterance) error { return nil }

func (Null) CountUtterances(context.Context, uint) (int64, error) { return 0, nil }

func (Null) RecentUserUtterances(context.Context, uint, int) ([]string, error) { return nil, nil }

func (Null) ListUtterances(context.Context, uint) ([]egg.Utterance, error) {
	return []egg.Utterance{}, nil
}

func (Null) CreatePet(_ context.Context, p *egg.Pet) error {
	p.ID = NullID
	return nil
}

func (Null) ListPets(context.Context, uint) ([]egg.Pet, error) { return []egg.Pet{}, nil }
