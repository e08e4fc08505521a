// Package store holds the conversation store and its backends.
package store

import (
	"context"
	"time"

	"animai/internal/egg"
	"animai/internal/user"
)

// Repo is the set of operations available inside and outside a transaction.
// Lookups that find nothing return an error wrapping egg.ErrNotFound.
type Repo interface {
	// Users
	FindUserByEmail(ctx context.Context, email string) (*user.User, error)
	FindUser(ctx context.Context, id uint) (*user.User, error)
	CreateUser(ctx context.Context, u *user.User) error

	// Eggs
	FindEgg(ctx context.Context, userID, eggID uint) (*egg.Egg, error)
	FindActiveEgg(ctx context.Context, userID uint) (*egg.Egg, error)
	CreateEgg(ctx context.Context, e *egg.Egg) error
	SaveEggState(ctx context.Context, eggID uint, st egg.GrowthState, p egg.Archetype, s egg.Scores) error
	ArchiveEgg(ctx context.Context, eggID uint, at time.Time) error

	// Utterances
	AppendUtterance(ctx context.Context, u *egg.Utterance) error
	// CountUtterances counts utterances of every speaker.
	CountUtterances(ctx context.Context, eggID uint) (int64, error)
	RecentUserUtterances(ctx context.Context, eggID uint, limit int) ([]string, error)
	ListUtterances(ctx context.Context, eggID uint) ([]egg.Utterance, error)

	// Pets
	CreatePet(ctx context.Context, p *egg.Pet) error
	ListPets(ctx context.Context, userID uint) ([]egg.Pet, error)
}

// Store is a Repo with transactions and an explicit lifecycle.
type Store interface {
	Repo
	// Tx runs fn atomically: if fn returns an error nothing it wrote is kept.
	Tx(ctx context.Context, fn func(Repo) error) error
	Close() error
}
