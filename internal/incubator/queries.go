package incubator

import (
	"context"
	"errors"

	"animai/internal/egg"
)

// Egg returns the user's egg. eggID 0 means the active one.
func (inc *Incubator) Egg(ctx context.Context, userID, eggID uint) (*egg.Egg, error) {
	const op = "incubator.Egg"
	if userID == 0 {
		return nil, egg.Validation(op, "userId is required")
	}
	var (
		e   *egg.Egg
		err error
	)
	if eggID == 0 {
		e, err = inc.store.FindActiveEgg(ctx, userID)
	} else {
		e, err = inc.store.FindEgg(ctx, userID, eggID)
	}
	if err != nil {
		return nil, egg.StoreFailure(op, err)
	}
	return e, nil
}

// History lists an egg's utterances in the order they were recorded. A
// user without an active egg has an empty history.
func (inc *Incubator) History(ctx context.Context, userID, eggID uint) ([]egg.Utterance, error) {
	const op = "incubator.History"
	e, err := inc.Egg(ctx, userID, eggID)
	if err != nil {
		if eggID == 0 && errors.Is(err, egg.ErrNotFound) {
			return []egg.Utterance{}, nil
		}
		return nil, err
	}
	list, err := inc.store.ListUtterances(ctx, e.ID)
	if err != nil {
		return nil, egg.StoreFailure(op, err)
	}
	return list, nil
}

func (inc *Incubator) Pets(ctx context.Context, userID uint) ([]egg.Pet, error) {
	const op = "incubator.Pets"
	if userID == 0 {
		return nil, egg.Validation(op, "userId is required")
	}
	pets, err := inc.store.ListPets(ctx, userID)
	if err != nil {
		return nil, egg.StoreFailure(op, err)
	}
	return pets, nil
}
