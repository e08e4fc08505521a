package incubator

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"animai/internal/egg"
	"animai/internal/lock"
	"animai/internal/store"
)

// Hatch turns a fully grown egg into a pet and archives the egg, so the
// user's next automatic message starts a new one.
func (inc *Incubator) Hatch(ctx context.Context, userID, eggID uint) (*egg.Pet, error) {
	const op = "incubator.Hatch"
	if userID == 0 || eggID == 0 {
		return nil, egg.Validation(op, "userId and eggId are required")
	}

	lockCtx, cancel := context.WithTimeout(ctx, inc.lockWait)
	defer cancel()
	// Same order as automatic message resolution: user, then egg.
	locks := &heldLocks{locker: inc.locker, metrics: inc.metrics}
	defer locks.releaseAll()
	for _, key := range []string{lock.UserKey(userID), lock.EggKey(eggID)} {
		if err := locks.take(lockCtx, key); err != nil {
			return nil, egg.StoreFailure(op, err)
		}
	}

	var pet *egg.Pet
	err := inc.store.Tx(ctx, func(r store.Repo) error {
		e, err := r.FindEgg(ctx, userID, eggID)
		if err != nil {
			return egg.StoreFailure(op, err)
		}
		if e.Archived {
			return egg.Validation(op, "egg has already hatched")
		}
		if e.Status != egg.StageHatched {
			return egg.Validation(op, "egg is not ready to hatch")
		}
		if err := r.ArchiveEgg(ctx, e.ID, inc.now()); err != nil {
			return egg.StoreFailure(op, err)
		}
		pet = egg.HatchPet(e)
		if err := r.CreatePet(ctx, pet); err != nil {
			return egg.StoreFailure(op, err)
		}
		return nil
	})
	if err != nil {
		var typed *egg.Error
		if !errors.As(err, &typed) {
			err = egg.StoreFailure(op, err)
		}
		return nil, err
	}

	inc.metrics.Hatched(string(pet.Personality))
	inc.logger.Info("Egg hatched",
		zap.Uint("egg_id", eggID),
		zap.Uint("pet_id", pet.ID),
		zap.String("species", pet.Species))
	inc.publish(userID, Event{
		Type:        "hatched",
		EggID:       eggID,
		Status:      egg.StageHatched,
		Progress:    100,
		Personality: pet.Personality,
		Pet:         pet,
	})
	return pet, nil
}
