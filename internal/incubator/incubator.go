// Package incubator runs the per-message growth pipeline: record the user's
// message, re-derive stage and personality, answer, and record the answer.
package incubator

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"animai/internal/egg"
	"animai/internal/lock"
	"animai/internal/metrics"
	"animai/internal/reply"
	"animai/internal/store"
)

const defaultLockWait = 10 * time.Second

// Result is what a single message produces.
type Result struct {
	EggID       uint          `json:"eggId"`
	Reply       string        `json:"reply"`
	Status      egg.Stage     `json:"status"`
	Progress    int           `json:"progress"`
	Personality egg.Archetype `json:"personality"`
}

// Notifier is told about every state change, e.g. to push it to open
// websockets. It must not block.
type Notifier interface {
	Publish(userID uint, ev Event)
}

// Event is a state change pushed to a user's listeners.
type Event struct {
	Type        string        `json:"type"` // "message" | "hatched"
	EggID       uint          `json:"eggId"`
	Status      egg.Stage     `json:"status"`
	Progress    int           `json:"progress"`
	Personality egg.Archetype `json:"personality"`
	Reply       string        `json:"reply,omitempty"`
	Pet         *egg.Pet      `json:"pet,omitempty"`
}

type Options struct {
	Store  store.Store
	Locker lock.Locker
	// Reply answers each message. Fallback answers when Reply fails; with
	// no Fallback the fixed apology is used.
	Reply    reply.Generator
	Fallback reply.Generator
	// Window is how many recent user messages feed the personality.
	Window   int
	LockWait time.Duration
	Notifier Notifier
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

type Incubator struct {
	store    store.Store
	locker   lock.Locker
	reply    reply.Generator
	fallback reply.Generator
	window   int
	lockWait time.Duration
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func New(opts Options) *Incubator {
	inc := &Incubator{
		store:    opts.Store,
		locker:   opts.Locker,
		reply:    opts.Reply,
		fallback: opts.Fallback,
		window:   opts.Window,
		lockWait: opts.LockWait,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		now:      time.Now,
	}
	if inc.locker == nil {
		inc.locker = lock.NewLocal()
	}
	if inc.reply == nil {
		inc.reply = reply.NewRuleGenerator()
	}
	if inc.window <= 0 {
		inc.window = egg.DefaultPersonalityWindow
	}
	if inc.lockWait <= 0 {
		inc.lockWait = defaultLockWait
	}
	if inc.logger == nil {
		inc.logger = zap.NewNop()
	}
	inc.logger = inc.logger.Named("incubator")
	return inc
}

// snapshot is the egg state committed by one message.
type snapshot struct {
	eggID       uint
	before      egg.Stage
	growth      egg.GrowthState
	personality egg.Archetype
}

// HandleMessage runs the whole pipeline for one user message. eggID 0
// picks the user's active egg, creating one if needed.
func (inc *Incubator) HandleMessage(ctx context.Context, userID, eggID uint, text string) (*Result, error) {
	const op = "incubator.HandleMessage"
	if userID == 0 {
		return nil, egg.Validation(op, "userId is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, egg.Validation(op, "message is required")
	}
	if _, err := inc.store.FindUser(ctx, userID); err != nil {
		return nil, egg.StoreFailure(op, err)
	}

	snap, err := inc.advance(ctx, userID, eggID, text)
	if err != nil {
		return nil, err
	}
	log := inc.logger.With(zap.Uint("egg_id", snap.eggID), zap.Uint("user_id", userID))
	if snap.before != snap.growth.Stage {
		inc.metrics.StageReached(string(snap.growth.Stage))
		log.Info("Egg changed stage",
			zap.String("from", string(snap.before)),
			zap.String("to", string(snap.growth.Stage)))
	}

	answer, generator := inc.answer(ctx, log, snap.personality, text)
	inc.metrics.MessageHandled(generator)

	// The egg state is already committed; a lost reply row is logged and
	// the caller still gets the reply.
	if err := inc.store.AppendUtterance(ctx, &egg.Utterance{
		EggID:   snap.eggID,
		UserID:  userID,
		Speaker: egg.SpeakerEgg,
		Text:    answer,
	}); err != nil {
		log.Error("Failed to record reply", zap.Error(err))
	}

	res := &Result{
		EggID:       snap.eggID,
		Reply:       answer,
		Status:      snap.growth.Stage,
		Progress:    snap.growth.Progress,
		Personality: snap.personality,
	}
	inc.publish(userID, Event{
		Type:        "message",
		EggID:       res.EggID,
		Status:      res.Status,
		Progress:    res.Progress,
		Personality: res.Personality,
		Reply:       res.Reply,
	})
	return res, nil
}

// advance records the message and re-derives the egg state under the egg's
// lock, in one transaction.
func (inc *Incubator) advance(ctx context.Context, userID, eggID uint, text string) (*snapshot, error) {
	const op = "incubator.advance"
	locks := &heldLocks{locker: inc.locker, metrics: inc.metrics}
	defer locks.releaseAll()

	lockCtx, cancel := context.WithTimeout(ctx, inc.lockWait)
	defer cancel()

	auto := eggID == 0
	if auto {
		// The user lock keeps two automatic requests from both creating an egg.
		if err := locks.take(lockCtx, lock.UserKey(userID)); err != nil {
			return nil, egg.StoreFailure(op, err)
		}
		active, err := inc.store.FindActiveEgg(ctx, userID)
		switch {
		case err == nil:
			eggID = active.ID
		case !errors.Is(err, egg.ErrNotFound):
			return nil, egg.StoreFailure(op, err)
		}
	}
	if eggID != 0 {
		if err := locks.take(lockCtx, lock.EggKey(eggID)); err != nil {
			return nil, egg.StoreFailure(op, err)
		}
	}

	var snap snapshot
	err := inc.store.Tx(ctx, func(r store.Repo) error {
		e, err := inc.resolve(ctx, r, userID, eggID, auto)
		if err != nil {
			return err
		}
		snap.eggID = e.ID
		snap.before = e.Status

		if err := r.AppendUtterance(ctx, &egg.Utterance{
			EggID:   e.ID,
			UserID:  userID,
			Speaker: egg.SpeakerUser,
			Text:    text,
		}); err != nil {
			return err
		}

		total, err := r.CountUtterances(ctx, e.ID)
		if err != nil {
			return err
		}
		snap.growth = egg.StageFor(total)

		recent, err := r.RecentUserUtterances(ctx, e.ID, inc.window)
		if err != nil {
			return err
		}
		scores := egg.Score(recent)
		snap.personality = scores.Winner()

		return r.SaveEggState(ctx, e.ID, snap.growth, snap.personality, scores)
	})
	if err != nil {
		var typed *egg.Error
		if errors.As(err, &typed) {
			return nil, err
		}
		return nil, egg.StoreFailure(op, err)
	}
	return &snap, nil
}

// resolve returns the egg the message is for. Automatic resolution creates
// a new egg when the user has none, or when the one found was archived
// while we waited for its lock.
func (inc *Incubator) resolve(ctx context.Context, r store.Repo, userID, eggID uint, auto bool) (*egg.Egg, error) {
	const op = "incubator.resolve"
	if eggID != 0 {
		e, err := r.FindEgg(ctx, userID, eggID)
		switch {
		case err == nil && !e.Archived:
			return e, nil
		case err == nil && !auto:
			return nil, egg.Validation(op, "egg has already hatched")
		case err != nil && !(auto && errors.Is(err, egg.ErrNotFound)):
			return nil, egg.StoreFailure(op, err)
		}
	}
	e := egg.NewEgg(userID)
	if err := r.CreateEgg(ctx, e); err != nil {
		return nil, egg.StoreFailure(op, err)
	}
	inc.logger.Info("Created egg", zap.Uint("egg_id", e.ID), zap.Uint("user_id", userID))
	return e, nil
}

// answer never fails: a generator error is replaced by the fallback
// generator's output, or the apology.
func (inc *Incubator) answer(ctx context.Context, log *zap.Logger, p egg.Archetype, text string) (string, string) {
	out, err := inc.reply.Generate(ctx, p, text)
	if err == nil {
		return out, inc.reply.Name()
	}
	log.Warn("Reply generator failed, falling back",
		zap.String("generator", inc.reply.Name()), zap.Error(err))

	if inc.fallback != nil {
		if out, ferr := inc.fallback.Generate(ctx, p, text); ferr == nil {
			inc.metrics.ReplyFallback(inc.fallback.Name())
			return out, inc.fallback.Name()
		}
	}
	inc.metrics.ReplyFallback("apology")
	return reply.Apology, "apology"
}

func (inc *Incubator) publish(userID uint, ev Event) {
	if inc.notifier != nil {
		inc.notifier.Publish(userID, ev)
	}
}

// heldLocks releases in reverse acquisition order.
type heldLocks struct {
	locker  lock.Locker
	metrics *metrics.Metrics
	unlocks []func()
}

func (h *heldLocks) take(ctx context.Context, key string) error {
	start := time.Now()
	unlock, err := h.locker.Lock(ctx, key)
	if err != nil {
		return err
	}
	h.metrics.LockWaited(time.Since(start))
	h.unlocks = append(h.unlocks, unlock)
	return nil
}

func (h *heldLocks) releaseAll() {
	for i := len(h.unlocks) - 1; i >= 0; i-- {
		h.unlocks[i]()
	}
}
