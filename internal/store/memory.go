package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"animai/internal/egg"
	"animai/internal/user"
)

// Memory keeps everything in process. Each call holds mu only for its own
// duration; Tx atomicity comes from an undo log, so a transaction never
// blocks unrelated readers while it waits on the reply path. Writes made
// inside an open Tx are visible to other callers before it commits.
type Memory struct {
	mu sync.RWMutex

	users        map[uint]*user.User
	usersByEmail map[string]uint
	eggs         map[uint]*egg.Egg
	utterances   map[uint][]egg.Utterance // by egg, ascending ID
	pets         map[uint]*egg.Pet

	nextUser, nextEgg, nextUtterance, nextPet uint

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users:        make(map[uint]*user.User),
		usersByEmail: make(map[string]uint),
		eggs:         make(map[uint]*egg.Egg),
		utterances:   make(map[uint][]egg.Utterance),
		pets:         make(map[uint]*egg.Pet),
		now:          time.Now,
	}
}

func (m *Memory) Close() error { return nil }

// Tx runs fn against a recording view of m and replays the undo log in
// reverse when fn fails.
func (m *Memory) Tx(ctx context.Context, fn func(Repo) error) error {
	tx := &memoryTx{Memory: m}
	if err := fn(tx); err != nil {
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		return err
	}
	return nil
}

func (m *Memory) FindUserByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.usersByEmail[user.NormalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", email, egg.ErrNotFound)
	}
	u := *m.users[id]
	return &u, nil
}

func (m *Memory) FindUser(_ context.Context, id uint) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, egg.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) CreateUser(_ context.Context, u *user.User) error {
	_, err := m.createUser(u)
	return err
}

func (m *Memory) createUser(u *user.User) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := user.NormalizeEmail(u.Email)
	if _, dup := m.usersByEmail[email]; dup {
		return nil, fmt.Errorf("user %q already exists", email)
	}
	m.nextUser++
	now := m.now()
	u.ID, u.Email, u.CreatedAt, u.UpdatedAt = m.nextUser, email, now, now
	cp := *u
	m.users[u.ID] = &cp
	m.usersByEmail[email] = u.ID
	id := u.ID
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.users, id)
		delete(m.usersByEmail, email)
	}, nil
}

func (m *Memory) FindEgg(_ context.Context, userID, eggID uint) (*egg.Egg, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.eggs[eggID]
	if !ok || e.UserID != userID {
		return nil, fmt.Errorf("egg %d for user %d: %w", eggID, userID, egg.ErrNotFound)
	}
	return cloneEgg(e), nil
}

func (m *Memory) FindActiveEgg(_ context.Context, userID uint) (*egg.Egg, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var found *egg.Egg
	for _, e := range m.eggs {
		if e.UserID != userID || e.Archived {
			continue
		}
		if found == nil || e.ID > found.ID {
			found = e
		}
	}
	if found == nil {
		return nil, fmt.Errorf("active egg for user %d: %w", userID, egg.ErrNotFound)
	}
	return cloneEgg(found), nil
}

func (m *Memory) CreateEgg(_ context.Context, e *egg.Egg) error {
	m.createEgg(e)
	return nil
}

func (m *Memory) createEgg(e *egg.Egg) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEgg++
	now := m.now()
	e.ID, e.CreatedAt, e.UpdatedAt = m.nextEgg, now, now
	m.eggs[e.ID] = cloneEgg(e)
	id := e.ID
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.eggs, id)
		delete(m.utterances, id)
	}
}

func (m *Memory) SaveEggState(_ context.Context, eggID uint, st egg.GrowthState, p egg.Archetype, s egg.Scores) error {
	_, err := m.saveEggState(eggID, st, p, s)
	return err
}

func (m *Memory) saveEggState(eggID uint, st egg.GrowthState, p egg.Archetype, s egg.Scores) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.eggs[eggID]
	if !ok {
		return nil, fmt.Errorf("egg %d: %w", eggID, egg.ErrNotFound)
	}
	prev := cloneEgg(e)
	e.Apply(st, p, s)
	e.UpdatedAt = m.now()
	return m.restoreEgg(prev), nil
}

func (m *Memory) ArchiveEgg(_ context.Context, eggID uint, at time.Time) error {
	_, err := m.archiveEgg(eggID, at)
	return err
}

func (m *Memory) archiveEgg(eggID uint, at time.Time) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.eggs[eggID]
	if !ok {
		return nil, fmt.Errorf("egg %d: %w", eggID, egg.ErrNotFound)
	}
	prev := cloneEgg(e)
	e.Archived = true
	e.HatchedAt = &at
	e.UpdatedAt = m.now()
	return m.restoreEgg(prev), nil
}

func (m *Memory) restoreEgg(prev *egg.Egg) func() {
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.eggs[prev.ID]; ok {
			m.eggs[prev.ID] = prev
		}
	}
}

func (m *Memory) AppendUtterance(_ context.Context, u *egg.Utterance) error {
	_, err := m.appendUtterance(u)
	return err
}

func (m *Memory) appendUtterance(u *egg.Utterance) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.eggs[u.EggID]; !ok {
		return nil, fmt.Errorf("egg %d: %w", u.EggID, egg.ErrNotFound)
	}
	m.nextUtterance++
	u.ID, u.CreatedAt = m.nextUtterance, m.now()
	m.utterances[u.EggID] = append(m.utterances[u.EggID], *u)
	eggID, id := u.EggID, u.ID
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		list := m.utterances[eggID]
		for i := range list {
			if list[i].ID == id {
				m.utterances[eggID] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}, nil
}

func (m *Memory) CountUtterances(_ context.Context, eggID uint) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.utterances[eggID])), nil
}

func (m *Memory) RecentUserUtterances(_ context.Context, eggID uint, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return egg.RecentUserTexts(m.utterances[eggID], limit), nil
}

func (m *Memory) ListUtterances(_ context.Context, eggID uint) ([]egg.Utterance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]egg.Utterance, len(m.utterances[eggID]))
	copy(out, m.utterances[eggID])
	return out, nil
}

func (m *Memory) CreatePet(_ context.Context, p *egg.Pet) error {
	_, err := m.createPet(p)
	return err
}

func (m *Memory) createPet(p *egg.Pet) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.pets {
		if existing.EggID == p.EggID {
			return nil, fmt.Errorf("egg %d already hatched", p.EggID)
		}
	}
	m.nextPet++
	p.ID, p.CreatedAt = m.nextPet, m.now()
	cp := *p
	m.pets[p.ID] = &cp
	id := p.ID
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.pets, id)
	}, nil
}

func (m *Memory) ListPets(_ context.Context, userID uint) ([]egg.Pet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []egg.Pet{}
	for _, p := range m.pets {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneEgg(e *egg.Egg) *egg.Egg {
	cp := *e
	if e.Traits != nil {
		cp.Traits = append(cp.Traits[:0:0], e.Traits...)
	}
	if e.HatchedAt != nil {
		t := *e.HatchedAt
		cp.HatchedAt = &t
	}
	return &cp
}

// memoryTx records an undo step for every write.
type memoryTx struct {
	*Memory
	undo []func()
}

func (tx *memoryTx) record(undo func(), err error) error {
	if err == nil && undo != nil {
		tx.undo = append(tx.undo, undo)
	}
	return err
}

func (tx *memoryTx) CreateUser(_ context.Context, u *user.User) error {
	return tx.record(tx.createUser(u))
}

func (tx *memoryTx) CreateEgg(_ context.Context, e *egg.Egg) error {
	return tx.record(tx.createEgg(e), nil)
}

func (tx *memoryTx) SaveEggState(_ context.Context, eggID uint, st egg.GrowthState, p egg.Archetype, s egg.Scores) error {
	return tx.record(tx.saveEggState(eggID, st, p, s))
}

func (tx *memoryTx) ArchiveEgg(_ context.Context, eggID uint, at time.Time) error {
	return tx.record(tx.archiveEgg(eggID, at))
}

func (tx *memoryTx) AppendUtterance(_ context.Context, u *egg.Utterance) error {
	return tx.record(tx.appendUtterance(u))
}

func (tx *memoryTx) CreatePet(_ context.Context, p *egg.Pet) error {
	return tx.record(tx.createPet(p))
}
