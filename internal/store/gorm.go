package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"animai/internal/egg"
	"animai/internal/user"
)

// Gorm is the relational backend shared by sqlite, postgres and mysql.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// DB exposes the handle for health checks and migrations.
func (g *Gorm) DB() *gorm.DB { return g.db }

func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (g *Gorm) Tx(ctx context.Context, fn func(Repo) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx})
	})
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, egg.ErrNotFound)...)
	}
	return err
}

func (g *Gorm) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	err := g.db.WithContext(ctx).Where("email = ?", user.NormalizeEmail(email)).First(&u).Error
	if err != nil {
		return nil, notFound(err, "user %q", email)
	}
	return &u, nil
}

func (g *Gorm) FindUser(ctx context.Context, id uint) (*user.User, error) {
	var u user.User
	if err := g.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, "user %d", id)
	}
	return &u, nil
}

func (g *Gorm) CreateUser(ctx context.Context, u *user.User) error {
	u.Email = user.NormalizeEmail(u.Email)
	return g.db.WithContext(ctx).Create(u).Error
}

func (g *Gorm) FindEgg(ctx context.Context, userID, eggID uint) (*egg.Egg, error) {
	var e egg.Egg
	err := g.db.WithContext(ctx).Where("id = ? AND user_id = ?", eggID, userID).First(&e).Error
	if err != nil {
		return nil, notFound(err, "egg %d for user %d", eggID, userID)
	}
	return &e, nil
}

func (g *Gorm) FindActiveEgg(ctx context.Context, userID uint) (*egg.Egg, error) {
	var e egg.Egg
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND archived = ?", userID, false).
		Order("id DESC").
		First(&e).Error
	if err != nil {
		return nil, notFound(err, "active egg for user %d", userID)
	}
	return &e, nil
}

func (g *Gorm) CreateEgg(ctx context.Context, e *egg.Egg) error {
	return g.db.WithContext(ctx).Create(e).Error
}

func (g *Gorm) SaveEggState(ctx context.Context, eggID uint, st egg.GrowthState, p egg.Archetype, s egg.Scores) error {
	res := g.db.WithContext(ctx).Model(&egg.Egg{}).Where("id = ?", eggID).Updates(map[string]any{
		"status":      st.Stage,
		"progress":    st.Progress,
		"personality": p,
		"traits":      s.JSON(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("egg %d: %w", eggID, egg.ErrNotFound)
	}
	return nil
}

func (g *Gorm) ArchiveEgg(ctx context.Context, eggID uint, at time.Time) error {
	res := g.db.WithContext(ctx).Model(&egg.Egg{}).Where("id = ?", eggID).Updates(map[string]any{
		"archived":   true,
		"hatched_at": at,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("egg %d: %w", eggID, egg.ErrNotFound)
	}
	return nil
}

func (g *Gorm) AppendUtterance(ctx context.Context, u *egg.Utterance) error {
	return g.db.WithContext(ctx).Create(u).Error
}

func (g *Gorm) CountUtterances(ctx context.Context, eggID uint) (int64, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&egg.Utterance{}).Where("egg_id = ?", eggID).Count(&n).Error
	return n, err
}

func (g *Gorm) RecentUserUtterances(ctx context.Context, eggID uint, limit int) ([]string, error) {
	var texts []string
	err := g.db.WithContext(ctx).Model(&egg.Utterance{}).
		Where("egg_id = ? AND speaker = ?", eggID, egg.SpeakerUser).
		Order("id DESC").
		Limit(limit).
		Pluck("text", &texts).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(texts)-1; i < j; i, j = i+1, j-1 {
		texts[i], texts[j] = texts[j], texts[i]
	}
	return texts, nil
}

func (g *Gorm) ListUtterances(ctx context.Context, eggID uint) ([]egg.Utterance, error) {
	out := []egg.Utterance{}
	err := g.db.WithContext(ctx).Where("egg_id = ?", eggID).Order("id ASC").Find(&out).Error
	return out, err
}

func (g *Gorm) CreatePet(ctx context.Context, p *egg.Pet) error {
	return g.db.WithContext(ctx).Create(p).Error
}

func (g *Gorm) ListPets(ctx context.Context, userID uint) ([]egg.Pet, error) {
	out := []egg.Pet{}
	err := g.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&out).Error
	return out, err
}
