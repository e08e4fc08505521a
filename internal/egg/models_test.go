package egg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentUserTexts_WindowAndOrder(t *testing.T) {
	var utts []Utterance
	for i := 1; i <= 6; i++ {
		utts = append(utts,
			Utterance{ID: uint(2*i - 1), Speaker: SpeakerUser, Text: fmt.Sprintf("u%d", i)},
			Utterance{ID: uint(2 * i), Speaker: SpeakerEgg, Text: fmt.Sprintf("e%d", i)},
		)
	}
	assert.Equal(t, []string{"u4", "u5", "u6"}, RecentUserTexts(utts, 3))
	assert.Len(t, RecentUserTexts(utts, 50), 6)
	assert.Empty(t, RecentUserTexts(nil, 50))
}

func TestEgg_ApplyAndScoresRoundTrip(t *testing.T) {
	e := NewEgg(7)
	assert.Equal(t, StageFor(0), e.Growth())
	assert.Equal(t, Neutral, e.Personality)

	s := Scores{Water: 6}
	e.Apply(StageFor(12), Water, s)
	assert.Equal(t, GrowthState{StageEgg, 40}, e.Growth())
	assert.Equal(t, s, e.Scores())
}

func TestHatchPet_UsesPersonality(t *testing.T) {
	e := &Egg{ID: 3, UserID: 9, Personality: Fire}
	p := HatchPet(e)
	assert.Equal(t, "작은 드래곤", p.Species)
	assert.Equal(t, uint(3), p.EggID)
	assert.Equal(t, uint(9), p.UserID)

	unknown := HatchPet(&Egg{Personality: "sky"})
	assert.Equal(t, "수수께끼 생명체", unknown.Species)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("op", "missing")))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrap: %w", ErrNotFound)))
	assert.Equal(t, KindNotFound, KindOf(StoreFailure("find", ErrNotFound)))
	assert.Equal(t, KindStore, KindOf(StoreFailure("save", errors.New("disk full"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))

	err := fmt.Errorf("outer: %w", GeneratorFailure("complete", errors.New("timeout")))
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "complete", e.Op)
	assert.Equal(t, "generator", e.Kind.String())
}
