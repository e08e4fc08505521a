package egg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_EmptyIsNeutral(t *testing.T) {
	assert.Equal(t, Neutral, Classify(nil))
	assert.Equal(t, Neutral, Classify([]string{}))
}

func TestClassify_NoKeywordsIsNeutral(t *testing.T) {
	texts := []string{"안녕", "오늘 뭐 했어?", "hello there", "good morning", "잘 자"}
	assert.Equal(t, Neutral, Classify(texts))
	assert.Equal(t, Scores{}, Score(texts))
}

func TestClassify_CaseInsensitiveLatin(t *testing.T) {
	assert.Equal(t, Fire, Classify([]string{"I saw a FIRE"}))
	assert.Equal(t, City, Classify([]string{"Big City lights"}))
	assert.Equal(t, Forest, Classify([]string{"FoReSt walk"}))
}

func TestClassify_SubstringMatch(t *testing.T) {
	// "seashell" contains "sea"; substring matching is intended.
	assert.Equal(t, Water, Classify([]string{"I found a seashell"}))
}

func TestClassify_TieBreakDeclaredFirstWins(t *testing.T) {
	assert.Equal(t, Fire, Classify([]string{"fire", "sea"}))
	assert.Equal(t, Fire, Classify([]string{"sea", "fire"}))
	assert.Equal(t, Water, Classify([]string{"ocean", "forest"}))
	assert.Equal(t, Forest, Classify([]string{"city", "나무"}))
}

func TestClassify_WaterScenario(t *testing.T) {
	texts := []string{"바다 좋아", "바다에 가자", "바다 냄새"}
	s := Score(texts)
	assert.Equal(t, 6, s.Water)
	assert.Equal(t, Water, s.Winner())
}

func TestScore_OneUtteranceFeedsSeveralCategories(t *testing.T) {
	s := Score([]string{"a dragon robot in the forest"})
	assert.Equal(t, Scores{Fire: 1, Forest: 2, City: 2}, s)
	assert.Equal(t, Forest, s.Winner())
}

func TestScore_TriggerCountsOncePerUtterance(t *testing.T) {
	s := Score([]string{"fire fire flame 불"})
	assert.Equal(t, 2, s.Fire)
}

func TestScore_CityTriggersStack(t *testing.T) {
	s := Score([]string{"city robot"})
	assert.Equal(t, 4, s.City)
}

func TestScore_LowWeightTriggers(t *testing.T) {
	assert.Equal(t, Scores{Fire: 1}, Score([]string{"용"}))
	assert.Equal(t, Scores{Water: 1}, Score([]string{"wave"}))
	assert.Equal(t, Scores{Forest: 1}, Score([]string{"animal"}))
}

func TestClassify_PermutationInvariant(t *testing.T) {
	base := []string{"fire", "sea", "ocean", "forest", "용", "robot"}
	want := Classify(base)
	perms := [][]string{
		{"robot", "용", "forest", "ocean", "sea", "fire"},
		{"sea", "fire", "robot", "forest", "ocean", "용"},
		{"ocean", "robot", "fire", "용", "sea", "forest"},
	}
	for _, p := range perms {
		assert.Equal(t, want, Classify(p))
		assert.Equal(t, Score(base), Score(p))
	}
}

func TestClassify_Idempotent(t *testing.T) {
	texts := []string{"불꽃", "바다", "숲"}
	assert.Equal(t, Classify(texts), Classify(texts))
}

func TestScores_Of(t *testing.T) {
	s := Scores{Fire: 1, Water: 2, Forest: 3, City: 4}
	assert.Equal(t, 1, s.Of(Fire))
	assert.Equal(t, 4, s.Of(City))
	assert.Equal(t, 0, s.Of(Neutral))
}
