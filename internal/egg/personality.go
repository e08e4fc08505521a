package egg

import "strings"

// DefaultPersonalityWindow is how many recent user utterances are scored.
const DefaultPersonalityWindow = 50

type trigger struct {
	keywords []string
	weight   int
}

// categories is declared in tie-break order: on equal scores the earlier
// category wins.
var categories = []struct {
	archetype Archetype
	triggers  []trigger
}{
	{Fire, []trigger{
		{[]string{"불", "fire", "flame"}, 2},
		{[]string{"용", "dragon"}, 1},
	}},
	{Water, []trigger{
		{[]string{"바다", "물", "sea", "ocean"}, 2},
		{[]string{"파도", "wave"}, 1},
	}},
	{Forest, []trigger{
		{[]string{"숲", "나무", "꽃", "forest"}, 2},
		{[]string{"동물", "animal"}, 1},
	}},
	{City, []trigger{
		{[]string{"도시", "빌딩", "city"}, 2},
		{[]string{"로봇", "robot", "tech"}, 2},
	}},
}

// Scores holds the accumulated keyword score per category.
type Scores struct {
	Fire   int `json:"fire"`
	Water  int `json:"water"`
	Forest int `json:"forest"`
	City   int `json:"city"`
}

func (s *Scores) add(a Archetype, n int) {
	switch a {
	case Fire:
		s.Fire += n
	case Water:
		s.Water += n
	case Forest:
		s.Forest += n
	case City:
		s.City += n
	}
}

// Of returns the score of one category; Neutral and unknown labels score 0.
func (s Scores) Of(a Archetype) int {
	switch a {
	case Fire:
		return s.Fire
	case Water:
		return s.Water
	case Forest:
		return s.Forest
	case City:
		return s.City
	}
	return 0
}

// Winner picks the strictly highest category in declaration order, or
// Neutral when nothing scored.
func (s Scores) Winner() Archetype {
	best, bestScore := Neutral, 0
	for _, c := range categories {
		if v := s.Of(c.archetype); v > bestScore {
			best, bestScore = c.archetype, v
		}
	}
	return best
}

// Score accumulates keyword triggers over every utterance. Each trigger
// counts at most once per utterance and is matched as a substring against
// both the raw text and its lower-cased copy, since Hangul has no case.
func Score(utterances []string) Scores {
	var s Scores
	for _, text := range utterances {
		lower := strings.ToLower(text)
		for _, c := range categories {
			for _, t := range c.triggers {
				if matchesAny(text, lower, t.keywords) {
					s.add(c.archetype, t.weight)
				}
			}
		}
	}
	return s
}

// Classify maps user utterances to a single archetype. Empty input and
// inputs without any keyword yield Neutral.
func Classify(utterances []string) Archetype {
	return Score(utterances).Winner()
}

func matchesAny(text, lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) || strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
