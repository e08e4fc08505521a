package egg

// Archetype is the personality label inferred from a conversation.
type Archetype string

const (
	Neutral Archetype = "neutral"
	Fire    Archetype = "fire"
	Water   Archetype = "water"
	Forest  Archetype = "forest"
	City    Archetype = "city"
)

// Stage is the lifecycle phase of an egg.
type Stage string

const (
	StageEgg      Stage = "egg"
	StageHatching Stage = "hatching"
	StageHatched  Stage = "hatched"
)

// Speaker identifies who authored an utterance.
type Speaker string

const (
	SpeakerUser Speaker = "USER"
	SpeakerEgg  Speaker = "EGG"
)

// GrowthState is always produced by StageFor; stage and progress are never set apart.
type GrowthState struct {
	Stage    Stage `json:"status"`
	Progress int   `json:"progress"`
}

// Valid reports whether a is one of the known archetypes.
func (a Archetype) Valid() bool {
	switch a {
	case Neutral, Fire, Water, Forest, City:
		return true
	}
	return false
}
