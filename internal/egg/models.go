package egg

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Egg is the aggregate root keyed by ID and owned by one user.
type Egg struct {
	ID          uint           `json:"eggId" gorm:"primaryKey"`
	UserID      uint           `json:"userId" gorm:"index;not null"`
	Status      Stage          `json:"status" gorm:"type:varchar(16);not null;default:'egg'"`
	Progress    int            `json:"progress" gorm:"not null;default:10"`
	Personality Archetype      `json:"personality" gorm:"type:varchar(16);not null;default:'neutral'"`
	Traits      datatypes.JSON `json:"traits,omitempty"`
	Archived    bool           `json:"archived" gorm:"index;not null;default:false"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	HatchedAt   *time.Time     `json:"hatchedAt,omitempty"`
}

// NewEgg returns a fresh egg in the state StageFor(0) describes.
func NewEgg(userID uint) *Egg {
	st := StageFor(0)
	return &Egg{
		UserID:      userID,
		Status:      st.Stage,
		Progress:    st.Progress,
		Personality: Neutral,
	}
}

func (e *Egg) Growth() GrowthState {
	return GrowthState{Stage: e.Status, Progress: e.Progress}
}

// Apply copies a derived snapshot onto the egg.
func (e *Egg) Apply(st GrowthState, p Archetype, s Scores) {
	e.Status = st.Stage
	e.Progress = st.Progress
	e.Personality = p
	e.Traits = s.JSON()
}

// Scores decodes the persisted keyword breakdown; a missing or bad value
// decodes as all zeros.
func (e *Egg) Scores() Scores {
	var s Scores
	if len(e.Traits) > 0 {
		_ = json.Unmarshal(e.Traits, &s)
	}
	return s
}

func (s Scores) JSON() datatypes.JSON {
	b, _ := json.Marshal(s)
	return datatypes.JSON(b)
}

// Utterance is one recorded message. ID doubles as the ordering sequence.
type Utterance struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	EggID     uint      `json:"eggId" gorm:"index;not null"`
	UserID    uint      `json:"-" gorm:"index"`
	Speaker   Speaker   `json:"speaker" gorm:"type:varchar(8);not null"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecentUserTexts returns the texts of the last n USER utterances in
// sequence order. utterances must already be sorted by ID.
func RecentUserTexts(utterances []Utterance, n int) []string {
	var window []string
	for i := len(utterances) - 1; i >= 0 && len(window) < n; i-- {
		if utterances[i].Speaker != SpeakerUser {
			continue
		}
		window = append(window, utterances[i].Text)
	}
	for i, j := 0, len(window)-1; i < j; i, j = i+1, j-1 {
		window[i], window[j] = window[j], window[i]
	}
	return window
}
