package egg

import "time"

// Pet is what an egg becomes once it hatches.
type Pet struct {
	ID          uint      `json:"petId" gorm:"primaryKey"`
	UserID      uint      `json:"userId" gorm:"index;not null"`
	EggID       uint      `json:"eggId" gorm:"uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"size:64;not null"`
	Species     string    `json:"species" gorm:"size:64;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Personality Archetype `json:"personality" gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time `json:"createdAt"`
}

const defaultPetName = "나만의 동물"

var petProfiles = map[Archetype]struct {
	species     string
	description string
}{
	Fire: {
		"작은 드래곤",
		"불꽃처럼 뜨겁고 에너지가 넘치는 작은 드래곤이에요. 도전하는 걸 좋아하죠!",
	},
	Water: {
		"바다 물고기",
		"잔잔한 파도와 함께 떠다니는 여유로운 물고기예요. 감성이 풍부하고 차분한 성격이에요.",
	},
	Forest: {
		"숲속 여우",
		"조용하고 따뜻한 숲의 향기를 닮은 여우예요. 자연을 좋아하는 당신과 잘 맞아요.",
	},
	City: {
		"꼬마 로봇",
		"반짝이는 도시 불빛 속에서 자란 호기심 많은 로봇이에요. 새로운 기술을 보면 눈이 빛나요.",
	},
	Neutral: {
		"수수께끼 생명체",
		"아직 모든 것이 미지의 영역인 신비로운 존재예요. 앞으로 함께 지내면서 서서히 성격이 드러날 거예요.",
	},
}

// HatchPet derives the pet an egg turns into from its personality.
func HatchPet(e *Egg) *Pet {
	profile, ok := petProfiles[e.Personality]
	if !ok {
		profile = petProfiles[Neutral]
	}
	return &Pet{
		UserID:      e.UserID,
		EggID:       e.ID,
		Name:        defaultPetName,
		Species:     profile.species,
		Description: profile.description,
		Personality: e.Personality,
	}
}
