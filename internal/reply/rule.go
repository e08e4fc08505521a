package reply

import (
	"context"
	"fmt"
	"strings"

	"animai/internal/egg"
)

const baseSentence = "나는 아직 껍질 속에 있는 알이야 🥚\n너와 이야기하면서 어떤 모습으로 태어날지 정해지고 있어!"

// flavors are checked in order; the first family with a matching keyword
// answers.
var flavors = []struct {
	keywords []string
	reply    string
}{
	{[]string{"숲", "forest"}, "숲 속 향기가 느껴져… 나, 초록빛이 많은 곳에 태어날지도 몰라 🌲"},
	{[]string{"바다", "sea", "ocean"}, "차가운 파도 소리가 들려… 물과 어울리는 모습이 될까? 🌊"},
	{[]string{"불", "fire"}, "따뜻한 열기가 느껴져... 혹시 불꽃을 다루는 친구가 될지도? 🔥"},
}

// RuleGenerator answers from a fixed keyword table. It is offline and
// never fails.
type RuleGenerator struct{}

func NewRuleGenerator() *RuleGenerator { return &RuleGenerator{} }

func (RuleGenerator) Name() string { return "rule" }

func (RuleGenerator) Generate(_ context.Context, _ egg.Archetype, latestUserText string) (string, error) {
	return RuleReply(latestUserText), nil
}

// RuleReply is the deterministic reply for one user message.
func RuleReply(text string) string {
	if strings.TrimSpace(text) == "" {
		return baseSentence
	}
	lower := strings.ToLower(text)
	for _, f := range flavors {
		for _, k := range f.keywords {
			if strings.Contains(lower, k) {
				return f.reply
			}
		}
	}
	return fmt.Sprintf("%s\n\n방금 말한 '%s'도 잘 기억해 둘게!", baseSentence, text)
}
