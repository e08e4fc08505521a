package reply

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"animai/internal/egg"
)

// EmptyReply is returned when the completion service answers with nothing.
const EmptyReply = "음... 잘 이해하지 못했어 😅"

const defaultModelTimeout = 30 * time.Second

// Completer is the text-completion collaborator.
type Completer interface {
	Complete(ctx context.Context, systemPreamble, userText string) (string, error)
}

const preambleHead = "너는 사용자와 대화하며 자라는 가상의 알이야. 아직 부화하지 않았고, 짧고 다정한 한국어 한두 문장으로 대답해. 이모지는 하나까지만 써."

var personas = map[egg.Archetype]string{
	egg.Neutral: "아직 어떤 성격이 될지 정해지지 않은 호기심 많은 알이야. 무엇이든 궁금해해.",
	egg.Fire:    "너는 불꽃처럼 뜨겁고 에너지가 넘치는 알이야. 용감하고 도전하는 걸 좋아해.",
	egg.Water:   "너는 잔잔한 바다를 닮은 차분하고 감성적인 알이야. 파도 소리를 좋아해.",
	egg.Forest:  "너는 숲과 나무, 동물을 사랑하는 조용하고 따뜻한 알이야.",
	egg.City:    "너는 반짝이는 도시와 로봇, 새로운 기술에 설레는 똑똑한 알이야.",
}

// Persona verbalizes an archetype; unknown labels read as Neutral.
func Persona(p egg.Archetype) string {
	if s, ok := personas[p]; ok {
		return s
	}
	return personas[egg.Neutral]
}

// Preamble builds the system message sent with every completion.
func Preamble(p egg.Archetype) string {
	return preambleHead + "\n" + Persona(p)
}

// ModelGenerator delegates to a completion service conditioned on the
// personality. Failures and timeouts surface as generator errors.
type ModelGenerator struct {
	completer Completer
	timeout   time.Duration
}

func NewModelGenerator(c Completer, timeout time.Duration) *ModelGenerator {
	if timeout <= 0 {
		timeout = defaultModelTimeout
	}
	return &ModelGenerator{completer: c, timeout: timeout}
}

func (g *ModelGenerator) Name() string { return "model" }

func (g *ModelGenerator) Generate(ctx context.Context, personality egg.Archetype, latestUserText string) (string, error) {
	if g.completer == nil {
		return "", egg.GeneratorFailure("reply.model", errors.New("no completer configured"))
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out, err := g.completer.Complete(ctx, Preamble(personality), latestUserText)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("completion timed out after %s: %w", g.timeout, err)
		}
		return "", egg.GeneratorFailure("reply.model", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return EmptyReply, nil
	}
	return out, nil
}
