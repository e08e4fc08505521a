package reply

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animai/internal/egg"
)

func TestRuleReply_Families(t *testing.T) {
	assert.Contains(t, RuleReply("숲에 가고 싶어"), "숲 속 향기")
	assert.Contains(t, RuleReply("I love the OCEAN"), "파도 소리")
	assert.Contains(t, RuleReply("불이야"), "열기")
}

func TestRuleReply_ForestCheckedBeforeSea(t *testing.T) {
	assert.Contains(t, RuleReply("forest by the sea"), "숲 속 향기")
	assert.Contains(t, RuleReply("sea of fire"), "파도 소리")
}

func TestRuleReply_EchoFallback(t *testing.T) {
	got := RuleReply("안녕하세요")
	assert.True(t, strings.HasPrefix(got, baseSentence))
	assert.Contains(t, got, "'안녕하세요'")
}

func TestRuleReply_Blank(t *testing.T) {
	assert.Equal(t, baseSentence, RuleReply("   "))
}

func TestRuleGenerator_NeverFails(t *testing.T) {
	g := NewRuleGenerator()
	out, err := g.Generate(context.Background(), egg.Fire, "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, "rule", g.Name())
}

type fakeCompleter struct {
	out      string
	err      error
	delay    time.Duration
	system   string
	userText string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, userText string) (string, error) {
	f.system, f.userText = system, userText
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.out, f.err
}

func TestModelGenerator_PassesPersonaAndTrims(t *testing.T) {
	fc := &fakeCompleter{out: "  안녕! 🌊  \n"}
	g := NewModelGenerator(fc, time.Second)
	out, err := g.Generate(context.Background(), egg.Water, "바다 보러 가자")
	require.NoError(t, err)
	assert.Equal(t, "안녕! 🌊", out)
	assert.Equal(t, "바다 보러 가자", fc.userText)
	assert.Contains(t, fc.system, Persona(egg.Water))
}

func TestModelGenerator_EmptyUsesFallbackSentence(t *testing.T) {
	g := NewModelGenerator(&fakeCompleter{out: "   "}, time.Second)
	out, err := g.Generate(context.Background(), egg.Neutral, "hi")
	require.NoError(t, err)
	assert.Equal(t, EmptyReply, out)
}

func TestModelGenerator_ErrorIsGeneratorKind(t *testing.T) {
	g := NewModelGenerator(&fakeCompleter{err: errors.New("503")}, time.Second)
	_, err := g.Generate(context.Background(), egg.Neutral, "hi")
	require.Error(t, err)
	assert.Equal(t, egg.KindGenerator, egg.KindOf(err))
}

func TestModelGenerator_TimeoutIsBounded(t *testing.T) {
	g := NewModelGenerator(&fakeCompleter{out: "late", delay: time.Second}, 20*time.Millisecond)
	start := time.Now()
	_, err := g.Generate(context.Background(), egg.Neutral, "hi")
	require.Error(t, err)
	assert.Equal(t, egg.KindGenerator, egg.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestModelGenerator_NilCompleter(t *testing.T) {
	_, err := NewModelGenerator(nil, 0).Generate(context.Background(), egg.Neutral, "hi")
	assert.Equal(t, egg.KindGenerator, egg.KindOf(err))
}

func TestPersona_DistinctPerArchetype(t *testing.T) {
	seen := map[string]egg.Archetype{}
	for _, a := range []egg.Archetype{egg.Neutral, egg.Fire, egg.Water, egg.Forest, egg.City} {
		p := Persona(a)
		_, dup := seen[p]
		assert.False(t, dup, "persona for %s duplicates %s", a, seen[p])
		seen[p] = a
	}
	assert.Equal(t, Persona(egg.Neutral), Persona("sky"))
}
