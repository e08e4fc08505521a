// Package reply produces the egg's answer to a user message.
package reply

import (
	"context"

	"animai/internal/egg"
)

// Generator turns the latest user text into the egg's reply, given the
// personality inferred for the egg.
type Generator interface {
	Generate(ctx context.Context, personality egg.Archetype, latestUserText string) (string, error)
	Name() string
}

// Apology is used when no reply could be produced at all.
const Apology = "알이 잠깐 졸고 있어... zZ"
