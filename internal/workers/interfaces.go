package workers

import (
	"context"

	"github.com/illarion/cloak/internal/core"
)

// Hider is the part of the engine a batch needs.
type Hider interface {
	Hide(ctx context.Context, path string, level core.Level) (core.Entry, error)
	Level() core.Level
	Entries() []core.Entry
}
