package ports

import (
	"context"

	"github.com/matehackers/badges-engine/core"
)

// Baker asks the external baking service to embed an assertion into its badge image.
// A non-success response is reported as *core.BakingTransportError.
type Baker interface {
	Bake(ctx context.Context, callbackURL string) (core.BakeResult, error)
}
