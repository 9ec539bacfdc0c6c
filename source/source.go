// Package source collects activities from the configured inputs: a
// calendar (file export or Graph API), recurring schedule templates,
// and Azure DevOps commit history.
package source

import (
	"context"
	"time"

	"adofill/activity"
)

// Source produces activities over a date range. Implementations must
// be deterministic for the same inputs.
type Source interface {
	Type() activity.SourceType
	Name() string

	// Collect returns the activities between from and to, both
	// inclusive. from and to are day-granular.
	Collect(ctx context.Context, from, to time.Time) ([]activity.Activity, error)

	// Verify checks that the source's backing input is reachable.
	Verify(ctx context.Context) error
}
