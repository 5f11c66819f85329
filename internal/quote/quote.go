// Package quote provides the current market price for the configured symbol.
package quote

import "context"

// Source fetches the latest price. Implementations must be safe for use from
// the update loop's single goroutine; calls may block until ctx is done.
type Source interface {
	Name() string
	Quote(ctx context.Context) (float64, error)
}
