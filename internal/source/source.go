package source

import (
	"context"
	"strings"
	"time"

	"github.com/crimson-sun/vlogscan/internal/model"
)

// Source defines the interface every line source must implement.
type Source interface {
	// Name identifies the source in events, errors and metrics.
	Name() string

	// Lines reads the whole source. Lines carry 1-based numbers.
	Lines(ctx context.Context) ([]model.Line, error)
}

// Config holds settings shared by source constructors. Sources ignore the
// fields that do not apply to them.
type Config struct {
	Token   string        // bearer token for remote sources
	Timeout time.Duration // per-request timeout for remote sources
}

// Kind names the registered source type that should handle arg:
// "-" is stdin, http(s) URLs are remote, anything else is a file path.
func Kind(arg string) string {
	switch {
	case arg == "-":
		return "stdin"
	case strings.HasPrefix(arg, "https://"):
		return "https"
	case strings.HasPrefix(arg, "http://"):
		return "http"
	default:
		return "file"
	}
}
