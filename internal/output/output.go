package output

import (
	"context"

	"github.com/crimson-sun/vlogscan/internal/model"
)

// Output defines the interface for analysis record destinations.
type Output interface {
	Write(ctx context.Context, rec model.Record) error
	Close() error
}

// WriteReport streams every record of r into o, stopping at the first error.
func WriteReport(ctx context.Context, o Output, r *model.Report) error {
	for _, rec := range r.Records() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.Write(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
