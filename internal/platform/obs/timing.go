package obs

import (
	"context"
	"log/slog"
	"time"

	"cep-distance-service/internal/platform/metrics"
)

// Time logs and records the duration of op. Use as
//
//	defer obs.Time(ctx, "op")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)

		var err error
		if errp != nil {
			err = *errp
		}
		metrics.ObserveOperation(name, err, dur.Seconds())

		if err != nil {
			slog.DebugContext(ctx, "op failed", "op", name, "dur_ms", dur.Milliseconds(), "err", err)
			return
		}
		slog.DebugContext(ctx, "op done", "op", name, "dur_ms", dur.Milliseconds())
	}
}
