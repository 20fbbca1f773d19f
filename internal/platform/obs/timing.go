package obs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ctxKey string

// QueryIDKey tags every timing line logged for one lookup.
const QueryIDKey ctxKey = "query_id"

func WithQueryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, QueryIDKey, id)
}

func QueryID(ctx context.Context) string {
	id, _ := ctx.Value(QueryIDKey).(string)
	return id
}

// Time logs the duration of the named operation through the global zap logger.
// Usage: defer obs.Time(ctx, "op")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	queryID := QueryID(ctx)

	return func(errp *error) {
		fields := []zap.Field{
			zap.String("query_id", queryID),
			zap.String("op", name),
			zap.Duration("dur", time.Since(start)),
		}

		if errp != nil && *errp != nil {
			zap.L().Warn("op failed", append(fields, zap.Error(*errp))...)
			return
		}
		zap.L().Debug("op done", fields...)
	}
}
