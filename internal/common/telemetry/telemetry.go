// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"context"
	"expvar"
	"sync"
	"time"

	"projectvault/internal/common"
)

type spanKey struct{}

type span struct {
	name  string
	start time.Time
}

var (
	initOnce sync.Once

	saveTotal     *expvar.Int
	saveReplays   *expvar.Int
	saveRetries   *expvar.Int
	saveAborts    *expvar.Int
	saveLatencyMS *expvar.Int

	revisionRows *expvar.Int
	fileRows     *expvar.Int
)

func ensureInit() {
	initOnce.Do(func() {
		saveTotal = expvar.NewInt("vault_saves_total")
		saveReplays = expvar.NewInt("vault_save_replays_total")
		saveRetries = expvar.NewInt("vault_save_retries_total")
		saveAborts = expvar.NewInt("vault_save_aborts_total")
		saveLatencyMS = expvar.NewInt("vault_save_latency_ms")

		revisionRows = expvar.NewInt("vault_revisions_total")
		fileRows = expvar.NewInt("vault_files_written_total")
	})
}

// StartSpan marks the beginning of a timed operation and returns a finish
// callback that logs the duration along with any extra attributes.
func StartSpan(ctx context.Context, name string) (context.Context, func(attrs ...interface{})) {
	ensureInit()
	sp := &span{name: name, start: time.Now()}
	ctx = context.WithValue(ctx, spanKey{}, sp)
	logger := common.Logger()
	logger.Debug("trace: start", "span", name)
	return ctx, func(attrs ...interface{}) {
		if sp == nil {
			return
		}
		duration := time.Since(sp.start)
		logger.Debug("trace: end", append([]interface{}{"span", name, "dur", duration}, attrs...)...)
	}
}

// RecordSave tallies a completed save along with its duration.
func RecordSave(replayed bool, duration time.Duration) {
	ensureInit()
	saveTotal.Add(1)
	if replayed {
		saveReplays.Add(1)
	}
	if duration > 0 {
		saveLatencyMS.Add(duration.Milliseconds())
	}
}

// RecordRetry tallies a transaction attempt that had to be retried.
func RecordRetry() {
	ensureInit()
	saveRetries.Add(1)
}

// RecordAbort tallies a save that failed after exhausting its attempts.
func RecordAbort() {
	ensureInit()
	saveAborts.Add(1)
}

// RecordRows tallies the file and revision rows written by a commit.
func RecordRows(files, revisions int) {
	ensureInit()
	if files > 0 {
		fileRows.Add(int64(files))
	}
	if revisions > 0 {
		revisionRows.Add(int64(revisions))
	}
}

func SpanDuration(ctx context.Context) time.Duration {
	sp, _ := ctx.Value(spanKey{}).(*span)
	if sp == nil {
		return 0
	}
	return time.Since(sp.start)
}
