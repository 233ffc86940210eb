// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"context"
	"expvar"
	"strings"
	"sync"
	"time"

	"github.com/fieldscale/povd/internal/common"
)

type spanKey struct{}

type span struct {
	name  string
	start time.Time
}

var (
	initOnce sync.Once

	completionTotal     *expvar.Map
	completionErrors    *expvar.Map
	completionLatencyMS *expvar.Map
	completionTokens    *expvar.Int

	batchTotal     *expvar.Int
	batchItemTotal *expvar.Int

	pipelineStageTotal     *expvar.Map
	pipelineStageLatencyMS *expvar.Map

	reportTotal       *expvar.Int
	reportFailedTotal *expvar.Int

	storeWriteTotal  *expvar.Map
	storeWriteErrors *expvar.Map
)

func ensureInit() {
	initOnce.Do(func() {
		completionTotal = expvar.NewMap("povd_completions_total")
		completionErrors = expvar.NewMap("povd_completion_errors_total")
		completionLatencyMS = expvar.NewMap("povd_completion_latency_ms")
		completionTokens = expvar.NewInt("povd_completion_tokens_total")

		batchTotal = expvar.NewInt("povd_completion_batches_total")
		batchItemTotal = expvar.NewInt("povd_completion_batch_items_total")

		pipelineStageTotal = expvar.NewMap("povd_pipeline_stage_total")
		pipelineStageLatencyMS = expvar.NewMap("povd_pipeline_stage_latency_ms")

		reportTotal = expvar.NewInt("povd_reports_total")
		reportFailedTotal = expvar.NewInt("povd_reports_failed_total")

		storeWriteTotal = expvar.NewMap("povd_store_writes_total")
		storeWriteErrors = expvar.NewMap("povd_store_write_errors_total")
	})
}

// StartSpan records a debug trace span around an operation. The returned
// finish function logs the span duration along with any extra attributes.
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

// RecordCompletion tracks a single model completion keyed by provider name.
func RecordCompletion(provider string, duration time.Duration, tokens int64, failed bool) {
	ensureInit()
	key := metricKey(provider, "unknown")
	completionTotal.Add(key, 1)
	if failed {
		completionErrors.Add(key, 1)
	}
	if duration > 0 {
		completionLatencyMS.Add(key, duration.Milliseconds())
	}
	if tokens > 0 {
		completionTokens.Add(tokens)
	}
}

// RecordBatch tracks a fan-out completion batch and its item count.
func RecordBatch(items int) {
	ensureInit()
	if items <= 0 {
		return
	}
	batchTotal.Add(1)
	batchItemTotal.Add(int64(items))
}

// RecordPipelineStage tracks a generation stage (titles, details, summary).
func RecordPipelineStage(stage string, duration time.Duration) {
	ensureInit()
	key := metricKey(stage, "unknown")
	pipelineStageTotal.Add(key, 1)
	if duration > 0 {
		pipelineStageLatencyMS.Add(key, duration.Milliseconds())
	}
}

// RecordReport tracks a finished report run.
func RecordReport(failed bool) {
	ensureInit()
	reportTotal.Add(1)
	if failed {
		reportFailedTotal.Add(1)
	}
}

// RecordStoreWrite tracks a persistence write keyed by table.
func RecordStoreWrite(table string, err error) {
	ensureInit()
	key := metricKey(table, "generic")
	storeWriteTotal.Add(key, 1)
	if err != nil {
		storeWriteErrors.Add(key, 1)
	}
}

// SpanDuration reports the elapsed time of the span on ctx, if any.
func SpanDuration(ctx context.Context) time.Duration {
	sp, _ := ctx.Value(spanKey{}).(*span)
	if sp == nil {
		return 0
	}
	return time.Since(sp.start)
}

func metricKey(raw, fallback string) string {
	key := strings.TrimSpace(strings.ToLower(raw))
	if key == "" {
		return fallback
	}
	return key
}
