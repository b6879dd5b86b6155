package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/texasdave2/chatroom/internal/domain"
	"github.com/texasdave2/chatroom/internal/metrics"
	"github.com/texasdave2/chatroom/internal/redis"
)

// classifyTimeout bounds each classifier call so one stuck request cannot
// back up the whole queue.
const classifyTimeout = 10 * time.Second

// CounterStore is the subset of room state the worker mutates. Increments
// must be atomic: multiple workers may share the subscription.
type CounterStore interface {
	IncrMood(ctx context.Context, roomID, label string) error
	IncrSafety(ctx context.Context, roomID, label string) error
}

// Worker analyzes messages from the analysis channel, one at a time, in
// receipt order. classifier may be nil when no agent is configured; every
// message then gets the fallback labels.
type Worker struct {
	classifier domain.Classifier
	store      CounterStore
}

// NewWorker creates an analysis worker.
func NewWorker(classifier domain.Classifier, store CounterStore) *Worker {
	return &Worker{classifier: classifier, store: store}
}

// Run consumes the subscription until it dies. A dead subscription is fatal:
// the caller treats a return as a shutdown signal and relies on supervision
// to restart the process.
func (w *Worker) Run(sub *redis.AnalysisSubscription) {
	for req := range sub.Ch {
		w.Process(context.Background(), req)
	}
	slog.Error("Analysis subscription closed, pipeline stopped")
}

// Process analyzes one message: classify each dimension, then bump the
// counters. Classification failures degrade to fallback labels and never
// propagate.
func (w *Worker) Process(ctx context.Context, req domain.AnalysisRequest) {
	mood := w.classify(ctx, req.Text, domain.DimensionMood)
	if err := w.store.IncrMood(ctx, req.RoomID, mood); err != nil {
		slog.Error("Failed to increment mood counter", "room_id", req.RoomID, "label", mood, "error", err)
	}

	safety := w.classify(ctx, req.Text, domain.DimensionSafety)
	if err := w.store.IncrSafety(ctx, req.RoomID, safety); err != nil {
		slog.Error("Failed to increment safety counter", "room_id", req.RoomID, "label", safety, "error", err)
	}
}

func (w *Worker) classify(ctx context.Context, text string, dim domain.Dimension) string {
	if w.classifier == nil {
		metrics.AnalysisProcessedTotal.WithLabelValues(string(dim), "fallback").Inc()
		return domain.FallbackLabel(dim)
	}

	callCtx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	start := time.Now()
	label, err := w.classifier.Classify(callCtx, text, dim)
	metrics.AnalysisClassifyDuration.WithLabelValues(string(dim)).Observe(time.Since(start).Seconds())

	if err != nil {
		slog.Warn("Classification failed, using fallback label",
			"dimension", dim, "fallback", domain.FallbackLabel(dim), "error", err)
		metrics.AnalysisProcessedTotal.WithLabelValues(string(dim), "fallback").Inc()
		return domain.FallbackLabel(dim)
	}

	metrics.AnalysisProcessedTotal.WithLabelValues(string(dim), "ok").Inc()
	return label
}
