package sentiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/fileutils"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/logging"
)

// ClassifyFunc sends one post's text to a language model and returns the raw completion.
type ClassifyFunc func(ctx context.Context, text string) (string, error)

// Driver classifies posts one call per post. A failed call never aborts the batch: it
// becomes a neutral Record whose reasoning carries the error. Calls are not retried here.
type Driver struct {
	Classify ClassifyFunc
	Logger   *zap.Logger

	// Concurrency is the number of calls in flight. 0 or 1 means strictly sequential.
	Concurrency int
}

// BatchResult is the outcome of one Driver.Run.
type BatchResult struct {
	RunID    string
	Records  []Record
	Failures int
	Elapsed  time.Duration
}

// Run classifies posts and returns exactly one Record per post, in input order. Elapsed is
// measured once over the whole batch.
func (d Driver) Run(ctx context.Context, posts []Post) (BatchResult, error) {
	if d.Classify == nil {
		return BatchResult{}, errors.New("Driver.Run: Classify is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.OrNop(d.Logger)
	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))

	res := BatchResult{RunID: runID, Records: make([]Record, len(posts))}
	failed := make([]bool, len(posts))
	log.Info("classification started", zap.Int("posts", len(posts)), zap.Int("concurrency", max(d.Concurrency, 1)))

	start := time.Now()
	if d.Concurrency <= 1 {
		for i, p := range posts {
			res.Records[i], failed[i] = d.classifyOne(ctx, log, i, len(posts), p)
		}
	} else {
		// Each goroutine writes only its own slot, so output order is input order.
		var g errgroup.Group
		g.SetLimit(d.Concurrency)
		for i, p := range posts {
			i, p := i, p
			g.Go(func() error {
				res.Records[i], failed[i] = d.classifyOne(ctx, log, i, len(posts), p)
				return nil
			})
		}
		_ = g.Wait()
	}
	res.Elapsed = time.Since(start)

	for _, f := range failed {
		if f {
			res.Failures++
		}
	}
	log.Info("classification finished",
		zap.Int("records", len(res.Records)),
		zap.Int("failures", res.Failures),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

func (d Driver) classifyOne(ctx context.Context, log *zap.Logger, i, n int, p Post) (Record, bool) {
	log.Debug("classifying post", zap.Int("index", i+1), zap.Int("of", n))

	raw, err := d.call(ctx, p.Text)
	if err != nil {
		log.Warn("classification call failed",
			zap.Int("index", i+1),
			zap.String("text", fileutils.Truncate(fileutils.SanitizeNewlines(p.Text), 120)),
			zap.Error(err))
		return fallbackRecord(p, NeutralScore, ReasoningErrorPrefix+err.Error()), true
	}

	rec := ParseResponse(raw, p)
	log.Debug("classified post",
		zap.Int("index", i+1),
		zap.String("raw", fileutils.Truncate(fileutils.SanitizeNewlines(raw), 400)),
		zap.Float64("confidence_score", rec.ConfidenceScore))
	return rec, false
}

// call invokes Classify, converting a panic into an error so one bad call cannot take the
// batch down.
func (d Driver) call(ctx context.Context, text string) (raw string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classify panicked: %v", r)
		}
	}()
	return d.Classify(ctx, text)
}
