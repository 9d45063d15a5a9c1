package sentiment

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDriverRun_FailureBecomesNeutralRecord(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	d := Driver{
		Logger: zap.New(core),
		Classify: func(ctx context.Context, text string) (string, error) {
			switch text {
			case "b":
				return "", errors.New("timeout")
			case "a":
				return `{"confidence_score": 0.1, "reasoning": "calls for boycott"}`, nil
			default:
				return `{"confidence_score": 0.9, "reasoning": "praise"}`, nil
			}
		},
	}
	posts := []Post{{Text: "a", Timestamp: "t1"}, {Text: "b", Timestamp: "t2", RawTimestamp: "r2"}, {Text: "c"}}

	res, err := d.Run(context.Background(), posts)
	require.NoError(t, err)
	require.Len(t, res.Records, 3)
	assert.Equal(t, 1, res.Failures)
	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)

	assert.Equal(t, Record{Text: "a", ConfidenceScore: 0.1, Reasoning: "calls for boycott", Timestamp: "t1"}, res.Records[0])
	assert.Equal(t, Record{Text: "b", ConfidenceScore: 0.5, Reasoning: "Error during processing: timeout", Timestamp: "t2", RawTimestamp: "r2"}, res.Records[1])
	assert.Equal(t, 0.9, res.Records[2].ConfidenceScore)

	assert.Equal(t, 1, TallyBatch(res.Records, "").Errors)
	assert.Equal(t, 1, logs.FilterMessage("classification call failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("classification finished").Len())
}

func TestDriverRun_RecoversPanic(t *testing.T) {
	t.Parallel()

	d := Driver{Classify: func(ctx context.Context, text string) (string, error) {
		if text == "bad" {
			panic("nil client")
		}
		return `{"confidence_score": 0.3, "reasoning": "meh"}`, nil
	}}
	res, err := d.Run(context.Background(), []Post{{Text: "bad"}, {Text: "good"}})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, NeutralScore, res.Records[0].ConfidenceScore)
	assert.True(t, strings.HasPrefix(res.Records[0].Reasoning, ReasoningErrorPrefix))
	assert.Contains(t, res.Records[0].Reasoning, "nil client")
	assert.Equal(t, 0.3, res.Records[1].ConfidenceScore)
}

func TestDriverRun_ConcurrentKeepsInputOrder(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	d := Driver{
		Concurrency: 4,
		Classify: func(ctx context.Context, text string) (string, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			return `{"confidence_score": 0.5, "reasoning": "` + text + `"}`, nil
		},
	}
	var posts []Post
	for _, s := range strings.Split("p0 p1 p2 p3 p4 p5 p6 p7 p8 p9", " ") {
		posts = append(posts, Post{Text: s})
	}

	res, err := d.Run(context.Background(), posts)
	require.NoError(t, err)
	require.Len(t, res.Records, len(posts))
	for i, r := range res.Records {
		assert.Equal(t, posts[i].Text, r.Text)
		assert.Equal(t, posts[i].Text, r.Reasoning)
	}
	assert.LessOrEqual(t, peak.Load(), int32(4))
	assert.Zero(t, res.Failures)
}

func TestDriverRun_EmptyAndNilClassify(t *testing.T) {
	t.Parallel()

	_, err := Driver{}.Run(context.Background(), []Post{{Text: "x"}})
	assert.Error(t, err)

	res, err := Driver{Classify: func(context.Context, string) (string, error) { return "", nil }}.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
}

func TestDriverRun_CancelledContextStillYieldsRecords(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := Driver{Classify: func(ctx context.Context, text string) (string, error) {
		return "", ctx.Err()
	}}
	res, err := d.Run(ctx, []Post{{Text: "a"}, {Text: "b"}})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 2, res.Failures)
	assert.Contains(t, res.Records[0].Reasoning, "context canceled")
}
