package sentiment

import (
	"math"
	"sort"
	"time"
	"unicode/utf8"
)

// Reference lines drawn on score charts.
const (
	NegativeThreshold = 0.3
	NeutralLine       = 0.5
	PositiveThreshold = 0.7
)

// HistogramBins is the number of equal-width score histogram buckets over [0,1].
const HistogramBins = 20

// Row is a Record enriched with its parsed timestamp and derived categories.
type Row struct {
	Record
	Time   time.Time
	Bin    Bin
	Broad  Broad
	Length int
	Day    string
	Month  string
}

// BinCount is the number of records in one fine band.
type BinCount struct {
	Bin        Bin     `json:"bin"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// BroadCount is the number of records in one broad category.
type BroadCount struct {
	Category   Broad   `json:"category"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SummaryStats is the headline snapshot of one aggregation run. Field names match the
// dashboard's historical stats keys.
type SummaryStats struct {
	TotalPosts         int     `json:"total_posts"`
	NegativePosts      int     `json:"negative_posts"`
	NeutralPosts       int     `json:"neutral_posts"`
	PositivePosts      int     `json:"positive_posts"`
	AvgConfidence      float64 `json:"avg_confidence"`
	DateRange          string  `json:"date_range"`
	NegativePercentage float64 `json:"negative_percentage"`
	NeutralPercentage  float64 `json:"neutral_percentage"`
	PositivePercentage float64 `json:"positive_percentage"`
	ExtremelyNegative  int     `json:"extremely_negative"`
	ClearlyNegative    int     `json:"clearly_negative"`
	SomewhatNegative   int     `json:"somewhat_negative"`
	NeutralDetailed    int     `json:"neutral_detailed"`
	SomewhatPositive   int     `json:"somewhat_positive"`
	ClearlyPositive    int     `json:"clearly_positive"`
	ExtremelyPositive  int     `json:"extremely_positive"`
	InvalidScores      int     `json:"invalid_scores"`

	Bins   []BinCount   `json:"bins"`
	Broads []BroadCount `json:"broads"`
}

// BucketStat is the volume and mean score of one calendar day or month. Buckets without
// records are never emitted.
type BucketStat struct {
	Bucket    string  `json:"bucket"`
	Count     int     `json:"count"`
	MeanScore float64 `json:"mean_score"`
}

// MonthBins is the per-band record count for one month, in Bins order followed by InvalidScore.
type MonthBins struct {
	Month  string     `json:"month"`
	Counts []BinCount `json:"counts"`
}

// HistogramBucket counts scores in [Lower, Upper); the last bucket also includes 1.0.
type HistogramBucket struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// LengthPoint relates a post's length in characters to its score.
type LengthPoint struct {
	Length    int     `json:"length"`
	Score     float64 `json:"score"`
	Bin       Bin     `json:"bin"`
	Text      string  `json:"tweet"`
	Reasoning string  `json:"reasoning"`
}

// Thresholds carries the reference lines for score charts.
type Thresholds struct {
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Positive float64 `json:"positive"`
}

// Report is everything a rendering layer needs, as plain data.
type Report struct {
	Brand      string            `json:"brand"`
	Summary    SummaryStats      `json:"summary"`
	Daily      []BucketStat      `json:"daily"`
	Monthly    []BucketStat      `json:"monthly"`
	MonthBins  []MonthBins       `json:"monthly_bins"`
	Histogram  []HistogramBucket `json:"histogram"`
	Lengths    []LengthPoint     `json:"lengths"`
	Words      WordFrequency     `json:"words"`
	Thresholds Thresholds        `json:"thresholds"`
}

// AggregateOptions tunes Aggregate. The zero value uses DefaultBrand and the built-in stop words.
type AggregateOptions struct {
	Brand          string
	ExtraStopWords []string
}

// PrepareRows parses timestamps, derives categories and sorts by time. Records whose timestamp
// does not parse are dropped without any report; callers comparing counts against the input
// must account for that.
func PrepareRows(records []Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		ts, err := ParseTimestamp(rec.Timestamp)
		if err != nil {
			continue
		}
		bin, broad := Categorize(rec.ConfidenceScore)
		rows = append(rows, Row{
			Record: rec,
			Time:   ts,
			Bin:    bin,
			Broad:  broad,
			Length: utf8.RuneCountInString(rec.Text),
			Day:    dayKey(ts),
			Month:  monthKey(ts),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Time.Before(rows[j].Time)
	})
	return rows
}

// Aggregate builds the full report for records.
func Aggregate(records []Record, opts AggregateOptions) Report {
	brand := opts.Brand
	if brand == "" {
		brand = DefaultBrand
	}
	rows := PrepareRows(records)
	return Report{
		Brand:     brand,
		Summary:   Summarize(rows, brand),
		Daily:     GroupBy(rows, func(r Row) string { return r.Day }),
		Monthly:   GroupBy(rows, func(r Row) string { return r.Month }),
		MonthBins: MonthlyBins(rows),
		Histogram: ScoreHistogram(rows, HistogramBins),
		Lengths:   LengthPoints(rows),
		Words:     CompareWords(rows, StopWords(brand, opts.ExtraStopWords...)),
		Thresholds: Thresholds{
			Negative: NegativeThreshold,
			Neutral:  NeutralLine,
			Positive: PositiveThreshold,
		},
	}
}

// Summarize computes SummaryStats over already prepared rows.
func Summarize(rows []Row, brand string) SummaryStats {
	scores := make([]float64, len(rows))
	for i, r := range rows {
		scores[i] = r.ConfidenceScore
	}
	t := tallyScores(scores)

	st := SummaryStats{
		TotalPosts:    t.total,
		AvgConfidence: t.mean(),
		DateRange:     "N/A",
	}
	if len(rows) > 0 {
		minDay, maxDay := rows[0].Day, rows[0].Day
		for _, r := range rows[1:] {
			if r.Day < minDay {
				minDay = r.Day
			}
			if r.Day > maxDay {
				maxDay = r.Day
			}
		}
		st.DateRange = minDay + " to " + maxDay
	}
	t.fill(&st, brand)
	return st
}

// GroupBy buckets rows by key and returns buckets in ascending key order.
func GroupBy(rows []Row, key func(Row) string) []BucketStat {
	type acc struct {
		count int
		sum   float64
	}
	byKey := make(map[string]*acc)
	var keys []string
	for _, r := range rows {
		k := key(r)
		a, ok := byKey[k]
		if !ok {
			a = &acc{}
			byKey[k] = a
			keys = append(keys, k)
		}
		a.count++
		a.sum += r.ConfidenceScore
	}
	sort.Strings(keys)

	out := make([]BucketStat, 0, len(keys))
	for _, k := range keys {
		a := byKey[k]
		out = append(out, BucketStat{Bucket: k, Count: a.count, MeanScore: a.sum / float64(a.count)})
	}
	return out
}

// MonthlyBins counts rows per month and band.
func MonthlyBins(rows []Row) []MonthBins {
	byMonth := make(map[string]map[Bin]int)
	var months []string
	for _, r := range rows {
		m, ok := byMonth[r.Month]
		if !ok {
			m = make(map[Bin]int)
			byMonth[r.Month] = m
			months = append(months, r.Month)
		}
		m[r.Bin]++
	}
	sort.Strings(months)

	out := make([]MonthBins, 0, len(months))
	for _, month := range months {
		counts := byMonth[month]
		total := 0
		for _, c := range counts {
			total += c
		}
		mb := MonthBins{Month: month}
		for _, b := range append(append([]Bin(nil), Bins...), InvalidScore) {
			mb.Counts = append(mb.Counts, BinCount{Bin: b, Count: counts[b], Percentage: percent(counts[b], total)})
		}
		out = append(out, mb)
	}
	return out
}

// ScoreHistogram counts scores into n equal-width buckets over [0,1]. Scores outside the
// range are not counted.
func ScoreHistogram(rows []Row, n int) []HistogramBucket {
	if n <= 0 {
		return nil
	}
	width := 1.0 / float64(n)
	out := make([]HistogramBucket, n)
	for i := range out {
		out[i] = HistogramBucket{Lower: float64(i) * width, Upper: float64(i+1) * width}
	}
	out[n-1].Upper = 1.0
	for _, r := range rows {
		s := r.ConfidenceScore
		if math.IsNaN(s) || s < 0 || s > 1 {
			continue
		}
		i := int(s * float64(n))
		if i >= n {
			i = n - 1
		}
		out[i].Count++
	}
	return out
}

// LengthPoints returns one point per row, in row order.
func LengthPoints(rows []Row) []LengthPoint {
	out := make([]LengthPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, LengthPoint{
			Length:    r.Length,
			Score:     r.ConfidenceScore,
			Bin:       r.Bin,
			Text:      r.Text,
			Reasoning: r.Reasoning,
		})
	}
	return out
}
