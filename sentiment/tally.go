package sentiment

import "strings"

type scoreTally struct {
	total int
	sum   float64
	bins  map[Bin]int
	broad map[Broad]int
}

func tallyScores(scores []float64) scoreTally {
	t := scoreTally{
		total: len(scores),
		bins:  make(map[Bin]int, len(Bins)+1),
		broad: make(map[Broad]int, len(Broads)),
	}
	for _, s := range scores {
		t.sum += s
		bin, broad := Categorize(s)
		t.bins[bin]++
		t.broad[broad]++
	}
	return t
}

// mean is NeutralScore for an empty tally.
func (t scoreTally) mean() float64 {
	if t.total == 0 {
		return NeutralScore
	}
	return t.sum / float64(t.total)
}

func (t scoreTally) fill(st *SummaryStats, brand string) {
	st.NegativePosts = t.broad[Negative]
	st.NeutralPosts = t.broad[Neutral]
	st.PositivePosts = t.broad[Positive]
	st.NegativePercentage = percent(st.NegativePosts, t.total)
	st.NeutralPercentage = percent(st.NeutralPosts, t.total)
	st.PositivePercentage = percent(st.PositivePosts, t.total)

	st.ExtremelyNegative = t.bins[ExtremelyNegative]
	st.ClearlyNegative = t.bins[ClearlyNegative]
	st.SomewhatNegative = t.bins[SomewhatNegative]
	st.NeutralDetailed = t.bins[NeutralBin]
	st.SomewhatPositive = t.bins[SomewhatPositive]
	st.ClearlyPositive = t.bins[ClearlyPositive]
	st.ExtremelyPositive = t.bins[ExtremelyPositive]
	st.InvalidScores = t.bins[InvalidScore]

	st.Bins = make([]BinCount, 0, len(Bins)+1)
	for _, b := range append(append([]Bin(nil), Bins...), InvalidScore) {
		st.Bins = append(st.Bins, BinCount{Bin: b, Count: t.bins[b], Percentage: percent(t.bins[b], t.total)})
	}
	st.Broads = make([]BroadCount, 0, len(Broads))
	for _, b := range Broads {
		st.Broads = append(st.Broads, BroadCount{
			Category:   b,
			Label:      b.Label(brand),
			Count:      t.broad[b],
			Percentage: percent(t.broad[b], t.total),
		})
	}
}

// percent is 0 when total is 0.
func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// BatchSummary describes a classification run over all records, including records whose
// timestamps would later be dropped by Aggregate.
type BatchSummary struct {
	SummaryStats
	Errors int `json:"errors"`
}

// TallyBatch summarizes freshly classified records. Errors counts records whose reasoning
// mentions "Error", which is how failed classification calls are marked.
func TallyBatch(records []Record, brand string) BatchSummary {
	if brand == "" {
		brand = DefaultBrand
	}
	scores := make([]float64, len(records))
	errs := 0
	for i, r := range records {
		scores[i] = r.ConfidenceScore
		if strings.Contains(r.Reasoning, "Error") {
			errs++
		}
	}
	t := tallyScores(scores)

	st := SummaryStats{TotalPosts: t.total, AvgConfidence: t.mean(), DateRange: "N/A"}
	t.fill(&st, brand)
	return BatchSummary{SummaryStats: st, Errors: errs}
}
