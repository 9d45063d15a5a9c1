package sentiment

import "strings"

// Bin is one of the seven ordered score bands, or InvalidScore for out-of-range scores.
type Bin string

const (
	ExtremelyNegative Bin = "Extremely Negative"
	ClearlyNegative   Bin = "Clearly Negative"
	SomewhatNegative  Bin = "Somewhat Negative"
	NeutralBin        Bin = "Neutral"
	SomewhatPositive  Bin = "Somewhat Positive"
	ClearlyPositive   Bin = "Clearly Positive"
	ExtremelyPositive Bin = "Extremely Positive"
	InvalidScore      Bin = "Invalid Score"
)

// Bins lists the valid bands from most negative to most positive.
var Bins = []Bin{
	ExtremelyNegative,
	ClearlyNegative,
	SomewhatNegative,
	NeutralBin,
	SomewhatPositive,
	ClearlyPositive,
	ExtremelyPositive,
}

// Broad is the coarse three-way partition of a score.
type Broad string

const (
	Negative Broad = "Negative"
	Neutral  Broad = "Neutral"
	Positive Broad = "Positive"
)

// Broads lists the broad categories in display order.
var Broads = []Broad{Negative, Neutral, Positive}

// Label renders the broad category the way reports show it, e.g. "Negative toward Nestle".
func (b Broad) Label(brand string) string {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		brand = DefaultBrand
	}
	switch b {
	case Negative:
		return "Negative toward " + brand
	case Positive:
		return "Positive toward " + brand
	default:
		return string(b)
	}
}

// BinFor maps a score to its band. The first band is closed on both ends; every other band
// is (lower, upper], so a boundary value belongs to the band below it.
func BinFor(score float64) Bin {
	switch {
	case 0.0 <= score && score <= 0.1:
		return ExtremelyNegative
	case 0.1 < score && score <= 0.3:
		return ClearlyNegative
	case 0.3 < score && score <= 0.4:
		return SomewhatNegative
	case 0.4 < score && score <= 0.6:
		return NeutralBin
	case 0.6 < score && score <= 0.7:
		return SomewhatPositive
	case 0.7 < score && score <= 0.9:
		return ClearlyPositive
	case 0.9 < score && score <= 1.0:
		return ExtremelyPositive
	default:
		return InvalidScore
	}
}

// BroadFor maps a score to its broad category. It is applied to the raw score, so
// out-of-range values still land somewhere (NaN lands in Positive).
func BroadFor(score float64) Broad {
	switch {
	case score <= 0.4:
		return Negative
	case score <= 0.6:
		return Neutral
	default:
		return Positive
	}
}

// Categorize returns both the fine band and the broad category for a score.
func Categorize(score float64) (Bin, Broad) {
	return BinFor(score), BroadFor(score)
}
