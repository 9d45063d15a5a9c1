package sentiment

import (
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/fileutils"
)

// parseStrategy turns a raw model answer into a Record, or reports that the answer does not
// have the structure this strategy handles. Strategies never disagree on content: the first
// one whose structural precondition holds decides the record.
type parseStrategy func(raw string, post Post) (Record, bool)

var parseLadder = []parseStrategy{
	parseStructured,
	parseDecodeFailure,
	parseKeywords,
}

// ParseResponse converts a raw model completion into a Record. It never fails: every input,
// including an empty string, produces a Record whose ConfidenceScore is a finite number in [0,1].
func ParseResponse(raw string, post Post) Record {
	for _, strategy := range parseLadder {
		if rec, ok := strategy(raw, post); ok {
			return normalizeRecord(rec)
		}
	}
	return fallbackRecord(post, NeutralScore, ReasoningUnstructured)
}

// parseStructured handles answers containing a decodable JSON object. Timestamps always come
// from the post, never from the model.
func parseStructured(raw string, post Post) (Record, bool) {
	obj, ok := fileutils.ExtractJSONObject(raw)
	if !ok || !gjson.Valid(obj) {
		return Record{}, false
	}

	rec := fallbackRecord(post, scoreFrom(gjson.Get(obj, "confidence_score")), ReasoningMissing)
	if r := gjson.Get(obj, "reasoning"); r.Exists() && r.Type != gjson.Null {
		if r.Type == gjson.String {
			rec.Reasoning = r.Str
		} else {
			rec.Reasoning = r.Raw
		}
	}
	return rec, true
}

// scoreFrom accepts only JSON numbers inside [0,1]; anything else becomes NeutralScore.
func scoreFrom(v gjson.Result) float64 {
	if v.Type != gjson.Number {
		return NeutralScore
	}
	s := v.Num
	if math.IsNaN(s) || s < 0 || s > 1 {
		return NeutralScore
	}
	return s
}

// parseDecodeFailure handles answers that contain something shaped like a JSON object that
// does not decode.
func parseDecodeFailure(raw string, post Post) (Record, bool) {
	if _, ok := fileutils.ExtractJSONObject(raw); !ok {
		return Record{}, false
	}
	text := strings.ToLower(raw)

	score := NeutralScore
	switch {
	case containsAny(text, "boycott", "against", "negative"):
		score = 0.7
	case containsAny(text, "support", "positive", "good"):
		score = 0.3
	}
	return fallbackRecord(post, score, ReasoningDecodeFallback), true
}

// parseKeywords handles answers with no JSON object at all by looking for intensity and
// polarity words in the answer text.
func parseKeywords(raw string, post Post) (Record, bool) {
	text := strings.ToLower(raw)

	score := NeutralScore
	switch {
	case containsAny(text, "strongly", "definitely", "clear"):
		switch {
		case containsAny(text, "boycott", "negative"):
			score = 0.8
		case containsAny(text, "positive", "support"):
			score = 0.2
		}
	case containsAny(text, "boycott", "against"):
		score = 0.7
	case containsAny(text, "support", "positive"):
		score = 0.3
	}
	return fallbackRecord(post, score, ReasoningUnstructured), true
}

func normalizeRecord(rec Record) Record {
	if math.IsNaN(rec.ConfidenceScore) || math.IsInf(rec.ConfidenceScore, 0) || rec.ConfidenceScore < 0 || rec.ConfidenceScore > 1 {
		rec.ConfidenceScore = NeutralScore
	}
	if rec.Reasoning == "" {
		rec.Reasoning = ReasoningMissing
	}
	return rec
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
