package sentiment

// DefaultBrand is the brand the scoring scale and labels refer to when none is configured.
const DefaultBrand = "Nestle"

// NeutralScore is the score used whenever a model answer cannot be trusted.
const NeutralScore = 0.5

const (
	ReasoningUnstructured   = "Unable to parse structured response"
	ReasoningDecodeFallback = "Fallback parsing due to JSON decode error"
	ReasoningMissing        = "No reasoning provided"
	ReasoningErrorPrefix    = "Error during processing: "
)

// Post is one scraped post as handed to the classifier. It is read once and never mutated.
type Post struct {
	Text         string `json:"text"`
	Timestamp    string `json:"timestamp"`
	RawTimestamp string `json:"rawTimestamp"`
}

// Record is the classification result for one Post.
//
// Timestamp is kept as the scraper's ISO-8601 string; it is only parsed when records are
// aggregated, and records whose timestamp does not parse are dropped at that point.
// The JSON field names match the files the classifier has always written.
type Record struct {
	Text            string  `json:"tweet"`
	ConfidenceScore float64 `json:"confidence_score"`
	Reasoning       string  `json:"reasoning"`
	Timestamp       string  `json:"timestamp"`
	RawTimestamp    string  `json:"rawTimestamp"`
}

func fallbackRecord(post Post, score float64, reasoning string) Record {
	return Record{
		Text:            post.Text,
		ConfidenceScore: score,
		Reasoning:       reasoning,
		Timestamp:       post.Timestamp,
		RawTimestamp:    post.RawTimestamp,
	}
}
