package sentiment

import (
	"sort"
	"strings"
	"unicode"
)

// MinWordLength is the shortest word counted by word-frequency analysis.
const MinWordLength = 4

// TopWords is how many words each partition reports.
const TopWords = 10

var genericStopWords = []string{
	"that", "this", "with", "they", "have", "from", "their", "would",
	"been", "said", "each", "more", "some", "what", "them",
}

// WordCount is a word and how many times it occurred.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordFrequency compares the most common words of negative and positive posts.
type WordFrequency struct {
	Negative []WordCount `json:"negative"`
	Positive []WordCount `json:"positive"`
}

// StopWords returns the generic function words plus the lowercased words of the brand name
// and any extra words supplied.
func StopWords(brand string, extra ...string) map[string]struct{} {
	if strings.TrimSpace(brand) == "" {
		brand = DefaultBrand
	}
	out := make(map[string]struct{}, len(genericStopWords)+len(extra)+1)
	for _, w := range genericStopWords {
		out[w] = struct{}{}
	}
	for _, w := range append(tokenize(brand, 1), extra...) {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out[w] = struct{}{}
		}
	}
	return out
}

// CountWords counts words across texts and returns the top n, most frequent first. Equal
// counts keep the order in which the words first appeared.
func CountWords(texts []string, stop map[string]struct{}, n int) []WordCount {
	index := make(map[string]int)
	var counts []WordCount
	for _, w := range tokenize(strings.ToLower(strings.Join(texts, " ")), MinWordLength) {
		if _, ok := stop[w]; ok {
			continue
		}
		if i, ok := index[w]; ok {
			counts[i].Count++
			continue
		}
		index[w] = len(counts)
		counts = append(counts, WordCount{Word: w, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// tokenize splits s into runs of word characters (letters, digits, underscore) and keeps the
// runs made only of ASCII letters that are at least minLen long. A run such as "café" or
// "abc123" is skipped as a whole rather than trimmed.
func tokenize(s string, minLen int) []string {
	var out []string
	start := -1
	asciiOnly := true
	flush := func(end int) {
		if start >= 0 && asciiOnly && end-start >= minLen {
			out = append(out, s[start:end])
		}
		start = -1
		asciiOnly = true
	}
	for i, r := range s {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			if !isASCIILetter(r) {
				asciiOnly = false
			}
			continue
		}
		flush(i)
	}
	flush(len(s))
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// CompareWords partitions rows by broad category and counts words in the negative and
// positive partitions. Neutral rows are ignored.
func CompareWords(rows []Row, stop map[string]struct{}) WordFrequency {
	var neg, pos []string
	for _, r := range rows {
		switch r.Broad {
		case Negative:
			neg = append(neg, r.Text)
		case Positive:
			pos = append(pos, r.Text)
		}
	}
	return WordFrequency{
		Negative: nonNilWords(CountWords(neg, stop, TopWords)),
		Positive: nonNilWords(CountWords(pos, stop, TopWords)),
	}
}

func nonNilWords(in []WordCount) []WordCount {
	if in == nil {
		return []WordCount{}
	}
	return in
}
