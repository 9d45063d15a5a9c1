package sentiment

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/fileutils"
)

// DefaultPostsField is the array field of the scraper's export object.
const DefaultPostsField = "posts"

// LoadOptions controls LoadPosts.
type LoadOptions struct {
	// ArrayField is the field holding the posts when the top-level JSON value is an object.
	// If empty, DefaultPostsField is tried first and then the first array-valued field.
	ArrayField string
}

// LoadPosts reads scraped posts from path. The input is either a top-level JSON array of posts
// or an object wrapping that array (the scraper writes {"posts": [...]}). Posts with empty
// text are skipped; missing timestamps become "".
func LoadPosts(ctx context.Context, path string, opts LoadOptions) ([]Post, error) {
	if path == "" {
		return nil, errors.New("LoadPosts: path is empty")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadPosts: open input: %w", err)
	}
	defer f.Close()
	return DecodePosts(ctx, f, opts)
}

// DecodePosts is LoadPosts over an arbitrary reader.
func DecodePosts(ctx context.Context, r io.Reader, opts LoadOptions) ([]Post, error) {
	if ctx == nil {
		return nil, errors.New("DecodePosts: ctx is nil")
	}
	dec := json.NewDecoder(bufio.NewReaderSize(r, 1<<20))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("DecodePosts: read first token: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, fmt.Errorf("DecodePosts: expected JSON array/object, got %T", tok)
	}

	var posts []Post
	switch delim {
	case '[':
		if err := decodePostArray(ctx, dec, &posts); err != nil {
			return nil, err
		}
		return posts, nil
	case '{':
		field, found, err := decodePostObject(ctx, dec, opts, &posts)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("DecodePosts: no %q array found in top-level object", field)
		}
		return posts, nil
	default:
		return nil, fmt.Errorf("DecodePosts: unsupported top-level delimiter %q", delim)
	}
}

// decodePostObject scans the top-level object for the posts array. With no ArrayField set,
// "posts" wins over any array seen before it.
func decodePostObject(ctx context.Context, dec *json.Decoder, opts LoadOptions, posts *[]Post) (string, bool, error) {
	want := opts.ArrayField
	if want == "" {
		want = DefaultPostsField
	}

	var fallback []Post
	foundWanted, foundFallback := false, false
	for dec.More() {
		select {
		case <-ctx.Done():
			return want, false, ctx.Err()
		default:
		}

		keyTok, err := dec.Token()
		if err != nil {
			return want, false, fmt.Errorf("DecodePosts: read object key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return want, false, fmt.Errorf("DecodePosts: expected string key, got %T", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return want, false, fmt.Errorf("DecodePosts: read value token for key %q: %w", key, err)
		}
		d, isArray := valTok.(json.Delim)
		isArray = isArray && d == '['

		switch {
		case key == want && !foundWanted:
			if !isArray {
				return want, false, fmt.Errorf("DecodePosts: key %q is not an array", key)
			}
			if err := decodePostArray(ctx, dec, posts); err != nil {
				return want, false, err
			}
			foundWanted = true
		case isArray && opts.ArrayField == "" && !foundFallback && !foundWanted:
			if err := decodePostArray(ctx, dec, &fallback); err != nil {
				return want, false, err
			}
			foundFallback = true
		default:
			if err := skipValue(dec, valTok); err != nil {
				return want, false, fmt.Errorf("DecodePosts: skip key %q value: %w", key, err)
			}
		}
	}

	if tok, err := dec.Token(); err != nil {
		return want, false, fmt.Errorf("DecodePosts: read closing object token: %w", err)
	} else if d, ok := tok.(json.Delim); !ok || d != '}' {
		return want, false, fmt.Errorf("DecodePosts: expected closing '}', got %v", tok)
	}

	if foundWanted {
		return want, true, nil
	}
	if foundFallback {
		*posts = fallback
		return want, true, nil
	}
	return want, false, nil
}

// decodePostArray consumes array elements and the closing ']'.
func decodePostArray(ctx context.Context, dec *json.Decoder, posts *[]Post) error {
	for i := 0; dec.More(); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var p Post
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("DecodePosts: decode post %d: %w", i, err)
		}
		if p.Text == "" {
			continue
		}
		*posts = append(*posts, p)
	}
	if tok, err := dec.Token(); err != nil {
		return fmt.Errorf("DecodePosts: read closing array token: %w", err)
	} else if d, ok := tok.(json.Delim); !ok || d != ']' {
		return fmt.Errorf("DecodePosts: expected closing ']', got %v", tok)
	}
	return nil
}

func skipValue(dec *json.Decoder, first json.Token) error {
	d, ok := first.(json.Delim)
	if !ok {
		return nil
	}
	switch d {
	case '{', '[':
	default:
		return fmt.Errorf("skipValue: unexpected delimiter %q", d)
	}

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		if dd, ok := tok.(json.Delim); ok {
			switch dd {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

type storedRecord struct {
	Text            string   `json:"tweet"`
	ConfidenceScore *float64 `json:"confidence_score"`
	Reasoning       *string  `json:"reasoning"`
	Timestamp       string   `json:"timestamp"`
	RawTimestamp    string   `json:"rawTimestamp"`
}

// LoadRecords reads a classification output file. A missing score reads as NeutralScore and a
// missing reasoning as ReasoningMissing; scores are otherwise kept as stored, even out of range.
func LoadRecords(path string) ([]Record, error) {
	if path == "" {
		return nil, errors.New("LoadRecords: path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadRecords: read file: %w", err)
	}
	recs, err := DecodeRecords(b)
	if err != nil {
		return nil, fmt.Errorf("LoadRecords: %w", err)
	}
	return recs, nil
}

// DecodeRecords parses a JSON array of records.
func DecodeRecords(b []byte) ([]Record, error) {
	var stored []storedRecord
	if err := json.Unmarshal(b, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal records: %w", err)
	}
	out := make([]Record, 0, len(stored))
	for _, s := range stored {
		r := Record{
			Text:            s.Text,
			ConfidenceScore: NeutralScore,
			Reasoning:       ReasoningMissing,
			Timestamp:       s.Timestamp,
			RawTimestamp:    s.RawTimestamp,
		}
		if s.ConfidenceScore != nil {
			r.ConfidenceScore = *s.ConfidenceScore
		}
		if s.Reasoning != nil {
			r.Reasoning = *s.Reasoning
		}
		out = append(out, r)
	}
	return out, nil
}

// SaveRecords writes records as a pretty-printed UTF-8 JSON array, atomically.
func SaveRecords(path string, records []Record) error {
	if path == "" {
		return errors.New("SaveRecords: path is empty")
	}
	if records == nil {
		records = []Record{}
	}
	if err := fileutils.WriteJSONFileAtomic(path, records, true); err != nil {
		return fmt.Errorf("SaveRecords: %w", err)
	}
	return nil
}
