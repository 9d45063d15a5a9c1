package sentiment

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/fileutils"
)

// RunLogEntry is one line of the classification run history.
type RunLogEntry struct {
	RunID         string     `json:"run_id"`
	FinishedAt    time.Time  `json:"finished_at"`
	Input         string     `json:"input"`
	Output        string     `json:"output"`
	Provider      string     `json:"provider,omitempty"`
	Model         string     `json:"model,omitempty"`
	Brand         string     `json:"brand"`
	Records       int        `json:"records"`
	Errors        int        `json:"errors"`
	AvgConfidence float64    `json:"avg_confidence"`
	ElapsedMS     int64      `json:"elapsed_ms"`
	Bins          []BinCount `json:"bins"`
}

// NewRunLogEntry summarizes a finished batch.
func NewRunLogEntry(res BatchResult, tally BatchSummary, brand string) RunLogEntry {
	return RunLogEntry{
		RunID:         res.RunID,
		FinishedAt:    time.Now().UTC(),
		Brand:         brand,
		Records:       len(res.Records),
		Errors:        tally.Errors,
		AvgConfidence: tally.AvgConfidence,
		ElapsedMS:     res.Elapsed.Milliseconds(),
		Bins:          tally.Bins,
	}
}

// AppendRunLog adds entry to the JSONL file at path, rewriting it atomically.
func AppendRunLog(path string, entry RunLogEntry) error {
	if path == "" {
		return errors.New("AppendRunLog: path is empty")
	}
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("AppendRunLog: read: %w", err)
	}
	line, err := fileutils.MarshalJSON(entry, false)
	if err != nil {
		return fmt.Errorf("AppendRunLog: marshal: %w", err)
	}

	var b bytes.Buffer
	b.Write(bytes.TrimRight(existing, "\n"))
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.Write(line)
	if err := fileutils.WriteFileAtomicSameDir(path, b.Bytes(), 0o644); err != nil {
		return fmt.Errorf("AppendRunLog: %w", err)
	}
	return nil
}

// ReadRunLog returns all entries in file order. Blank lines are skipped.
func ReadRunLog(path string) ([]RunLogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ReadRunLog: %w", err)
	}
	defer f.Close()

	var out []RunLogEntry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e RunLogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("ReadRunLog: line %d: %w", n, err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ReadRunLog: %w", err)
	}
	return out, nil
}
