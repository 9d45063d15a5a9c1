package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/theimaginaryfoundation/brand-sentiment/sentiment"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/fileutils"
)

const (
	remoteFetchTimeout = 15 * time.Second
	maxRemoteBytes     = 64 << 20
)

var remoteHTTPClient = &http.Client{
	Timeout: remoteFetchTimeout,
}

// recordSource loads classified records from a local file or an http(s) URL.
type recordSource struct {
	location string
	// dataDir is searched for the location's base name when the path itself does not exist.
	dataDir string
	client  *http.Client
}

func (s recordSource) Load(ctx context.Context) ([]sentiment.Record, error) {
	u, err := url.Parse(s.location)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return s.fetch(ctx)
	}
	for _, p := range s.candidates() {
		if fileutils.FileExists(p) {
			return sentiment.LoadRecords(p)
		}
	}
	return nil, fmt.Errorf("recordSource: %s not found", s.location)
}

func (s recordSource) candidates() []string {
	out := []string{s.location}
	if s.dataDir != "" {
		out = append(out, filepath.Join(s.dataDir, filepath.Base(s.location)))
	}
	return out
}

func (s recordSource) fetch(ctx context.Context) ([]sentiment.Record, error) {
	client := s.client
	if client == nil {
		client = remoteHTTPClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, fmt.Errorf("recordSource: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recordSource: fetch %s: %w", s.location, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("recordSource: fetch %s: status %s", s.location, resp.Status)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBytes))
	if err != nil {
		return nil, fmt.Errorf("recordSource: read body: %w", err)
	}
	return sentiment.DecodeRecords(b)
}

func (s recordSource) String() string {
	if strings.TrimSpace(s.location) == "" {
		return "<none>"
	}
	return s.location
}
