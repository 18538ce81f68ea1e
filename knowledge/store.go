package knowledge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/poiesic/faqcore/core"
)

const (
	// keywordScore is the lexical score of an explicit keyword hit.
	keywordScore = 0.8

	// minKeywordRunes and minDistinctRunes guard against noise keywords:
	// a keyword qualifies only with length >= 5 and >= 3 distinct runes.
	minKeywordRunes  = 5
	minDistinctRunes = 3
)

// knowledgeFile is the on-disk document shape.
type knowledgeFile struct {
	QA          []core.QARecord   `json:"qa"`
	CompanyInfo map[string]string `json:"company_info"`
}

// Store is the file-backed knowledge base. It reloads when the backing
// file's modification time advances and swaps in a complete new snapshot;
// readers dereference the snapshot once per operation.
type Store struct {
	path       string
	threshold  float64
	maxResults int
	logger     *slog.Logger

	mu       sync.Mutex // serializes reloads
	lastMod  time.Time
	snapshot atomic.Pointer[core.KnowledgeSnapshot]
}

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithThreshold sets the minimum lexical score a candidate must reach.
// Default is 0.7.
func WithThreshold(threshold float64) Option {
	return func(s *Store) error {
		s.threshold = threshold
		return nil
	}
}

// WithMaxResults sets the result list truncation limit.
// Default is 3.
func WithMaxResults(max int) Option {
	return func(s *Store) error {
		if max > 0 {
			s.maxResults = max
		}
		return nil
	}
}

// NewStore creates a knowledge store over the given JSON file. The file is
// not read until the first Load or Search.
func NewStore(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, ErrPathRequired
	}

	s := &Store{
		path:       path,
		threshold:  0.7,
		maxResults: 3,
		logger:     slog.Default().With("component", "knowledge"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.snapshot.Store(emptySnapshot())
	return s, nil
}

func emptySnapshot() *core.KnowledgeSnapshot {
	return &core.KnowledgeSnapshot{
		Records:     []core.QARecord{},
		CompanyInfo: map[string]string{},
		LoadedAt:    time.Now(),
	}
}

// Load re-reads the backing file if its modification time advanced, or
// unconditionally when force is set. On read failure an empty snapshot is
// installed and the failure is returned; callers keep working against the
// empty view.
func (s *Store) Load(force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		s.logger.Warn("knowledge file unavailable", "path", s.path, "err", err)
		s.snapshot.Store(emptySnapshot())
		s.lastMod = time.Time{}
		return fmt.Errorf("stat knowledge file: %w", err)
	}
	if !force && !s.lastMod.IsZero() && !info.ModTime().After(s.lastMod) {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Error("failed to read knowledge file", "path", s.path, "err", err)
		s.snapshot.Store(emptySnapshot())
		s.lastMod = time.Time{}
		return fmt.Errorf("read knowledge file: %w", err)
	}

	var file knowledgeFile
	if err := json.Unmarshal(data, &file); err != nil {
		s.logger.Error("failed to parse knowledge file", "path", s.path, "err", err)
		s.snapshot.Store(emptySnapshot())
		s.lastMod = time.Time{}
		return fmt.Errorf("parse knowledge file: %w", err)
	}

	snap := &core.KnowledgeSnapshot{
		Records:     file.QA,
		CompanyInfo: file.CompanyInfo,
		LoadedAt:    time.Now(),
	}
	if snap.Records == nil {
		snap.Records = []core.QARecord{}
	}
	if snap.CompanyInfo == nil {
		snap.CompanyInfo = map[string]string{}
	}

	s.snapshot.Store(snap)
	s.lastMod = info.ModTime()
	s.logger.Info("knowledge loaded", "records", len(snap.Records))
	return nil
}

// Search scores every record against the query using explicit keyword
// membership and exact-text equality only. Qualifying candidates below the
// threshold are dropped; results are sorted by score descending and
// truncated to the configured maximum.
func (s *Store) Search(query string) []core.LexicalResult {
	if err := s.Load(false); err != nil {
		s.logger.Warn("knowledge reload failed, searching last snapshot", "err", err)
	}
	snap := s.snapshot.Load()

	queryNorm := core.Normalize(query)
	if queryNorm == "" {
		return nil
	}

	results := make([]core.LexicalResult, 0, s.maxResults)
	for _, rec := range snap.Records {
		score, exact := lexicalScore(queryNorm, &rec)
		if score < s.threshold {
			continue
		}
		results = append(results, core.LexicalResult{
			Question: rec.Question,
			Answer:   rec.Answer,
			Score:    score,
			Exact:    exact,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}
	return results
}

// lexicalScore computes the lexical score of one record: 1.0 for a verbatim
// question match, otherwise keywordScore when the query contains a
// qualifying explicit keyword.
func lexicalScore(queryNorm string, rec *core.QARecord) (float64, bool) {
	if queryNorm == core.Normalize(rec.Question) {
		return 1.0, true
	}

	for _, kw := range rec.Keywords {
		kwNorm := core.Normalize(kw)
		if !keywordQualifies(kwNorm) {
			continue
		}
		if strings.Contains(queryNorm, kwNorm) {
			return keywordScore, false
		}
	}
	return 0, false
}

// keywordQualifies rejects short or low-entropy keywords ("iso", "มีมีมี")
// that would match on noise.
func keywordQualifies(kw string) bool {
	if utf8.RuneCountInString(kw) < minKeywordRunes {
		return false
	}
	distinct := make(map[rune]struct{}, minDistinctRunes)
	for _, r := range kw {
		distinct[r] = struct{}{}
		if len(distinct) >= minDistinctRunes {
			return true
		}
	}
	return false
}

// Snapshot returns the current knowledge snapshot. The returned value is
// immutable and must not be modified.
func (s *Store) Snapshot() *core.KnowledgeSnapshot {
	return s.snapshot.Load()
}

// CompanyInfo returns the company information from the current snapshot.
func (s *Store) CompanyInfo() map[string]string {
	if err := s.Load(false); err != nil {
		s.logger.Warn("knowledge reload failed", "err", err)
	}
	return s.snapshot.Load().CompanyInfo
}

// Records returns all records from the current snapshot, for index builds.
func (s *Store) Records() []core.QARecord {
	if err := s.Load(false); err != nil {
		s.logger.Warn("knowledge reload failed", "err", err)
	}
	return s.snapshot.Load().Records
}
