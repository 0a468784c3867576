package dedup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const indexVersion = "1.0"

// Default knobs. Both are empirical rather than structural, so they are
// exposed as configuration (DEDUP_SIMILARITY_THRESHOLD, DEDUP_RETENTION_DAYS).
const (
	DefaultSimilarityThreshold = 0.85
	DefaultRetentionDays       = 30
)

// Reason explains a duplicate verdict.
type Reason string

const (
	ReasonIDExists         Reason = "id_exists"
	ReasonFingerprintMatch Reason = "fingerprint_match"
	ReasonURLMatch         Reason = "url_match"
	ReasonSimilarity       Reason = "similarity"
	ReasonUnique           Reason = "unique"
)

// Entry is one processed-item row in the persisted index. Field names are
// part of the on-disk contract and must not change.
type Entry struct {
	TweetID       string    `json:"tweetId"`
	ContentHash   string    `json:"contentHash"`
	ProcessedDate time.Time `json:"processedDate"`
	Filename      string    `json:"filename"`
	Keywords      []string  `json:"keywords,omitempty"`
	Content       string    `json:"content,omitempty"`
	TweetURL      string    `json:"tweetUrl,omitempty"`
}

// indexDocument is the persisted form of the whole index.
type indexDocument struct {
	ProcessedTweets []Entry   `json:"processedTweets"`
	LastUpdated     time.Time `json:"lastUpdated"`
	Version         string    `json:"version"`
}

// CheckResult is the duplicate verdict for one candidate item.
type CheckResult struct {
	IsDuplicate bool
	Reason      Reason
	Matched     *Entry
	Fingerprint string
	Similarity  float64
}

// IndexConfig configures a duplicate index.
type IndexConfig struct {
	// Path of the persisted JSON document.
	Path string
	// Retention is the maximum entry age before pruning. Defaults to 30 days.
	Retention time.Duration
	// SimilarityThreshold is the Jaccard score above which an item counts as
	// a near duplicate. Defaults to 0.85.
	SimilarityThreshold float64
	Logger              *logrus.Logger
	// Now is overridable in tests.
	Now func() time.Time
}

// Index is the persisted duplicate store. It is lazily loaded on first use
// and fully rewritten on every mutation. A single pipeline run owns the
// instance; there is no inter-process locking, so concurrent runs against the
// same file can lose updates.
type Index struct {
	mu        sync.Mutex
	path      string
	retention time.Duration
	threshold float64
	logger    *logrus.Logger
	now       func() time.Time

	loaded  bool
	entries []Entry
}

// NewIndex creates a duplicate index backed by the given file.
func NewIndex(config IndexConfig) (*Index, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("index path is required")
	}
	if config.Retention <= 0 {
		config.Retention = DefaultRetentionDays * 24 * time.Hour
	}
	if config.SimilarityThreshold <= 0 {
		config.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Index{
		path:      config.Path,
		retention: config.Retention,
		threshold: config.SimilarityThreshold,
		logger:    config.Logger,
		now:       config.Now,
	}, nil
}

// Check answers whether the candidate item duplicates an existing entry.
// Lookup precedence: id, fingerprint, url, then keyword similarity.
func (i *Index) Check(id, text, url string) (CheckResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.ensureFresh(); err != nil {
		return CheckResult{}, err
	}

	fingerprint := Fingerprint(text)
	result := CheckResult{Fingerprint: fingerprint}

	for idx := range i.entries {
		if i.entries[idx].TweetID == id {
			result.IsDuplicate = true
			result.Reason = ReasonIDExists
			result.Matched = &i.entries[idx]
			return result, nil
		}
	}

	for idx := range i.entries {
		if i.entries[idx].ContentHash == fingerprint {
			result.IsDuplicate = true
			result.Reason = ReasonFingerprintMatch
			result.Matched = &i.entries[idx]
			return result, nil
		}
	}

	if url != "" {
		for idx := range i.entries {
			if i.entries[idx].TweetURL == url {
				result.IsDuplicate = true
				result.Reason = ReasonURLMatch
				result.Matched = &i.entries[idx]
				return result, nil
			}
		}
	}

	keywords := Keywords(text)
	for idx := range i.entries {
		score := Jaccard(keywords, i.entries[idx].Keywords)
		if score > i.threshold {
			result.IsDuplicate = true
			result.Reason = ReasonSimilarity
			result.Matched = &i.entries[idx]
			result.Similarity = score
			return result, nil
		}
	}

	result.Reason = ReasonUnique
	return result, nil
}

// Record appends a processed item and rewrites the persisted index.
func (i *Index) Record(id, fingerprint, filename, rawText, url string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.ensureFresh(); err != nil {
		return err
	}

	entry := Entry{
		TweetID:       id,
		ContentHash:   fingerprint,
		ProcessedDate: i.now(),
		Filename:      filename,
		Keywords:      Keywords(rawText),
		Content:       rawText,
		TweetURL:      url,
	}
	i.entries = append(i.entries, entry)

	if err := i.persist(); err != nil {
		return err
	}

	i.logger.WithFields(logrus.Fields{
		"tweet_id":    id,
		"fingerprint": fingerprint,
		"filename":    filename,
		"entries":     len(i.entries),
	}).Debug("Recorded processed item")

	return nil
}

// Len returns the number of live entries.
func (i *Index) Len() (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.ensureFresh(); err != nil {
		return 0, err
	}
	return len(i.entries), nil
}

// ensureFresh lazily loads the persisted document and runs the retention
// sweep. Callers must hold the mutex.
func (i *Index) ensureFresh() error {
	if !i.loaded {
		if err := i.load(); err != nil {
			return err
		}
		i.loaded = true
	}
	return i.sweep()
}

func (i *Index) load() error {
	data, err := os.ReadFile(i.path)
	if err != nil {
		if os.IsNotExist(err) {
			i.logger.WithField("path", i.path).Debug("No duplicate index on disk, starting empty")
			i.entries = nil
			return nil
		}
		return fmt.Errorf("failed to read duplicate index: %w", err)
	}

	var doc indexDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse duplicate index: %w", err)
	}

	i.entries = doc.ProcessedTweets
	i.logger.WithFields(logrus.Fields{
		"path":    i.path,
		"entries": len(i.entries),
		"version": doc.Version,
	}).Debug("Loaded duplicate index")

	return nil
}

// sweep drops entries older than the retention window and persists the
// pruned index if anything changed.
func (i *Index) sweep() error {
	cutoff := i.now().Add(-i.retention)

	kept := i.entries[:0]
	for _, e := range i.entries {
		if e.ProcessedDate.After(cutoff) {
			kept = append(kept, e)
		}
	}

	pruned := len(i.entries) - len(kept)
	i.entries = kept
	if pruned == 0 {
		return nil
	}

	i.logger.WithFields(logrus.Fields{
		"pruned":    pruned,
		"remaining": len(i.entries),
	}).Info("Pruned expired duplicate index entries")

	return i.persist()
}

// persist rewrites the whole document atomically (write to temp, rename).
func (i *Index) persist() error {
	doc := indexDocument{
		ProcessedTweets: i.entries,
		LastUpdated:     i.now(),
		Version:         indexVersion,
	}
	if doc.ProcessedTweets == nil {
		doc.ProcessedTweets = []Entry{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal duplicate index: %w", err)
	}

	dir := filepath.Dir(i.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".dedup-index-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp index file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp index file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp index file: %w", err)
	}

	if err := os.Rename(tmp.Name(), i.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace duplicate index: %w", err)
	}

	return nil
}
