// Package dedup provides content fingerprinting and the persisted duplicate
// index that decides whether a tweet is allowed to reach the published output.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// MaxKeywords bounds the extracted keyword sequence per entry.
const MaxKeywords = 20

var (
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	punctPattern      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
)

// stopWords are tokens too common to count as significant terms. URL scheme
// and host fragments are included so link-only variations never contribute
// keywords.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "has": {}, "have": {},
	"was": {}, "were": {}, "will": {}, "with": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "from": {}, "they": {}, "been": {}, "their": {},
	"would": {}, "could": {}, "should": {}, "about": {}, "into": {},
	"just": {}, "more": {}, "some": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "your": {}, "http": {}, "https": {}, "www": {}, "com": {},
}

// Normalize case-folds text, strips URL-like substrings, collapses whitespace
// runs and trims. Two posts differing only in casing, spacing or an attached
// link normalize identically.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = urlPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Fingerprint returns the SHA-256 hex digest of the normalized text.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// Keywords extracts up to MaxKeywords significant terms in their original
// order: lower-cased, punctuation stripped, tokens of length <= 2 and stop
// words dropped. The sequence is used only for similarity scoring, never for
// uniqueness.
func Keywords(text string) []string {
	s := strings.ToLower(text)
	s = punctPattern.ReplaceAllString(s, " ")

	var keywords []string
	for _, token := range strings.Fields(s) {
		if len(token) <= 2 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		keywords = append(keywords, token)
		if len(keywords) == MaxKeywords {
			break
		}
	}
	return keywords
}

// Jaccard computes |A∩B| / |A∪B| over two keyword sequences treated as sets.
// Returns 0 when either side is empty, so all-stopword input can never be
// flagged as a near duplicate by content alone.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, w := range a {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, w := range b {
		setB[w] = struct{}{}
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
