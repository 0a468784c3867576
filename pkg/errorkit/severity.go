package errorkit

import (
	"regexp"
	"strings"
)

// allFailedPattern matches messages like "failed to fetch all tweets", which
// indicate a whole batch was lost rather than a single item.
var allFailedPattern = regexp.MustCompile(`failed to .*\ball\b`)

// SeverityFor assigns a severity to a classified failure. Severity governs
// whether the orchestrator notifies externally (critical only) and whether it
// may continue with remaining items; it says nothing about retry eligibility.
func SeverityFor(kind ErrorKind, message string) Severity {
	msg := strings.ToLower(message)

	if kind == KindAuth || kind == KindConfig ||
		strings.Contains(msg, "fatal") || strings.Contains(msg, "critical") {
		return SeverityCritical
	}

	if kind == KindAPI || kind == KindBuild || allFailedPattern.MatchString(msg) {
		return SeverityHigh
	}

	switch kind {
	case KindRateLimit, KindNetwork, KindTranslation:
		return SeverityMedium
	}

	return SeverityLow
}
