// Package errorkit provides the error taxonomy and recovery engine for the
// pipeline: classification of raw failures into kinds, severity assignment,
// recovery-strategy lookup, bounded retry with exponential backoff, and
// process-lifetime error statistics.
package errorkit

// ErrorKind identifies the category of a pipeline failure
type ErrorKind string

const (
	// KindAPI indicates a social media API failure
	KindAPI ErrorKind = "API"
	// KindRateLimit indicates the API rate limit was hit
	KindRateLimit ErrorKind = "RATE_LIMIT"
	// KindAuth indicates rejected or missing credentials
	KindAuth ErrorKind = "AUTH"
	// KindNetwork indicates a connectivity or timeout failure
	KindNetwork ErrorKind = "NETWORK"
	// KindValidation indicates rejected input data
	KindValidation ErrorKind = "VALIDATION"
	// KindFilesystem indicates a file or directory operation failed
	KindFilesystem ErrorKind = "FILESYSTEM"
	// KindTranslation indicates the translation backend failed
	KindTranslation ErrorKind = "TRANSLATION"
	// KindBuild indicates the site build command failed
	KindBuild ErrorKind = "BUILD"
	// KindConfig indicates missing or invalid configuration
	KindConfig ErrorKind = "CONFIG"
	// KindUnknown is the fallback when no rule matches
	KindUnknown ErrorKind = "UNKNOWN"
)

// Severity is the policy-assigned urgency of a failure. It drives external
// notification (critical only) and whether the orchestrator may continue with
// remaining items; it is independent of retry eligibility.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)
