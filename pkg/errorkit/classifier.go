package errorkit

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// HTTPStatusCarrier is implemented by errors that carry an HTTP status code,
// such as API client errors.
type HTTPStatusCarrier interface {
	HTTPStatus() int
}

// failure is the normalized view of a raw error that classification rules
// match against: lowercased message, HTTP status (0 if none) and system errno
// (0 if none).
type failure struct {
	message string
	status  int
	errno   syscall.Errno
	dnsFail bool
}

// rule is a single ordered classification predicate. First match wins.
type rule struct {
	name    string
	matches func(f failure) bool
	kind    ErrorKind
}

// Classifier maps raw failures to error kinds. Classification is a pure
// function of the failure's message, HTTP status and system error code, and
// happens exactly once per raw failure: errors that are already a
// *PipelineError must not be passed back through Classify.
type Classifier struct {
	rules []rule
}

// NewClassifier creates a classifier with the default rule set.
func NewClassifier() *Classifier {
	return &Classifier{rules: defaultRules()}
}

// Classify determines the kind of a raw error.
func (c *Classifier) Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	f := failure{message: strings.ToLower(err.Error())}

	var sc HTTPStatusCarrier
	if errors.As(err, &sc) {
		f.status = sc.HTTPStatus()
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		f.errno = errno
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		f.dnsFail = true
	}

	for _, r := range c.rules {
		if r.matches(f) {
			return r.kind
		}
	}
	return KindUnknown
}

// defaultRules returns the ordered rule list. New kinds are added by
// appending or inserting a rule; existing rules never need reordering.
func defaultRules() []rule {
	return []rule{
		{
			name: "rate_limit",
			kind: KindRateLimit,
			matches: func(f failure) bool {
				return f.status == 429 || strings.Contains(f.message, "rate limit")
			},
		},
		{
			name: "auth",
			kind: KindAuth,
			matches: func(f failure) bool {
				return f.status == 401 || f.status == 403 ||
					strings.Contains(f.message, "unauthorized") ||
					strings.Contains(f.message, "forbidden")
			},
		},
		{
			name: "api",
			kind: KindAPI,
			matches: func(f failure) bool {
				return f.status >= 400 && f.status < 600
			},
		},
		{
			name: "network",
			kind: KindNetwork,
			matches: func(f failure) bool {
				switch f.errno {
				case syscall.ETIMEDOUT, syscall.ECONNREFUSED, syscall.ECONNRESET:
					return true
				}
				return f.dnsFail ||
					strings.Contains(f.message, "timeout") ||
					strings.Contains(f.message, "network")
			},
		},
		{
			name: "filesystem",
			kind: KindFilesystem,
			matches: func(f failure) bool {
				switch f.errno {
				case syscall.ENOENT, syscall.EACCES, syscall.EMFILE:
					return true
				}
				return strings.Contains(f.message, "file") ||
					strings.Contains(f.message, "directory")
			},
		},
		{
			name: "translation",
			kind: KindTranslation,
			matches: func(f failure) bool {
				return strings.Contains(f.message, "translat")
			},
		},
		{
			name: "build",
			kind: KindBuild,
			matches: func(f failure) bool {
				return strings.Contains(f.message, "hugo") ||
					strings.Contains(f.message, "build")
			},
		},
		{
			name: "config",
			kind: KindConfig,
			matches: func(f failure) bool {
				return strings.Contains(f.message, "config") ||
					strings.Contains(f.message, "environment") ||
					strings.Contains(f.message, "missing")
			},
		},
		{
			name: "validation",
			kind: KindValidation,
			matches: func(f failure) bool {
				return strings.Contains(f.message, "validation") ||
					strings.Contains(f.message, "invalid") ||
					strings.Contains(f.message, "required")
			},
		},
	}
}
