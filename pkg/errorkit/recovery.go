package errorkit

// Recovery strategy identifiers
const (
	StrategyWaitAndRetry       = "wait_and_retry"
	StrategyExponentialBackoff = "exponential_backoff"
	StrategyRetryWithBackoff   = "retry_with_backoff"
	StrategyFallbackToOriginal = "fallback_to_original"
	StrategyAlternativePath    = "alternative_path"
	StrategyManualIntervention = "manual_intervention"
	StrategyNone               = "none"
)

// RecoveryStrategy describes the kind-specific mitigation attempted before a
// terminal error is surfaced. CanRecover means a strategy exists to attempt
// in-process, not that it will succeed.
type RecoveryStrategy struct {
	CanRecover  bool
	ID          string
	Description string
}

var recoveryTable = map[ErrorKind]RecoveryStrategy{
	KindRateLimit: {
		CanRecover:  true,
		ID:          StrategyWaitAndRetry,
		Description: "wait for the rate limit window to reset, then retry",
	},
	KindNetwork: {
		CanRecover:  true,
		ID:          StrategyExponentialBackoff,
		Description: "retry with exponentially increasing delays",
	},
	KindAPI: {
		CanRecover:  true,
		ID:          StrategyRetryWithBackoff,
		Description: "retry the API call with backoff",
	},
	KindTranslation: {
		CanRecover:  true,
		ID:          StrategyFallbackToOriginal,
		Description: "publish the original untranslated text",
	},
	KindFilesystem: {
		CanRecover:  true,
		ID:          StrategyAlternativePath,
		Description: "write to an alternative output path",
	},
	KindAuth: {
		CanRecover:  false,
		ID:          StrategyManualIntervention,
		Description: "credentials must be fixed by an operator",
	},
	KindConfig: {
		CanRecover:  false,
		ID:          StrategyManualIntervention,
		Description: "configuration must be fixed by an operator",
	},
	KindBuild: {
		CanRecover:  false,
		ID:          StrategyManualIntervention,
		Description: "site build failures need operator attention",
	},
}

// StrategyFor returns the recovery strategy for a kind. Kinds without an
// entry (including UNKNOWN) are not recoverable.
func StrategyFor(kind ErrorKind) RecoveryStrategy {
	if s, ok := recoveryTable[kind]; ok {
		return s
	}
	return RecoveryStrategy{CanRecover: false, ID: StrategyNone, Description: "no recovery strategy"}
}
