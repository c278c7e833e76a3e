package apperror

type Kind string

var (
	// --- API surface ---
	InvalidInput Kind = "invalid_input"
	NotFound     Kind = "not_found"
	Unauthorised Kind = "unauthorised"
	Forbidden    Kind = "forbidden"
	Internal     Kind = "internal"
	Dependency   Kind = "dependency_failure"

	// --- Check / alert pipeline ---
	StoreUnavailable   Kind = "store_unavailable"
	DispatchFailure    Kind = "dispatch_failure"
	InvalidAlertConfig Kind = "invalid_alert_config"
)
