package model

// LookupStatus tags the variant held by a LookupResult.
type LookupStatus string

const (
	LookupSuccess   LookupStatus = "success"
	LookupNotFound  LookupStatus = "not_found"
	LookupTransient LookupStatus = "transient_error"
)

// LookupResult is the outcome of querying one external source for a provider.
// Record is set only when Status is LookupSuccess. Err, when set, carries the
// error chain behind a failure so callers can classify it (see ocr.IsMalformed).
type LookupResult struct {
	Status LookupStatus    `json:"status"`
	Record *ProviderRecord `json:"record,omitempty"`
	Reason string          `json:"reason,omitempty"`
	Err    error           `json:"-"`
}

// Success wraps a record found by a source.
func Success(rec ProviderRecord) LookupResult {
	return LookupResult{Status: LookupSuccess, Record: &rec}
}

// NotFound reports that the source has no record for the key.
func NotFound(reason string) LookupResult {
	return LookupResult{Status: LookupNotFound, Reason: reason}
}

// TransientError reports a recoverable failure. The reason defaults to err's message.
func TransientError(reason string, err error) LookupResult {
	if reason == "" && err != nil {
		reason = err.Error()
	}
	return LookupResult{Status: LookupTransient, Reason: reason, Err: err}
}

// OK reports whether the lookup produced a record.
func (r LookupResult) OK() bool {
	return r.Status == LookupSuccess && r.Record != nil
}

// Value returns the value of f from a successful lookup, or "" otherwise.
func (r LookupResult) Value(f Field) string {
	if !r.OK() {
		return ""
	}
	return r.Record.Get(f)
}
