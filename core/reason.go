package core

// ReasonCode enumerates why a permission was denied.
type ReasonCode int

const (
	ReasonNone ReasonCode = iota
	ReasonMissingPermission
	ReasonConflict
	ReasonWithdrawn
	ReasonNotSubmitted
	ReasonDeadline
	ReasonReviewerMismatch
	ReasonDisabledAccount
)

func (c ReasonCode) String() string {
	switch c {
	case ReasonNone:
		return "allowed"
	case ReasonMissingPermission:
		return "missing permission"
	case ReasonConflict:
		return "conflict"
	case ReasonWithdrawn:
		return "paper has been withdrawn"
	case ReasonNotSubmitted:
		return "paper has not been submitted"
	case ReasonDeadline:
		return "deadline has passed"
	case ReasonReviewerMismatch:
		return "not your review"
	case ReasonDisabledAccount:
		return "account is disabled"
	}
	return "denied"
}

// Reason explains a denial. Perm functions return nil when the operation is
// allowed. Reason implements error for callers that want one.
type Reason struct {
	Code              ReasonCode
	Deadline          string // deadline setting name, with ReasonDeadline
	OverrideAvailable bool   // the viewer could force the operation
}

func (r *Reason) Error() string {
	if r == nil {
		return ReasonNone.String()
	}
	if r.Code == ReasonDeadline && r.Deadline != "" {
		return "deadline " + r.Deadline + " has passed"
	}
	return r.Code.String()
}

// Allowed is a nil-safe accessor for templates.
func (r *Reason) Allowed() bool {
	return r == nil
}

func deny(code ReasonCode) *Reason {
	return &Reason{Code: code}
}

func denyDeadline(name string, overridable bool) *Reason {
	return &Reason{Code: ReasonDeadline, Deadline: name, OverrideAvailable: overridable}
}
