package careapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sony/gobreaker"
)

// Conflict body markers emitted by the care-record API on 409 responses.
const (
	CodeDoubleBooking = "double_booking"
	CodeStaleObject   = "stale_object"
)

// ConflictKind is the remediation taxonomy for a failed mutating call.
// The engine never auto-resolves any of these; the kind only tells the
// caller which recovery to offer.
type ConflictKind int

const (
	// KindNone means the error did not come from the care-record API at all.
	KindNone ConflictKind = iota
	// KindDoubleBooking: same staff, overlapping time window. Pick another slot.
	KindDoubleBooking
	// KindStaleObject: the lock_version sent was outdated. Reload and reapply.
	KindStaleObject
	// KindGenericConflict: 409 without a recognizable marker. Treat like stale.
	KindGenericConflict
	// KindValidation: 4xx, recoverable by fixing the input.
	KindValidation
	// KindNetwork: transport failure or 5xx, safe to retry unchanged.
	KindNetwork
)

func (k ConflictKind) String() string {
	switch k {
	case KindDoubleBooking:
		return "double_booking"
	case KindStaleObject:
		return "stale_object"
	case KindGenericConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	default:
		return "none"
	}
}

// APIError is a non-2xx response from the care-record API, or a transport
// failure reaching it (StatusCode == 0).
type APIError struct {
	StatusCode  int    `json:"status_code"`
	Code        string `json:"code,omitempty"`
	Message     string `json:"message"`
	LockVersion *int   `json:"lock_version,omitempty"`
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("care api unreachable: %s", e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("care api: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("care api: %d: %s", e.StatusCode, e.Message)
}

// Kind classifies the error into the remediation taxonomy. A 409 is first
// inspected for the double-booking marker, then the version-mismatch marker;
// an unmarked 409 stays a generic conflict.
func (e *APIError) Kind() ConflictKind {
	switch {
	case e.StatusCode == 409:
		switch {
		case e.Code == CodeDoubleBooking || mentionsDoubleBooking(e.Message):
			return KindDoubleBooking
		case e.Code == CodeStaleObject || mentionsStaleObject(e.Message):
			return KindStaleObject
		default:
			return KindGenericConflict
		}
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return KindValidation
	default:
		return KindNetwork
	}
}

// Classify maps any error from a care-record call to a ConflictKind.
// Circuit-breaker rejections count as network failures: the call never
// reached the collaborator, so retrying unchanged is safe.
func Classify(err error) ConflictKind {
	if err == nil {
		return KindNone
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return KindNetwork
	}
	return KindNetwork
}

func mentionsDoubleBooking(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "double book") || strings.Contains(m, "overlap")
}

func mentionsStaleObject(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "stale") || strings.Contains(m, "lock_version")
}
