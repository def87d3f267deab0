package enums

import "fmt"

// ScanState is the lifecycle position of a scan session.
type ScanState string

const (
	ScanStateIdle     ScanState = "idle"
	ScanStateActive   ScanState = "active"
	ScanStateResolved ScanState = "resolved"
)

var validScanStates = []ScanState{
	ScanStateIdle,
	ScanStateActive,
	ScanStateResolved,
}

// String implements fmt.Stringer.
func (s ScanState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ScanState.
func (s ScanState) IsValid() bool {
	for _, candidate := range validScanStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseScanState converts raw input into a ScanState.
func ParseScanState(value string) (ScanState, error) {
	for _, candidate := range validScanStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid scan state %q", value)
}
