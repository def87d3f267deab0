package enums

// LookupOutcome labels how a catalog lookup ended.
type LookupOutcome string

const (
	LookupOutcomeFound    LookupOutcome = "found"
	LookupOutcomeUnnamed  LookupOutcome = "unnamed"
	LookupOutcomeNotFound LookupOutcome = "not_found"
	LookupOutcomeError    LookupOutcome = "error"
)

// String implements fmt.Stringer.
func (o LookupOutcome) String() string {
	return string(o)
}
