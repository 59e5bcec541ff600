package passes

// TimeModelKind distinguishes the infinite (dual-phase, endlessly looping)
// time model from a finite, duration-bounded variant (§4.7).
type TimeModelKind int

const (
	TimeModelInfinite TimeModelKind = iota
	TimeModelFinite
)

// TimeModel is the resolved description of a patch's single time root
// (§4.7). DurationMs is non-nil only for TimeModelFinite.
type TimeModel struct {
	Kind        TimeModelKind
	PeriodAMs   float64
	PeriodBMs   float64
	DurationMs  *float64
}
