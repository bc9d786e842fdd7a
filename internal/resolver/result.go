package resolver

// Status classifies the outcome of a lookup.
type Status int

const (
	// StatusNoMatch means nothing in the domain was close enough.
	StatusNoMatch Status = iota
	// StatusResolved means Value holds a canonical catalog value.
	StatusResolved
	// StatusInvalid means the input was blank after normalization.
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusInvalid:
		return "invalid"
	default:
		return "no_match"
	}
}

// Method records which stage of the lookup produced a match.
type Method int

const (
	MethodNone Method = iota
	MethodExact
	MethodSubstring
	MethodFuzzy
	MethodPiece
)

func (m Method) String() string {
	switch m {
	case MethodExact:
		return "exact"
	case MethodSubstring:
		return "substring"
	case MethodFuzzy:
		return "fuzzy"
	case MethodPiece:
		return "piece"
	default:
		return "none"
	}
}

// Result is the outcome of resolving one piece of recognized text.
type Result struct {
	// Input is the text as passed in, before normalization.
	Input string
	// Value is the canonical catalog value. Empty unless Status is StatusResolved.
	Value string
	// Key is the catalog key that matched.
	Key    string
	Status Status
	Method Method
	// Score is the similarity of the normalized input to Key, 0 to 100.
	Score float64
	// Compared counts the keys scored during the fuzzy stage.
	Compared int
}

// OK reports whether the lookup resolved to a catalog value.
func (r Result) OK() bool { return r.Status == StatusResolved }

// OrInput returns Value when resolved, the empty string for blank input and
// the unchanged input otherwise.
func (r Result) OrInput() string {
	switch r.Status {
	case StatusResolved:
		return r.Value
	case StatusInvalid:
		return ""
	default:
		return r.Input
	}
}
