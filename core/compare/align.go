package compare

// OutcomeKind classifies how a page index relates to the two documents
type OutcomeKind int

const (
	BothPresent OutcomeKind = iota
	OnlyInFirst
	OnlyInSecond
)

func (k OutcomeKind) String() string {
	switch k {
	case BothPresent:
		return "both"
	case OnlyInFirst:
		return "only_in_first"
	case OnlyInSecond:
		return "only_in_second"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON reports
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// PageAlignment pairs a page index with its presence in each document
type PageAlignment struct {
	Index int
	Kind  OutcomeKind
}

// AlignPages pairs pages by index. Pages beyond the end of the shorter
// document are reported as present on one side only.
func AlignPages(n1, n2 int) []PageAlignment {
	total := max(n1, n2)
	if total <= 0 {
		return nil
	}
	alignments := make([]PageAlignment, total)
	for i := range alignments {
		kind := BothPresent
		switch {
		case i >= n1:
			kind = OnlyInSecond
		case i >= n2:
			kind = OnlyInFirst
		}
		alignments[i] = PageAlignment{Index: i, Kind: kind}
	}
	return alignments
}
