package tables

// Strategy selects how candidate table boundaries are found.
type Strategy int

const (
	// Lattice reads boundaries from visible ruling lines and rectangles.
	Lattice Strategy = iota
	// Stream infers boundaries from text alignment alone.
	Stream
	// Explicit uses only the caller-supplied boundary coordinates.
	Explicit
)

func (s Strategy) String() string {
	switch s {
	case Stream:
		return "stream"
	case Explicit:
		return "explicit"
	default:
		return "lattice"
	}
}

// Settings controls table detection. The zero value of each field selects
// its default.
type Settings struct {
	Strategy Strategy

	// SnapTolerance clusters nearly-aligned parallel edges onto one
	// boundary.
	SnapTolerance float64
	// JoinTolerance merges collinear edges separated by small gaps.
	JoinTolerance float64
	// IntersectionTolerance is the slack allowed when testing whether a
	// vertical and a horizontal edge actually cross.
	IntersectionTolerance float64
	// TextTolerance is used both for collecting a cell's chars and for
	// grouping them into the cell's text.
	TextTolerance float64
	// EdgeMinLength drops edges shorter than this before snapping.
	EdgeMinLength float64
	// MinCellSize drops degenerate cells whose width or height falls
	// below it.
	MinCellSize float64

	// MinWordsVertical is the number of words that must share an
	// alignment before it becomes a stream column boundary.
	MinWordsVertical int
	// MinWordsHorizontal is the number of words that must share a top
	// before it becomes a stream row boundary.
	MinWordsHorizontal int

	// ExplicitVerticalLines and ExplicitHorizontalLines are boundary
	// coordinates (x positions and top positions respectively) supplied
	// by the caller. The Explicit strategy uses nothing else; the other
	// strategies add them to their derived edges.
	ExplicitVerticalLines   []float64
	ExplicitHorizontalLines []float64
}

// DefaultSettings returns the standard detection settings: the Lattice
// strategy with every tolerance at 3.0 points.
func DefaultSettings() Settings {
	return Settings{
		Strategy:              Lattice,
		SnapTolerance:         3.0,
		JoinTolerance:         3.0,
		IntersectionTolerance: 3.0,
		TextTolerance:         3.0,
		EdgeMinLength:         3.0,
		MinCellSize:           1.0,
		MinWordsVertical:      3,
		MinWordsHorizontal:    1,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.SnapTolerance == 0 {
		s.SnapTolerance = d.SnapTolerance
	}
	if s.JoinTolerance == 0 {
		s.JoinTolerance = d.JoinTolerance
	}
	if s.IntersectionTolerance == 0 {
		s.IntersectionTolerance = d.IntersectionTolerance
	}
	if s.TextTolerance == 0 {
		s.TextTolerance = d.TextTolerance
	}
	if s.EdgeMinLength == 0 {
		s.EdgeMinLength = d.EdgeMinLength
	}
	if s.MinCellSize == 0 {
		s.MinCellSize = d.MinCellSize
	}
	if s.MinWordsVertical == 0 {
		s.MinWordsVertical = d.MinWordsVertical
	}
	if s.MinWordsHorizontal == 0 {
		s.MinWordsHorizontal = d.MinWordsHorizontal
	}
	return s
}
