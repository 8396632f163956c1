package graphicsstate

import (
	"github.com/tsawler/plumb/font"
	"github.com/tsawler/plumb/model"
)

// GraphicsState holds the parameters a content stream can push and pop with
// the q/Q operators.
type GraphicsState struct {
	// CTM maps user space to device space.
	CTM model.Matrix

	Text TextState

	LineWidth   float64
	StrokeColor model.Color
	FillColor   model.Color

	DashArray []float64
	DashPhase float64

	// Clip is the device-space clipping box, nil when unbounded. Only
	// rectangular clips are tracked; a non-rectangular clip path keeps
	// the bounding box of whatever path established it.
	Clip *model.BBox

	stack []*GraphicsState
}

// TextState holds the text-specific parameters set between BT and ET.
type TextState struct {
	FontName string
	Font     *font.ResolvedFont
	Size     float64

	CharSpacing float64
	WordSpacing float64
	// HorizScaling is the Tz value as a percentage, 100 by default.
	HorizScaling float64
	Leading      float64
	Rise         float64
	RenderMode   int

	Matrix     model.Matrix
	LineMatrix model.Matrix
}

// NewGraphicsState returns a state with the defaults the PDF imaging model
// prescribes at the start of a content stream.
func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM:         model.Identity(),
		LineWidth:   1.0,
		StrokeColor: model.Black,
		FillColor:   model.Black,
		Text: TextState{
			HorizScaling: 100.0,
			Matrix:       model.Identity(),
			LineMatrix:   model.Identity(),
		},
	}
}

func (gs *GraphicsState) clone() *GraphicsState {
	c := *gs
	c.stack = nil
	if gs.Clip != nil {
		clip := *gs.Clip
		c.Clip = &clip
	}
	if gs.DashArray != nil {
		c.DashArray = append([]float64(nil), gs.DashArray...)
	}
	return &c
}

// Save pushes a copy of the current state (q operator).
func (gs *GraphicsState) Save() {
	gs.stack = append(gs.stack, gs.clone())
}

// Restore pops the most recent saved state (Q operator). An unbalanced Q is
// tolerated: the state is left unchanged and false is returned.
func (gs *GraphicsState) Restore() bool {
	if len(gs.stack) == 0 {
		return false
	}
	saved := gs.stack[len(gs.stack)-1]
	gs.stack = gs.stack[:len(gs.stack)-1]

	stack := gs.stack
	*gs = *saved
	gs.stack = stack
	return true
}

// Concat composes m into the CTM (cm operator): new = m × current.
func (gs *GraphicsState) Concat(m model.Matrix) {
	gs.CTM = m.Multiply(gs.CTM)
}

// IntersectClip narrows the clip box to its intersection with box.
func (gs *GraphicsState) IntersectClip(box model.BBox) {
	if gs.Clip == nil {
		clip := box
		gs.Clip = &clip
		return
	}
	clip := gs.Clip.Intersection(box)
	gs.Clip = &clip
}

// BeginText resets the text matrices (BT operator).
func (gs *GraphicsState) BeginText() {
	gs.Text.Matrix = model.Identity()
	gs.Text.LineMatrix = model.Identity()
}

// SetTextMatrix replaces both text matrices (Tm operator).
func (gs *GraphicsState) SetTextMatrix(m model.Matrix) {
	gs.Text.Matrix = m
	gs.Text.LineMatrix = m
}

// NextLine translates the line matrix and restarts the text matrix from it
// (Td operator).
func (gs *GraphicsState) NextLine(tx, ty float64) {
	gs.Text.LineMatrix = model.Translate(tx, ty).Multiply(gs.Text.LineMatrix)
	gs.Text.Matrix = gs.Text.LineMatrix
}

// AdvanceText translates the text matrix alone, as glyph advances and TJ
// adjustments do.
func (gs *GraphicsState) AdvanceText(tx, ty float64) {
	gs.Text.Matrix = model.Translate(tx, ty).Multiply(gs.Text.Matrix)
}
