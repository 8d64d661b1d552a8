package chart

import "strings"

// Alignment positions text and images relative to an anchor point.
type Alignment int

// Alignment values. Bottom and BottomCenter, Top and TopCenter share a value.
const (
	BottomLeft   Alignment = 1
	Bottom       Alignment = 2
	BottomCenter Alignment = 2
	BottomRight  Alignment = 3
	Left         Alignment = 4
	Center       Alignment = 5
	Right        Alignment = 6
	TopLeft      Alignment = 7
	Top          Alignment = 8
	TopCenter    Alignment = 8
	TopRight     Alignment = 9
)

var alignments = map[string]Alignment{
	"bottom":       Bottom,
	"bottomleft":   BottomLeft,
	"bottomcenter": BottomCenter,
	"bottomright":  BottomRight,
	"left":         Left,
	"center":       Center,
	"right":        Right,
	"top":          Top,
	"topleft":      TopLeft,
	"topcenter":    TopCenter,
	"topright":     TopRight,
}

// ParseAlignment resolves an alignment name case-insensitively. Empty or
// unknown names yield def.
func ParseAlignment(name string, def Alignment) Alignment {
	if a, ok := alignments[strings.ToLower(name)]; ok {
		return a
	}
	return def
}

// Horizontal returns -1, 0 or 1 for left, center and right alignments.
func (a Alignment) Horizontal() int {
	switch a {
	case BottomLeft, Left, TopLeft:
		return -1
	case BottomRight, Right, TopRight:
		return 1
	}
	return 0
}

// Vertical returns -1, 0 or 1 for top, middle and bottom alignments.
func (a Alignment) Vertical() int {
	switch a {
	case TopLeft, Top, TopRight:
		return -1
	case BottomLeft, Bottom, BottomRight:
		return 1
	}
	return 0
}
