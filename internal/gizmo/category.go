package gizmo

import (
	"errors"
	"fmt"
)

// Category groups gizmos in the editor; the set is closed
type Category string

const (
	CategoryTransform   Category = "transform"
	CategoryVector      Category = "vector"
	CategoryStyle       Category = "style"
	CategoryClipMask    Category = "clip-mask"
	CategoryGradient    Category = "gradient"
	CategoryFilter      Category = "filter"
	CategoryHierarchy   Category = "hierarchy"
	CategoryInteractive Category = "interactive"
	CategoryTypography  Category = "typography"
	CategoryFX          Category = "fx"
	CategoryScene       Category = "scene"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryTransform, CategoryVector, CategoryStyle, CategoryClipMask,
	CategoryGradient, CategoryFilter, CategoryHierarchy, CategoryInteractive,
	CategoryTypography, CategoryFX, CategoryScene,
}

var ErrUnknownCategory = errors.New("unknown gizmo category")

// ParseCategory validates a category name
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// HandleType decides a handle's default cursor and hit shape
type HandleType int

const (
	HandlePosition HandleType = iota
	HandleRotation
	HandleScale
	HandleTangent
	HandleTiming
	HandleValue
	HandleOrigin
	HandleCustom
)

var handleTypeNames = [...]string{"position", "rotation", "scale", "tangent", "timing", "value", "origin", "custom"}

func (h HandleType) String() string {
	if h < 0 || int(h) >= len(handleTypeNames) {
		return fmt.Sprintf("HandleType(%d)", int(h))
	}
	return handleTypeNames[h]
}

// HitShape is the pointer hit area drawn for a handle
type HitShape string

const (
	ShapeCircle  HitShape = "circle"
	ShapeSquare  HitShape = "square"
	ShapeDiamond HitShape = "diamond"
	ShapeRing    HitShape = "ring"
	ShapeBar     HitShape = "bar"
)

// DefaultCursor is the CSS cursor shown while hovering a handle of this type
func (h HandleType) DefaultCursor() string {
	switch h {
	case HandlePosition:
		return "move"
	case HandleRotation:
		return "grab"
	case HandleScale:
		return "nwse-resize"
	case HandleTangent:
		return "pointer"
	case HandleTiming:
		return "ew-resize"
	case HandleValue:
		return "ns-resize"
	case HandleOrigin:
		return "crosshair"
	}
	return "default"
}

func (h HandleType) HitShape() HitShape {
	switch h {
	case HandleRotation:
		return ShapeRing
	case HandleScale:
		return ShapeSquare
	case HandleTangent:
		return ShapeDiamond
	case HandleTiming, HandleValue:
		return ShapeBar
	}
	return ShapeCircle
}
