package anim

import "strings"

// AnimationKind is the fine-grained classification the gizmo registry indexes by
type AnimationKind string

const (
	AnimTranslate AnimationKind = "translate"
	AnimRotate    AnimationKind = "rotate"
	AnimScale     AnimationKind = "scale"
	AnimSkewX     AnimationKind = "skewX"
	AnimSkewY     AnimationKind = "skewY"
	AnimMotion    AnimationKind = "motion"
	AnimSet       AnimationKind = "set"
	AnimOpacity   AnimationKind = "opacity"
	AnimColor     AnimationKind = "color"
	AnimAttribute AnimationKind = "attribute"
	AnimUnknown   AnimationKind = ""
)

var colorAttributes = map[string]bool{
	"fill":           true,
	"stroke":         true,
	"stop-color":     true,
	"flood-color":    true,
	"lighting-color": true,
	"color":          true,
}

// ClassifyKind maps a description to its AnimationKind
func ClassifyKind(d *Description) AnimationKind {
	if d == nil {
		return AnimUnknown
	}
	switch d.Kind {
	case KindTransform:
		switch d.TransformType {
		case TransformTranslate:
			return AnimTranslate
		case TransformRotate:
			return AnimRotate
		case TransformScale:
			return AnimScale
		case TransformSkewX:
			return AnimSkewX
		case TransformSkewY:
			return AnimSkewY
		}
		return AnimUnknown
	case KindMotion:
		return AnimMotion
	case KindSet:
		return AnimSet
	case KindAnimate:
		name := strings.ToLower(d.AttributeName)
		switch {
		case name == "opacity" || strings.HasSuffix(name, "-opacity"):
			return AnimOpacity
		case colorAttributes[name]:
			return AnimColor
		}
		return AnimAttribute
	}
	return AnimUnknown
}
