package compiler

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"

	"github.com/ivlev/svganim/internal/anim"
)

var unescaper = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")

// Parse reads every SMIL animation element out of markup. Unknown elements
// are skipped; an <mpath> inside <animateMotion> sets PathRef.
func Parse(markup string) ([]anim.Description, error) {
	l := xml.NewLexer(parse.NewInputString(markup))

	var (
		out     []anim.Description
		cur     *anim.Description // open animation element
		inMpath bool
		tag     string
	)
	for {
		tt, _ := l.Next()
		switch tt {
		case xml.ErrorToken:
			if err := l.Err(); err != io.EOF {
				return out, fmt.Errorf("parse markup: %w", err)
			}
			return out, nil

		case xml.StartTagToken:
			tag = string(l.Text())
			switch {
			case anim.Kind(tag).Valid():
				cur = &anim.Description{Kind: anim.Kind(tag)}
			case tag == "mpath" && cur != nil && cur.Kind == anim.KindMotion:
				inMpath = true
			}

		case xml.AttributeToken:
			name := string(l.Text())
			value := unescaper.Replace(unquote(string(l.AttrVal())))
			switch {
			case inMpath:
				if name == "href" || name == "xlink:href" {
					cur.PathRef = strings.TrimPrefix(value, "#")
				}
			case cur != nil && tag == string(cur.Kind):
				if err := setAttr(cur, name, value); err != nil {
					return out, fmt.Errorf("<%s id=%q>: %w", cur.Kind, cur.ID, err)
				}
			}

		case xml.StartTagCloseVoidToken:
			if inMpath {
				inMpath = false
			} else if cur != nil && tag == string(cur.Kind) {
				out = append(out, *cur)
				cur = nil
			}

		case xml.EndTagToken:
			name := string(l.Text())
			switch {
			case name == "mpath":
				inMpath = false
			case cur != nil && name == string(cur.Kind):
				out = append(out, *cur)
				cur = nil
			}
		}
	}
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func setAttr(d *anim.Description, name, value string) error {
	var err error
	switch name {
	case "id":
		d.ID = value
	case "href", "xlink:href":
		d.Target = strings.TrimPrefix(value, "#")
	case "attributeName":
		if d.Kind != anim.KindTransform {
			d.AttributeName = value
		}
	case "type":
		d.TransformType = anim.TransformType(value)
	case "from":
		d.From = value
	case "to":
		d.To = value
	case "by":
		d.By = value
	case "values":
		d.Values = splitList(value)
	case "keyTimes":
		d.KeyTimes, err = parseNumbers(splitList(value))
	case "keySplines":
		d.KeySplines, err = parseSplines(value)
	case "calcMode":
		d.CalcMode = anim.CalcMode(value)
	case "dur":
		if value != "indefinite" && value != "media" {
			d.Dur, err = anim.ParseClock(value)
		}
	case "begin":
		d.Begin, err = anim.ParseBegin(value)
	case "repeatCount":
		d.Repeat, err = anim.ParseRepeat(value)
	case "repeatDur":
		if value != "indefinite" {
			var v float64
			v, err = anim.ParseClock(value)
			d.RepeatDur = &v
		}
	case "fill":
		d.Fill = anim.Fill(value)
	case "additive":
		d.Additive = value == "sum"
	case "accumulate":
		d.Accumulate = value == "sum"
	case "path":
		d.Path = value
	case "rotate":
		d.Rotate = value
	}
	if err != nil {
		return fmt.Errorf("attribute %s=%q: %w", name, value, err)
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseNumbers(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseSplines(s string) ([]anim.Spline, error) {
	var out []anim.Spline
	for _, seg := range splitList(s) {
		fields := strings.FieldsFunc(seg, func(r rune) bool { return r == ' ' || r == ',' })
		if len(fields) != 4 {
			return nil, fmt.Errorf("spline %q needs four control values", seg)
		}
		nums, err := parseNumbers(fields)
		if err != nil {
			return nil, err
		}
		out = append(out, anim.Spline{nums[0], nums[1], nums[2], nums[3]})
	}
	return out, nil
}
