package timeline

import "fmt"

// Quality trades preview fidelity against rendering cost. It never changes
// computed values.
type Quality int

const (
	QualityEditing Quality = iota
	QualityPreview
	QualityExport
)

var qualityNames = [...]string{"editing", "preview", "export"}

func (q Quality) String() string {
	if q < 0 || int(q) >= len(qualityNames) {
		return fmt.Sprintf("Quality(%d)", int(q))
	}
	return qualityNames[q]
}

// FilterResolution is the filter-region resolution scale to render at
func (q Quality) FilterResolution() float64 {
	switch q {
	case QualityEditing:
		return 0.5
	case QualityPreview:
		return 0.75
	}
	return 1
}

// UpdateRate is the suggested frames per second
func (q Quality) UpdateRate() int {
	switch q {
	case QualityEditing:
		return 24
	case QualityPreview:
		return 30
	}
	return 60
}

func ParseQuality(s string) (Quality, error) {
	for i, name := range qualityNames {
		if name == s {
			return Quality(i), nil
		}
	}
	return 0, fmt.Errorf("unknown quality %q", s)
}

func (q Quality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

func (q *Quality) UnmarshalText(b []byte) error {
	v, err := ParseQuality(string(b))
	if err != nil {
		return err
	}
	*q = v
	return nil
}
