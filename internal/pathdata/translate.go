package pathdata

import (
	"fmt"
	gostrconv "strconv"
	"strings"
)

// Translate shifts every absolute coordinate of d by (dx, dy). Relative
// segments follow their start point, so only absolute commands and the
// first pair of a leading relative moveto change.
func Translate(d string, dx, dy float64) (string, error) {
	s := &scanner{b: []byte(d)}
	var b strings.Builder
	leading := true

	write := func(v float64) {
		if v == 0 {
			v = 0
		}
		b.WriteByte(' ')
		b.WriteString(gostrconv.FormatFloat(v, 'f', -1, 64))
	}

	for !s.done() {
		cmd, ok := s.command()
		if !ok {
			return "", fmt.Errorf("expected command at offset %d", s.pos)
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(cmd)
		upper := cmd &^ 0x20

		for first := true; first || (upper != 'Z' && s.startsNumber()); first = false {
			shift := cmd < 'a' || (leading && upper == 'M')
			leading = false
			switch upper {
			case 'Z':
			case 'H', 'V':
				v, err := s.number()
				if err != nil {
					return "", err
				}
				if shift && upper == 'H' {
					v += dx
				} else if shift {
					v += dy
				}
				write(v)
			case 'A':
				v, err := s.numbers(3)
				if err != nil {
					return "", err
				}
				large, err := s.flag()
				if err != nil {
					return "", err
				}
				sweep, err := s.flag()
				if err != nil {
					return "", err
				}
				end, err := s.numbers(2)
				if err != nil {
					return "", err
				}
				if shift {
					end[0], end[1] = end[0]+dx, end[1]+dy
				}
				write(v[0])
				write(v[1])
				write(v[2])
				b.WriteString(" " + flagString(large) + " " + flagString(sweep))
				write(end[0])
				write(end[1])
			case 'M', 'L', 'T', 'C', 'S', 'Q':
				n := map[byte]int{'M': 2, 'L': 2, 'T': 2, 'C': 6, 'S': 4, 'Q': 4}[upper]
				v, err := s.numbers(n)
				if err != nil {
					return "", err
				}
				for i, x := range v {
					if shift && i%2 == 0 {
						x += dx
					} else if shift {
						x += dy
					}
					write(x)
				}
			default:
				return "", fmt.Errorf("unknown path command %q", cmd)
			}
		}
	}
	return b.String(), nil
}

func flagString(f bool) string {
	if f {
		return "1"
	}
	return "0"
}
