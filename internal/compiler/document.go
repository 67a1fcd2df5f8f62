package compiler

import (
	"fmt"
	"slices"

	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/system"
)

// Document wraps compiled output and the animated elements into a
// standalone SVG document for previews and exports.
func Document(out CompiledOutput, elements []anim.Element, width, height float64, opts Options) string {
	b := system.GetBuffer()
	defer system.PutBuffer(b)
	w, h := formatNumber(width, opts.Precision), formatNumber(height, opts.Precision)
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg"`)
	if opts.Compat == CompatLegacy {
		b.WriteString(` xmlns:xlink="http://www.w3.org/1999/xlink"`)
	}
	fmt.Fprintf(b, ` width="%s" height="%s" viewBox="0 0 %s %s">`+"\n", w, h, w, h)

	if len(out.Defs) > 0 {
		b.WriteString("<defs>\n")
		for _, d := range out.Defs {
			b.WriteString(d + "\n")
		}
		b.WriteString("</defs>\n")
	}
	for _, el := range elements {
		e := element{name: el.Tag}
		if e.name == "" {
			e.name = "g"
		}
		e.set("id", el.ID)
		for _, k := range sortedKeys(el.Attrs) {
			e.set(k, el.Attrs[k])
		}
		e.write(b)
		b.WriteByte('\n')
	}
	for _, m := range out.Elements {
		b.WriteString(m + "\n")
	}
	b.WriteString("</svg>\n")
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
