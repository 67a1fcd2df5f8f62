package compiler

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/system"
)

// CompiledOutput is the aggregate of a batch compile. Elements holds the
// markup of every description that compiled, in input order.
type CompiledOutput struct {
	Elements []string
	Warnings []string
	Defs     []string // shared <path> definitions referenced by mpath
}

// Markup joins Defs and Elements, one per line
func (o CompiledOutput) Markup() string {
	b := system.GetBuffer()
	defer system.PutBuffer(b)
	if len(o.Defs) > 0 {
		b.WriteString("<defs>\n")
		for _, d := range o.Defs {
			b.WriteString(d + "\n")
		}
		b.WriteString("</defs>\n")
	}
	for _, e := range o.Elements {
		b.WriteString(e + "\n")
	}
	return b.String()
}

// Compiler holds options and a worker limit for batch compiles
type Compiler struct {
	Options Options
	Workers int
	log     zerolog.Logger
}

func New(opts Options, log zerolog.Logger) *Compiler {
	return &Compiler{
		Options: opts,
		Workers: runtime.NumCPU(),
		log:     log.With().Str("component", "compiler").Logger(),
	}
}

// Compile renders one description with the compiler's options
func (c *Compiler) Compile(d *anim.Description) (string, error) {
	return Compile(d, c.Options)
}

// Validate satisfies the interaction session's validator
func (c *Compiler) Validate(d *anim.Description) ValidationResult {
	return Validate(d)
}

type compiled struct {
	markup   string
	warnings []string
	err      error
}

// CompileAll compiles ds concurrently. A failing description never aborts
// the batch: it becomes a warning and the rest still compile.
func (c *Compiler) CompileAll(ctx context.Context, ds []anim.Description) CompiledOutput {
	results := make([]compiled, len(ds))

	g, gctx := errgroup.WithContext(ctx)
	if c.Workers > 0 {
		g.SetLimit(c.Workers)
	}
	for i := range ds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].err = err
				return nil
			}
			results[i].markup, results[i].warnings, results[i].err = compile(&ds[i], c.Options)
			return nil
		})
	}
	_ = g.Wait()

	var out CompiledOutput
	seen := make(map[string]bool)
	for i, r := range results {
		d := &ds[i]
		out.Warnings = append(out.Warnings, r.warnings...)
		if r.err != nil {
			c.log.Warn().Str("animation", d.ID).Err(r.err).Msg("skipping animation")
			out.Warnings = append(out.Warnings, fmt.Sprintf("animation %q skipped: %v", d.ID, r.err))
			continue
		}
		out.Elements = append(out.Elements, r.markup)

		ref := strings.TrimPrefix(d.PathRef, "#")
		if d.Kind == anim.KindMotion && ref != "" && d.Path != "" && !seen[ref] {
			seen[ref] = true
			out.Defs = append(out.Defs, fmt.Sprintf(`<path id="%s" d="%s"/>`, escaper.Replace(ref), escaper.Replace(d.Path)))
		}
	}
	c.log.Debug().Int("compiled", len(out.Elements)).Int("warnings", len(out.Warnings)).Msg("batch compiled")
	return out
}
