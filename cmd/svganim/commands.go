package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/svganim/internal/compiler"
	"github.com/ivlev/svganim/internal/geom"
	"github.com/ivlev/svganim/internal/gizmo"
	"github.com/ivlev/svganim/internal/gizmos"
	"github.com/ivlev/svganim/internal/interaction"
	"github.com/ivlev/svganim/internal/store"
	"github.com/ivlev/svganim/internal/system"
	"github.com/ivlev/svganim/internal/timeline"
)

func sceneFlag(fs *flag.FlagSet) *string {
	return fs.String("scene", "", "Path to a scene file (default: the most recent scene in the scenes directory)")
}

func (a *app) loadScene(path string) (string, *store.Scene, error) {
	if path == "" {
		latest, err := store.FindLatestScene(a.cfg.ScenesDir)
		if err != nil {
			return "", nil, err
		}
		path = latest
		fmt.Printf("[*] Selected scene: %s\n", path)
	}
	scene, err := store.ReadScene(path)
	if err != nil {
		return "", nil, err
	}
	return path, scene, nil
}

func (a *app) newCompiler(opts compiler.Options) *compiler.Compiler {
	c := compiler.New(opts, a.log)
	c.Workers = a.cfg.Workers
	return c
}

// outputPath derives <output dir>/<scene name>_<timestamp>.svg
func (a *app) outputPath(scenePath string) string {
	base := filepath.Base(scenePath)
	name := strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), " ", "_")
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(a.cfg.OutputDir, fmt.Sprintf("%s_%s.svg", name, timestamp))
}

func compileOptionsFlags(fs *flag.FlagSet, def compiler.Options) func() compiler.Options {
	precision := fs.Int("precision", def.Precision, "Decimals kept in numeric values, -1 keeps them as is")
	optimize := fs.Bool("optimize", def.Optimize, "Omit attributes equal to their SMIL default")
	comments := fs.Bool("comments", def.Comments, "Precede each animation with a descriptive comment")
	legacy := fs.Bool("legacy", def.Compat == compiler.CompatLegacy, "Write xlink:href references")
	return func() compiler.Options {
		opts := compiler.Options{Precision: *precision, Optimize: *optimize, Comments: *comments, Compat: compiler.CompatModern}
		if *legacy {
			opts.Compat = compiler.CompatLegacy
		}
		return opts
	}
}

func (a *app) compileScene(ctx context.Context, scene *store.Scene, opts compiler.Options, out string) error {
	res := a.newCompiler(opts).CompileAll(ctx, scene.Animations)
	for _, w := range res.Warnings {
		fmt.Printf("[!] %s\n", w)
	}
	doc := compiler.Document(res, scene.Elements, scene.Width, scene.Height, opts)

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(out, []byte(doc), 0644); err != nil {
		return err
	}
	a.log.Info().
		Int("animations", len(res.Elements)).
		Int("warnings", len(res.Warnings)).
		Str("output", out).
		Msg("scene compiled")
	return nil
}

func runCompile(a *app, args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	scenePtr := sceneFlag(fs)
	outputPtr := fs.String("o", "", "Output SVG (default: generated in the output directory)")
	options := compileOptionsFlags(fs, a.cfg.Compile)
	fs.Parse(args)

	path, scene, err := a.loadScene(*scenePtr)
	if err != nil {
		return err
	}
	out := *outputPtr
	if out == "" {
		out = a.outputPath(path)
	}
	if err := a.compileScene(context.Background(), scene, options(), out); err != nil {
		return err
	}
	fmt.Printf("[+++] Done! Result: %s\n", out)
	return nil
}

func runValidate(a *app, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	scenePtr := sceneFlag(fs)
	fs.Parse(args)

	_, scene, err := a.loadScene(*scenePtr)
	if err != nil {
		return err
	}
	invalid := 0
	for i := range scene.Animations {
		d := &scene.Animations[i]
		res := compiler.Validate(d)
		if res.Valid {
			fmt.Printf("[+] %s\n", compiler.Describe(d))
			continue
		}
		invalid++
		fmt.Printf("[-] %s\n", compiler.Describe(d))
		for _, e := range res.Errors {
			fmt.Printf("      %s\n", e)
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d animations are invalid", invalid, len(scene.Animations))
	}
	return nil
}

// stateView is the printable form of timeline.ElementState
type stateView struct {
	Transform  string                `yaml:"transform,omitempty"`
	Matrix     [6]float64            `yaml:"matrix,flow"`
	Motion     *timeline.MotionState `yaml:"motion,omitempty"`
	Attributes map[string]string     `yaml:"attributes,omitempty"`
	Active     []string              `yaml:"active,omitempty,flow"`
}

func runState(a *app, args []string) error {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	scenePtr := sceneFlag(fs)
	timePtr := fs.Float64("t", 0, "Document time in seconds")
	fs.Parse(args)

	_, scene, err := a.loadScene(*scenePtr)
	if err != nil {
		return err
	}
	eng := timeline.NewEngine(timeline.NewManualScheduler(time.Now()), a.log)
	defer eng.Dispose()
	eng.Load(scene.Elements, scene.Animations)

	views := make(map[string]stateView)
	for id, st := range eng.CalculateAllStates(*timePtr) {
		v := stateView{
			Matrix:     [6]float64(st.Matrix()),
			Motion:     st.Motion,
			Attributes: st.Attributes,
			Active:     st.Active,
		}
		if st.Transform != timeline.IdentityTransform {
			v.Transform = st.Transform.String()
		}
		views[id] = v
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(map[string]any{
		"time":     *timePtr,
		"duration": durationText(eng.MaxDuration()),
		"elements": views,
	})
}

func durationText(d float64) string {
	if math.IsInf(d, 1) {
		return "indefinite"
	}
	return strconv.FormatFloat(d, 'f', -1, 64) + "s"
}

func runPlay(a *app, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	scenePtr := sceneFlag(fs)
	ratePtr := fs.Float64("rate", a.cfg.Playback.Rate, "Playback rate")
	qualityPtr := fs.String("quality", a.cfg.Playback.Quality.String(), "Quality preset: editing, preview, export")
	forPtr := fs.Duration("for", 0, "Stop after this wall-clock time (default: at the end of the scene)")
	fs.Parse(args)

	quality, err := timeline.ParseQuality(*qualityPtr)
	if err != nil {
		return err
	}
	_, scene, err := a.loadScene(*scenePtr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *forPtr > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *forPtr)
		defer cancel()
	}

	sched := timeline.NewTickerScheduler(quality.UpdateRate())
	defer sched.Close()
	eng := timeline.NewEngine(sched, a.log)
	defer eng.Dispose()
	eng.Load(scene.Elements, scene.Animations)
	eng.SetQuality(quality)
	eng.SetRate(*ratePtr)

	if math.IsInf(eng.MaxDuration(), 1) && *forPtr == 0 {
		fmt.Println("[*] Scene repeats indefinitely, press Ctrl+C to stop")
	}

	finished := make(chan struct{})
	var once sync.Once
	var mu sync.Mutex
	lastSecond := -1
	eng.OnTick(func(s timeline.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if sec := int(s.Time); sec != lastSecond {
			lastSecond = sec
			a.log.Info().
				Float64("time", math.Round(s.Time*100)/100).
				Float64("progress", math.Round(s.Progress*1000)/1000).
				Msg("playing")
		}
		if !s.Playing {
			once.Do(func() { close(finished) })
		}
	})
	eng.Play()

	select {
	case <-finished:
		fmt.Printf("[+++] Playback finished at %s\n", durationText(eng.Time()))
	case <-ctx.Done():
		eng.Pause()
		fmt.Printf("[*] Playback stopped at %s\n", durationText(eng.Time()))
	}
	return nil
}

func runWatch(a *app, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	scenePtr := sceneFlag(fs)
	outputPtr := fs.String("o", "", "Output SVG, rewritten on every change (default: generated in the output directory)")
	options := compileOptionsFlags(fs, a.cfg.Compile)
	fs.Parse(args)

	system.InitResourceLimits(a.log)

	path, scene, err := a.loadScene(*scenePtr)
	if err != nil {
		return err
	}
	out := *outputPtr
	if out == "" {
		out = a.outputPath(path)
	}
	opts := options()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.compileScene(ctx, scene, opts, out); err != nil {
		return err
	}
	fmt.Printf("[*] Watching %s, writing %s\n", path, out)

	return store.Watch(ctx, path, a.log, func(scene *store.Scene, err error) {
		if err != nil {
			return
		}
		if err := a.compileScene(ctx, scene, opts, out); err != nil {
			a.log.Error().Err(err).Msg("recompile failed")
		}
	})
}

// session wires an interaction session over doc with the built-in gizmos
func (a *app) session(doc *store.Document, eng *timeline.Engine) (*interaction.Session, error) {
	reg := gizmo.NewRegistry(a.log)
	if err := gizmos.RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	clock := interaction.ClockFunc(func() gizmo.TimeSnapshot {
		s := eng.Snapshot()
		return gizmo.TimeSnapshot{Time: s.Time, Duration: s.Duration, Progress: s.Progress}
	})
	return interaction.NewSession(interaction.Deps{
		Registry:  reg,
		Store:     doc,
		Bounds:    store.StaticBounds{},
		Clock:     clock,
		Validator: a.newCompiler(a.cfg.Compile),
		Snap:      a.cfg.Snap.Settings(),
		Log:       a.log,
	}), nil
}

func runGizmos(a *app, args []string) error {
	fs := flag.NewFlagSet("gizmos", flag.ExitOnError)
	scenePtr := sceneFlag(fs)
	dragPtr := fs.String("drag", "", "Drag a handle, as animation/handle")
	byPtr := fs.String("by", "0,0", "Drag distance as dx,dy in document units")
	shiftPtr := fs.Bool("shift", false, "Hold Shift during the drag (constrain)")
	altPtr := fs.Bool("alt", false, "Hold Alt during the drag (from center)")
	writePtr := fs.Bool("write", false, "Write the edited scene back to its file")
	fs.Parse(args)

	path, scene, err := a.loadScene(*scenePtr)
	if err != nil {
		return err
	}
	doc := store.NewDocument(scene, a.log)
	eng := timeline.NewEngine(timeline.NewManualScheduler(time.Now()), a.log)
	defer eng.Dispose()
	eng.Load(scene.Elements, scene.Animations)

	sess, err := a.session(doc, eng)
	if err != nil {
		return err
	}

	if *dragPtr != "" {
		animID, handleID, ok := strings.Cut(*dragPtr, "/")
		if !ok {
			return fmt.Errorf("-drag wants animation/handle, got %q", *dragPtr)
		}
		by, err := parsePoint(*byPtr)
		if err != nil {
			return fmt.Errorf("-by: %w", err)
		}
		if err := drag(sess, animID, handleID, by, gizmo.Modifiers{Shift: *shiftPtr, Alt: *altPtr}); err != nil {
			return err
		}
		if *writePtr {
			if err := store.WriteScene(doc.Scene(), path); err != nil {
				return err
			}
			fmt.Printf("[+++] Scene saved: %s\n", path)
		}
	}

	for _, d := range doc.Scene().Animations {
		if !sess.Activate(d.ID) {
			fmt.Printf("[ ] %s\n", compiler.Describe(&d))
			continue
		}
		st, _ := sess.State(d.ID)
		fmt.Printf("[%s] %s\n", st.DefinitionID, compiler.Describe(&d))
		for _, h := range sess.Handles(d.ID) {
			label := h.Label
			if label == "" {
				label = h.ID
			}
			fmt.Printf("      %-12s %-10s (%.1f, %.1f) %s\n", h.ID, h.Type, h.Position.X, h.Position.Y, label)
		}
	}
	return nil
}

// drag replays one pointer gesture: press on the handle, move by in a few
// steps, release
func drag(sess *interaction.Session, animID, handleID string, by geom.Point, mods gizmo.Modifiers) error {
	if !sess.Activate(animID) {
		return fmt.Errorf("animation %q has no gizmo", animID)
	}
	var start geom.Point
	found := false
	for _, h := range sess.Handles(animID) {
		if h.ID == handleID {
			start, found = h.Position, true
		}
	}
	if !found {
		return fmt.Errorf("animation %q has no handle %q", animID, handleID)
	}
	if !sess.StartDrag(animID, handleID, start) {
		return errors.New("drag refused")
	}
	const steps = 4
	for i := 1; i <= steps; i++ {
		k := float64(i) / steps
		sess.UpdateDrag(geom.Point{X: start.X + by.X*k, Y: start.Y + by.Y*k}, mods)
	}
	sess.EndDrag()
	return nil
}

func parsePoint(s string) (geom.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Point{}, fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geom.Point{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Point{X: x, Y: y}, nil
}
