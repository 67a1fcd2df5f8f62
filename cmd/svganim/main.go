package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivlev/svganim/internal/config"
	"github.com/ivlev/svganim/internal/system"
)

var version = "dev"

type command struct {
	name  string
	usage string
	run   func(app *app, args []string) error
}

var commands = []command{
	{"compile", "compile a scene into a standalone animated SVG", runCompile},
	{"validate", "check every animation of a scene", runValidate},
	{"state", "print the element states of a scene at one moment", runState},
	{"play", "run the playback engine in real time and log its progress", runPlay},
	{"watch", "recompile a scene whenever its file changes", runWatch},
	{"gizmos", "list the gizmo and handles each animation edits with", runGizmos},
}

// app is what every subcommand shares
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "svganim %s\n\nUsage: svganim [flags] <command> [command flags]\n\nCommands:\n", version)
	for _, c := range commands {
		fmt.Fprintf(out, "  %-9s %s\n", c.name, c.usage)
	}
	fmt.Fprintln(out, "\nFlags:")
	flag.PrintDefaults()
}

func main() {
	configPtr := flag.String("config", "", "Path to a YAML or TOML config (default: built-in settings)")
	statsPtr := flag.Bool("stats", false, "Print a resource report on exit")
	verbosePtr := flag.Bool("v", false, "Debug logging")
	flag.Usage = usage
	flag.Parse()

	start := time.Now()

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[-] Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.BuildVersion = version
	cfg.Verbose = cfg.Verbose || *verbosePtr
	cfg.ShowStats = cfg.ShowStats || *statsPtr

	log := system.NewLogger(os.Stderr, cfg.Verbose)

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	name := flag.Arg(0)
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(os.Stderr, "[-] Unknown command %q\n\n", name)
		usage()
		os.Exit(2)
	}

	err := cmd.run(&app{cfg: cfg, log: log}, flag.Args()[1:])

	if cfg.ShowStats {
		stats, serr := system.CollectStats(start)
		if serr != nil {
			log.Warn().Err(serr).Msg("cannot collect process stats")
		}
		fmt.Fprint(os.Stderr, stats.String())
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "[-] Error: %v\n", err)
		os.Exit(1)
	}
}
