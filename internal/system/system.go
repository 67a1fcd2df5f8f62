package system

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"
)

// NewLogger builds the CLI logger: a console writer on w, debug level when
// verbose. Colors only go to terminals.
func NewLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: noColor}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// InitResourceLimits raises the open-file limit; watch mode holds a
// descriptor per watched directory
func InitResourceLimits(log zerolog.Logger) {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Warn().Err(err).Msg("cannot read open file limit")
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Warn().Err(err).Msg("cannot raise open file limit")
	} else {
		log.Debug().Uint64("limit", uint64(rLimit.Cur)).Msg("open file limit raised")
	}
}

// FindLatest returns the most recently modified file in dir with one of the
// given extensions
func FindLatest(dir string, extensions ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), extensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files found in %s", strings.Join(extensions, "/"), dir)
	}

	return latestFile, nil
}

func hasExtension(name string, extensions []string) bool {
	name = strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Stats is the resource report printed by -stats
type Stats struct {
	Elapsed    time.Duration
	RSS        uint64 // bytes
	CPUPercent float64
	Threads    int32
}

// CollectStats samples the current process
func CollectStats(start time.Time) (Stats, error) {
	s := Stats{Elapsed: time.Since(start)}
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return s, err
	}
	if mem, err := p.MemoryInfo(); err == nil {
		s.RSS = mem.RSS
	}
	if cpu, err := p.CPUPercent(); err == nil {
		s.CPUPercent = cpu
	}
	if n, err := p.NumThreads(); err == nil {
		s.Threads = n
	}
	return s, nil
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Total Time: %.2fs\n"+
			"Memory (RSS): %.1f MiB\n"+
			"CPU: %.1f%%\n"+
			"Threads: %d\n"+
			"----------------------------\n",
		s.Elapsed.Seconds(), float64(s.RSS)/(1<<20), s.CPUPercent, s.Threads,
	)
}
