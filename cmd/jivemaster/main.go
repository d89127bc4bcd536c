// Command jivemaster is the CLI entry point wiring the core pipeline
// (internal/pipeline) to real files on disk: internal/loaders for decode,
// internal/saver for encode, internal/cache for the reference-statistics
// cache and internal/ui for progress, exactly the dependency-injection
// shape spec.md §6 asks of a "process()" consumer. Structured the way the
// teacher's cmd/jivefire/main.go parses flags with kong and drives a
// bubbletea program, generalized from a two-pass visualiser CLI to a
// single-pass mastering CLI.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/jivemaster/internal/cache"
	"github.com/linuxmatters/jivemaster/internal/cli"
	"github.com/linuxmatters/jivemaster/internal/config"
	"github.com/linuxmatters/jivemaster/internal/loaders"
	"github.com/linuxmatters/jivemaster/internal/pipeline"
	"github.com/linuxmatters/jivemaster/internal/saver"
	"github.com/linuxmatters/jivemaster/internal/ui"
)

const version = "0.1.0"

var CLI struct {
	Target    string `arg:"" name:"target" help:"TARGET audio file to master (WAV/FLAC/MP3)" type:"existingfile" optional:""`
	Reference string `arg:"" name:"reference" help:"REFERENCE audio file to match against" type:"existingfile" optional:""`
	Output    string `arg:"" name:"output" help:"Mastered output WAV file path" optional:""`

	BitDepth  string  `help:"Output sample format: pcm16, pcm24 or float32" enum:"pcm16,pcm24,float32" default:"pcm16"`
	NoLimiter bool    `help:"Skip the brickwall limiter for the output"`
	Normalize bool    `help:"Normalize the output peak to the limiter ceiling"`
	Preview   bool    `help:"Write a short excerpt instead of the full master"`
	Result    []string `help:"Additional output variant as path[:bitdepth][:nolimiter][:normalize][:preview], repeatable" name:"result"`

	CacheDir     string  `help:"Directory for the reference-statistics cache (empty disables caching)" default:""`
	Workers      int     `help:"Worker pool size for parallel analysis (0 = GOMAXPROCS)" default:"0"`
	FFTSize      int     `help:"FFT size / FIR length, must be a power of two" default:"32768"`
	PieceSeconds float64 `help:"Analysis piece length in seconds" default:"15"`
	NoUI         bool    `help:"Disable the interactive progress console"`

	Version bool `help:"Show version information" short:"v"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("jivemaster"),
		kong.Description("Match a TARGET recording's level and tone to a REFERENCE, then brickwall-limit the result."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if CLI.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if CLI.Target == "" || CLI.Reference == "" || CLI.Output == "" {
		cli.PrintError("<target>, <reference> and <output> are required")
		os.Exit(1)
	}

	cfg := buildConfig()
	results, err := buildResults(cfg)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	var refCache *cache.Cache
	if CLI.CacheDir != "" {
		refCache, err = cache.Open(CLI.CacheDir)
		if err != nil {
			cli.PrintWarning(fmt.Sprintf("cache unavailable, continuing without it: %v", err))
			refCache = nil
		} else {
			defer refCache.Close()
		}
	}

	deps := pipeline.Dependencies{
		Loader:    loaders.Open{},
		Resampler: loaders.WindowedSinc{},
		Saver:     saver.WAV{},
		Cache:     refCache,
	}

	if CLI.NoUI {
		runHeadless(cfg, results, deps)
		return
	}
	runInteractive(cfg, results, deps)
}

func buildConfig() config.Config {
	cfg := config.DefaultConfig()
	if CLI.FFTSize > 0 {
		cfg.FFTSize = CLI.FFTSize
	}
	if CLI.PieceSeconds > 0 {
		cfg.PieceSizeSeconds = CLI.PieceSeconds
	}
	cfg.Workers = CLI.Workers
	cfg.TempFolder = CLI.CacheDir
	return cfg
}

func buildResults(cfg config.Config) ([]pipeline.ResultSpec, error) {
	bitDepth, err := parseBitDepth(CLI.BitDepth)
	if err != nil {
		return nil, err
	}

	results := []pipeline.ResultSpec{{
		Path:       CLI.Output,
		BitDepth:   bitDepth,
		UseLimiter: !CLI.NoLimiter,
		Normalize:  CLI.Normalize,
		Preview:    CLI.Preview,
	}}

	for _, spec := range CLI.Result {
		rs, err := parseResultSpec(spec)
		if err != nil {
			return nil, err
		}
		results = append(results, rs)
	}
	return results, nil
}

// parseResultSpec parses "path[:bitdepth][:nolimiter][:normalize][:preview]",
// the compact format of the repeatable --result flag, which requests the
// multiple simultaneous output variants of a single run (SPEC_FULL.md §9).
func parseResultSpec(spec string) (pipeline.ResultSpec, error) {
	parts := strings.Split(spec, ":")
	if len(parts) == 0 || parts[0] == "" {
		return pipeline.ResultSpec{}, fmt.Errorf("--result %q: missing path", spec)
	}
	rs := pipeline.ResultSpec{Path: parts[0], BitDepth: pipeline.PCM16, UseLimiter: true}
	for _, opt := range parts[1:] {
		switch strings.ToLower(opt) {
		case "nolimiter":
			rs.UseLimiter = false
		case "normalize":
			rs.Normalize = true
		case "preview":
			rs.Preview = true
		default:
			bd, err := parseBitDepth(opt)
			if err != nil {
				return pipeline.ResultSpec{}, fmt.Errorf("--result %q: %w", spec, err)
			}
			rs.BitDepth = bd
		}
	}
	return rs, nil
}

func parseBitDepth(s string) (pipeline.BitDepth, error) {
	switch strings.ToLower(s) {
	case "pcm16", "":
		return pipeline.PCM16, nil
	case "pcm24":
		return pipeline.PCM24, nil
	case "float32":
		return pipeline.Float32, nil
	default:
		return 0, fmt.Errorf("unknown bit depth %q", s)
	}
}

func runHeadless(cfg config.Config, results []pipeline.ResultSpec, deps pipeline.Dependencies) {
	cli.PrintBanner()
	err := pipeline.Process(CLI.Target, CLI.Reference, results, cfg, deps)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
	outputs := make([]string, len(results))
	for i, r := range results {
		outputs[i] = r.Path
	}
	cli.PrintMasteringSummary("", 0, outputs)
}

func runInteractive(cfg config.Config, results []pipeline.ResultSpec, deps pipeline.Dependencies) {
	model := ui.NewModel()
	p := tea.NewProgram(model)
	deps.Sink = ui.Sink{Program: p}

	go func() {
		err := pipeline.Process(CLI.Target, CLI.Reference, results, cfg, deps)
		p.Send(ui.Done(err))
	}()

	finalModel, err := p.Run()
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
	if m, ok := finalModel.(*ui.Model); ok && m.Err() != nil {
		cli.PrintError(m.Err().Error())
		os.Exit(1)
	}
}
