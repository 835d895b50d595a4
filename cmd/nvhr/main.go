// nvhr decodes NVHR configuration backups from network video recorders
// into plain text, and optionally scans the result for credentials,
// shell tokens and external URLs.
//
//	nvhr [flags] <input.bak>
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/falk/nvhr-go/pkg/config"
	"github.com/falk/nvhr-go/pkg/logger"
	"github.com/falk/nvhr-go/pkg/nvhr"
	"github.com/falk/nvhr-go/pkg/report"
	"github.com/falk/nvhr-go/pkg/scan"
)

const version = "0.3.0"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	output     string
	analyze    bool
	preview    int
	configPath string
	logLevel   string
	textMode   string
	maxPayload config.ByteSize
	noColor    bool
	repack     string
	help       bool
	version    bool
}

func newFlagSet(f *flags, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("nvhr", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&f.output, "output", "o", "", "output file for decoded config (default: input with .txt extension)")
	fs.BoolVarP(&f.analyze, "analyze", "a", false, "perform security analysis on decoded config")
	fs.IntVarP(&f.preview, "preview", "p", config.DefaultPreview, "number of characters to preview")
	fs.StringVar(&f.configPath, "config", "", "YAML config file (default: $"+config.EnvConfig+", ./nvhr.yaml, ~/.config/nvhr/config.yaml)")
	fs.StringVar(&f.logLevel, "log-level", "", "stderr log level: debug, info, warn, error")
	fs.StringVar(&f.textMode, "text-mode", "", "invalid UTF-8 handling: drop or replace")
	fs.Var(&f.maxPayload, "max-payload", "maximum decompressed size, e.g. 64MiB")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colored output")
	fs.StringVar(&f.repack, "repack", "", "also write the payload as a new NVHR container at the standard offset")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	return fs
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "Decode NVR configuration files")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: nvhr [options] <input.bak>")
	fmt.Fprintln(w)
	fmt.Fprint(w, fs.FlagUsages())
}

// applyFlags overrides cfg with flags the user set explicitly.
func applyFlags(cfg *config.Config, fs *pflag.FlagSet, f *flags) error {
	if fs.Changed("preview") {
		cfg.Preview = f.preview
	}
	if fs.Changed("analyze") {
		cfg.Analyze = f.analyze
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if fs.Changed("text-mode") {
		cfg.TextMode = f.textMode
	}
	if fs.Changed("max-payload") {
		cfg.MaxPayloadSize = f.maxPayload
	}
	if f.noColor {
		cfg.Color = false
	}
	return cfg.Validate()
}

func run(args []string, stdout, stderr io.Writer) error {
	f := flags{maxPayload: nvhr.DefaultMaxPayloadSize}
	fs := newFlagSet(&f, stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(stdout, fs)
			return nil
		}
		printUsage(stderr, fs)
		return &ExitError{Code: 2}
	}
	if f.help {
		printUsage(stdout, fs)
		return nil
	}
	if f.version {
		fmt.Fprintf(stdout, "nvhr %s\n", version)
		return nil
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "error: expected exactly one input file")
		printUsage(stderr, fs)
		return &ExitError{Code: 2}
	}
	input := fs.Arg(0)

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
	}
	cfg, cfgPath, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return &ExitError{Code: 2}
	}
	if err := applyFlags(cfg, fs, &f); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return &ExitError{Code: 2}
	}

	log := logger.New(cfg.LogLevel, stderr)
	if cfgPath != "" {
		log.Debug("config loaded", "path", cfgPath)
	}

	output := f.output
	if output == "" {
		output = nvhr.DefaultOutputPath(input)
	}

	p := report.New(stdout, cfg.Color)
	p.Start(input, output)

	res, err := decode(p, input, nvhr.Options{
		Locate:   nvhr.LocateOptions{MaxPayloadSize: int64(cfg.MaxPayloadSize)},
		TextMode: cfg.TextModeValue(),
		Logger:   log,
	})
	if err != nil {
		p.Failure(input, err)
		return &ExitError{Code: 1}
	}

	if err := nvhr.WriteText(output, res.Text); err != nil {
		p.Failure(input, err)
		return &ExitError{Code: 1}
	}
	p.Saved(output)

	if f.repack != "" {
		if err := nvhr.EncodeFile(f.repack, res.Payload.Data, nvhr.EncodeOptions{}); err != nil {
			p.Failure(input, err)
			return &ExitError{Code: 1}
		}
		p.Repacked(f.repack)
	}

	p.Preview(res.Text, cfg.Preview)

	if cfg.Analyze {
		findings := scan.Lines(res.Text)
		log.Debug("analysis complete", "findings", len(findings))
		p.Findings(findings)
	}
	return nil
}

func decode(p *report.Printer, input string, opts nvhr.Options) (*nvhr.Result, error) {
	c, err := nvhr.ReadFile(input)
	if err != nil {
		return nil, err
	}
	p.Container(c)

	res, err := nvhr.Decode(c, opts)
	if err != nil {
		return nil, err
	}
	p.Payload(res.Payload)
	return res, nil
}
