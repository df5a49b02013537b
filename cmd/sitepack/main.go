package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"sitepack/internal/build"
	"sitepack/internal/config"
	"sitepack/internal/demo"
	"sitepack/internal/export"
	appLog "sitepack/internal/log"
	"sitepack/internal/mode"
	"sitepack/internal/server"
	"sitepack/internal/snapshot"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	serve      bool
	snapshot   bool
	exportICS  string
	genDemo    bool
	demoRule   string
	demoStart  string
	demoOut    string
	verbose    bool
}

func main() {
	flags, token := parseFlags()

	if flags.verbose {
		appLog.SetDebug()
	}
	defer appLog.Sync()

	appLog.Info("sitepack starting", "version", "0.1.0", "mode", tokenOrDefault(token))

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// All relative paths in the config resolve against the config file's
	// directory, so a checkout builds from anywhere.
	baseDir := filepath.Dir(flags.configPath)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.genDemo {
		if err := runGenDemo(flags, conf, baseDir); err != nil {
			appLog.Error("demo generation failed", err)
			os.Exit(1)
		}
		return
	}

	opts := build.Options{
		BaseDir: baseDir,
		Config:  conf,
		Token:   token,
	}

	if flags.serve {
		if err := server.New(opts).Run(ctx); err != nil {
			appLog.Error("preview server failed", err)
			os.Exit(1)
		}
		return
	}

	res, err := build.Run(opts)
	if err != nil {
		appLog.Error("build failed", err, "mode", tokenOrDefault(token))
		os.Exit(1)
	}

	icsPath := flags.exportICS
	if icsPath == "" {
		icsPath = conf.ExportICS
	}
	if icsPath != "" {
		if !filepath.IsAbs(icsPath) {
			icsPath = filepath.Join(baseDir, icsPath)
		}
		if _, err := export.WriteICS(icsPath, res.Inputs.Events); err != nil {
			appLog.Error("ics export failed", err, "path", icsPath)
			os.Exit(1)
		}
	}

	if flags.snapshot {
		out := conf.Snapshot.Output
		if !filepath.IsAbs(out) {
			out = filepath.Join(baseDir, out)
		}
		err := snapshot.Capture(ctx, snapshot.Options{
			ArtifactPath: res.Summary.Path,
			OutputPath:   out,
			Width:        conf.Snapshot.Width,
			Height:       conf.Snapshot.Height,
			Timeout:      time.Duration(conf.Snapshot.TimeoutSec) * time.Second,
		})
		if err != nil {
			appLog.Error("snapshot failed", err, "artifact", res.Summary.Path)
			os.Exit(1)
		}
		appLog.Info("snapshot written", "path", out)
	}
}

func runGenDemo(flags flagConfig, conf *config.Config, baseDir string) error {
	start, err := time.Parse(time.RFC3339, flags.demoStart)
	if err != nil {
		return err
	}

	records, err := demo.Generate(demo.Options{
		Rule:     flags.demoRule,
		Start:    start,
		Title:    "Demo event",
		Location: "Demo venue",
	})
	if err != nil {
		return err
	}

	out := flags.demoOut
	if out == "" {
		out = conf.Data.DemoEvents
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(baseDir, out)
	}

	return demo.WriteDocument(out, records)
}

func parseFlags() (flagConfig, string) {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "sitepack.yaml", "Path to tool config file")
	flag.BoolVar(&cfg.serve, "serve", false, "Run the preview server (rebuilds on schedule and on change)")
	flag.BoolVar(&cfg.snapshot, "snapshot", false, "Render a PNG snapshot of the built artifact")
	flag.StringVar(&cfg.exportICS, "export-ics", "", "Write an iCalendar export of the resolved events to this path")
	flag.BoolVar(&cfg.genDemo, "gen-demo", false, "Generate the demo event catalogue and exit")
	flag.StringVar(&cfg.demoRule, "demo-rule", "FREQ=WEEKLY;BYDAY=SA", "Recurrence rule for -gen-demo")
	flag.StringVar(&cfg.demoStart, "demo-start", "", "First occurrence (RFC3339) for -gen-demo")
	flag.StringVar(&cfg.demoOut, "demo-out", "", "Output path for -gen-demo (default: demo_events from config)")
	flag.BoolVar(&cfg.verbose, "v", false, "Enable debug logging")

	flag.Parse()

	// One optional positional argument selects the mode token.
	return cfg, flag.Arg(0)
}

func tokenOrDefault(token string) string {
	if token == "" {
		return mode.DefaultToken
	}
	return token
}
