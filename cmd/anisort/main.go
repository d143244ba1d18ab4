// Command anisort identifies anime episode files by their ed2k hash
// against AniDB and sorts them into a per-series library layout.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Baughn/anidb-rs/pkg/anidb"
	"github.com/Baughn/anidb-rs/pkg/anisort"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

var opt struct {
	DryRun  bool
	Setup   bool
	Metrics bool
	Config  string
	Cache   string
	LogFile string
	Verbose bool
	Help    bool
}

const serverAddr = "api.anidb.net:9000"

func init() {
	pflag.BoolVarP(&opt.DryRun, "dry-run", "n", false, "Print intended moves without touching any files")
	pflag.BoolVar(&opt.Setup, "setup", false, "Interactively (re)create the config file and exit")
	pflag.BoolVar(&opt.Metrics, "metrics", false, "Print Prometheus-format metrics to stderr on exit")
	pflag.StringVar(&opt.Config, "config", "", "Path to config.ini (default: OS config dir)")
	pflag.StringVar(&opt.Cache, "cache", "", "Path to the reply cache directory (default: OS cache dir)")
	pflag.StringVar(&opt.LogFile, "log-file", "", "Write JSON logs to this file in addition to stderr")
	pflag.BoolVarP(&opt.Verbose, "verbose", "v", false, "Enable debug-level logging")
	pflag.BoolVarP(&opt.Help, "help", "h", false, "Show this help text")
}

func main() {
	pflag.Parse()

	if opt.Help {
		fmt.Printf("usage: %s [options] path...\n\noptions:\n%s", os.Args[0], pflag.CommandLine.FlagUsages())
		os.Exit(2)
	}

	log := newLogger()

	configPath, cacheDir, err := resolvePaths()
	if err != nil {
		log.Error().Err(err).Msg("resolving app directories")
		os.Exit(2)
	}

	if opt.Setup {
		if _, err := anisort.RunSetup(configPath); err != nil {
			log.Error().Err(err).Msg("setup failed")
			os.Exit(2)
		}
		fmt.Printf("Config written to %s\n", configPath)
		os.Exit(0)
	}

	if pflag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [options] path...\n\noptions:\n%s", os.Args[0], pflag.CommandLine.FlagUsages())
		os.Exit(2)
	}

	cfg, err := anisort.LoadConfig(configPath)
	if err != nil {
		if errors.Is(err, anisort.ErrConfigTemplateCreated) {
			fmt.Printf("Config template created at %s; fill it in and rerun.\n", configPath)
			os.Exit(2)
		}
		log.Error().Err(err).Msg("loading config")
		os.Exit(2)
	}

	client, err := anidb.New(serverAddr, cacheDir, log)
	if err != nil {
		log.Error().Err(err).Msg("creating anidb client")
		os.Exit(2)
	}
	defer client.Close()

	if opt.Metrics {
		defer client.WritePrometheus(os.Stderr)
	}

	if err := client.Login(cfg.User, cfg.Password); err != nil {
		log.Error().Err(err).Msg("login")
		os.Exit(2)
	}
	defer client.Logout()

	failed, err := anisort.Run(client, cfg.Target, pflag.Args(), opt.DryRun, log)
	exitCode := 0
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		exitCode = 2
	} else if failed > 0 {
		log.Warn().Int("failed", failed).Msg("batch completed with per-file errors")
		exitCode = 1
	}
	if exitCode != 0 {
		// os.Exit skips deferred calls, so run them here.
		client.Logout()
		if opt.Metrics {
			client.WritePrometheus(os.Stderr)
		}
		client.Close()
		os.Exit(exitCode)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if opt.Verbose {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	var w zerolog.LevelWriter = zerolog.MultiLevelWriter(console)

	if opt.LogFile != "" {
		f, err := os.OpenFile(opt.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v\n", opt.LogFile, err)
		} else {
			w = zerolog.MultiLevelWriter(console, f)
		}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func resolvePaths() (configPath, cacheDir string, err error) {
	configPath = opt.Config
	if configPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", "", err
		}
		configPath = filepath.Join(dir, "anisort", "config.ini")
	}

	cacheDir = opt.Cache
	if cacheDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return "", "", err
		}
		cacheDir = filepath.Join(dir, "anisort")
	}

	return configPath, cacheDir, nil
}
