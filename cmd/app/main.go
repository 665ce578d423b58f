package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"mython/internal/interp"
	"mython/internal/repl"
	"mython/internal/util"
)

var (
	// Version is the current version of the mython binary.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"

	help    bool
	version bool
	// logging
	logLevel string
	logFile  string
	// runtime config
	configPath string
	replMode   bool
	plainRepl  bool
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configPath, "config", "", "Path to a TOML configuration file")
	flag.BoolVar(&replMode, "repl", false, "Start the interactive REPL")
	flag.BoolVar(&plainRepl, "plain", false, "Use the plain line-oriented REPL instead of the TUI")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	config, err := util.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config '%s': %v\n", configPath, err)
		os.Exit(1)
	}
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit
	// flags win over the config file
	if logLevel != "" {
		config.LogLevel = logLevel
	}
	if logFile != "" {
		config.LogFile = logFile
	}
	if plainRepl {
		config.PlainREPL = true
	}

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	slog.SetDefault(slog.New(slog.NewJSONHandler(logWriter, loggerOptions)))

	if version {
		printVersion()
		return
	}
	if help {
		printHelp()
		return
	}

	fileName := flag.Arg(0)
	if fileName == "" || replMode {
		runRepl(config)
		return
	}

	f, err := os.Open(fileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", fileName, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := interp.Run(f, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runRepl(config util.Configuration) {
	var err error
	if config.PlainREPL {
		err = repl.RunPlain(config.Version, config.HistoryFile)
	} else {
		err = repl.RunTUI(config.Version)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configureLogWriter(logFile string) *os.File {
	if logFile == "" {
		return os.Stderr
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	logWriter, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("mython version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: mython [options] [filename]

Options:
  -config <path>     Path to a TOML configuration file.
  -repl              Start the interactive REPL (default when no file is given).
  -plain             Use the plain line-oriented REPL instead of the TUI.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
This is the Mython programming language.

Examples:
  mython myfile.my              Execute the provided Mython file
  mython                        Start the REPL
  mython -plain                 Start the REPL without the TUI

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
