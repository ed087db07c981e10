package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/flatcomp/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("flatcomp", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
FlatComp - compiles a module graph into a flat, collision-free output tree.

Usage:
  flatcomp [options] [ENTRY_PATH]

Arguments:
  ENTRY_PATH
    Path to the entry source file the traversal starts from.

Options:
`)
		flagSet.PrintDefaults()
	}

	entryFlag := flagSet.String("entry", "", "Path to the entry source file.")
	eFlag := flagSet.String("e", "", "Path to the entry source file (shorthand).")
	outDirFlag := flagSet.String("out-dir", "", "Output directory root. Defaults to the current directory.")
	portFlag := flagSet.Int("port", 0, "Port of the compile service on localhost. 0 resolves from the environment.")
	configFlag := flagSet.String("config", "", "Path to a .hcl config file or a directory of them.")
	sourceMapsFlag := flagSet.Bool("source-maps", false, "Write .js.map files next to the output.")
	watchFlag := flagSet.Bool("watch", false, "Recompile whenever a compiled file changes.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	entry := ""
	if *entryFlag != "" {
		entry = *entryFlag
	} else if *eFlag != "" {
		entry = *eFlag
	} else if flagSet.NArg() > 0 {
		entry = flagSet.Arg(0)
	}
	slog.Debug("Entry path determined.", "path", entry)

	if entry == "" {
		slog.Debug("No entry path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		EntryPath:  entry,
		ConfigPath: *configFlag,
		OutDir:     *outDirFlag,
		Port:       *portFlag,
		SourceMaps: *sourceMapsFlag,
		Watch:      *watchFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
