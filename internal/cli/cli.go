package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ConnectedSystems/openwater/internal/app"
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

// Parse processes command-line arguments. It returns a populated app
// config, a boolean indicating if the program should exit cleanly, or an
// ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("openwater", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
openwater - A template-based catchment simulation engine.

Usage:
  openwater [options] [SCENARIO_PATH]

Arguments:
  SCENARIO_PATH
    Path to a single .hcl scenario file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	scenarioFlag := flagSet.String("scenario", "", "Path to the scenario file or directory.")
	sFlag := flagSet.String("s", "", "Path to the scenario file or directory (shorthand).")
	statusPortFlag := flagSet.Int("status-port", 0, "Port for the HTTP status server exposing /health and /metrics. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 0, "Number of concurrent workers per stage. 0 uses all CPUs.")
	timestepsFlag := flagSet.Int("timesteps", 0, "Override the scenario's timestep count. 0 uses the run block.")
	planOnlyFlag := flagSet.Bool("plan-only", false, "Assemble the graph and print the stage plan without executing.")
	progressFlag := flagSet.Bool("progress", false, "Render a progress bar during execution.")
	traceExporterFlag := flagSet.String("trace-exporter", "none", "Trace exporter. Options: 'none', 'stdout', or 'otlp'.")
	traceEndpointFlag := flagSet.String("trace-endpoint", "", "OTLP collector endpoint for the otlp exporter.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *scenarioFlag != "" {
		path = *scenarioFlag
	} else if *sFlag != "" {
		path = *sFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Scenario path determined.", "path", path)

	if path == "" {
		slog.Debug("No scenario path provided, printing usage and exiting.")
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

	traceExporter := strings.ToLower(*traceExporterFlag)
	switch traceExporter {
	case "none", "stdout", "otlp":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid trace-exporter: must be 'none', 'stdout', or 'otlp'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ScenarioPath:  path,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
		StatusPort:    *statusPortFlag,
		Workers:       *workersFlag,
		Timesteps:     *timestepsFlag,
		PlanOnly:      *planOnlyFlag,
		Progress:      *progressFlag,
		TraceExporter: traceExporter,
		TraceEndpoint: *traceEndpointFlag,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
