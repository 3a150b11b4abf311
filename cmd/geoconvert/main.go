// Command geoconvert converts Geocat legacy instrument output files into
// CF-compliant NetCDF files.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/evas-ssec/geo-converter/converter"
)

const version = "0.1"

var (
	outDir      string
	recurse     bool
	verbosity   int
	debug       bool
	showVersion bool
	configPath  string
	existing    string
)

var rootCmd = &cobra.Command{
	Use:   "geoconvert [flags] file_or_directory ...",
	Short: "convert Geocat output files to CF-compliant NetCDF",
	Long: `geoconvert converts satellite-instrument output files written in the
legacy Geocat container format into CF-compliant NetCDF files.  Each
input file is converted independently; a failure in one file never stops
the rest of the batch.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&outDir, "out", "o", ".", "directory to write output files into (created if absent)")
	f.BoolVarP(&recurse, "dirs", "d", false, "search the given directories recursively for input files")
	f.CountVarP(&verbosity, "verbose", "v", "each use raises the logging level (error, warn, info, debug)")
	f.BoolVar(&debug, "debug", false, "log at debug level")
	f.BoolVarP(&showVersion, "version", "n", false, "print the program version and exit")
	f.StringVarP(&configPath, "config", "c", "", "TOML file with conversion options")
	f.StringVar(&existing, "existing", "", `policy when an output file already exists: "overwrite" or "skip"`)
}

func run(cmd *cobra.Command, args []string) error {
	if showVersion {
		fmt.Fprintf(cmd.OutOrStdout(), "geoconvert version %s\n", version)
		return nil
	}

	setupLogging()

	cfg := converter.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = converter.LoadConfig(configPath)
		if err != nil {
			return err
		}
	}
	if existing != "" {
		cfg.ExistingOutput = converter.ExistingOutputPolicy(existing)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	conv := converter.New(cfg)
	inputs := conv.CollectInputs(args, recurse)
	status := conv.ConvertAll(outDir, inputs)
	if status != converter.StatusOK {
		os.Exit(status.ExitCode())
	}
	return nil
}

// setupLogging maps repeated -v flags onto logrus levels.  --debug is a
// shortcut for full verbosity.
func setupLogging() {
	level := logrus.ErrorLevel
	switch {
	case debug || verbosity >= 3:
		level = logrus.DebugLevel
	case verbosity == 2:
		level = logrus.InfoLevel
	case verbosity == 1:
		level = logrus.WarnLevel
	}
	logrus.SetLevel(level)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
