// Fwscope inspects compiled firmware images.
//
// It reads an ELF file and reports its memory layout checked against a
// target's memory map, its symbol table, the SEGGER RTT control block, defmt
// logging sections and a browsable tree of its DWARF debug info.
//
// Usage:
//
//	fwscope [command] <image.elf> [flags]
//
// See 'fwscope --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/fwscope/internal/config"
	"github.com/muurk/fwscope/internal/logging"
	"github.com/muurk/fwscope/internal/ui"
	"github.com/muurk/fwscope/internal/version"
)

func main() {
	err := newRootCmd().Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every command shares: global flags and the loaded
// configuration.
type app struct {
	jsonOutput  bool
	targetFiles []string
	logLevel    string

	registry *config.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "fwscope",
		Short: "Firmware image inspector",
		Long: `Inspect compiled firmware images (ELF).

fwscope reports:
  - Memory segments and conflicts with a target's memory map
  - The ELF symbol table, demangled
  - The SEGGER RTT control block and its channels
  - defmt logging sections
  - The DWARF debug info as a tree, printed or browsed interactively

Targets come from a built-in catalog, extended with --targets-file.
The last target used with each image is remembered.`,
		Version: version.Full(),
		Example: `  # Check the layout against a chip's memory map
  fwscope segments app.elf --target STM32F407VGTx

  # Everything at once
  fwscope summary app.elf

  # Browse the debug info
  fwscope dwarf app.elf --interactive`,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Print machine-readable JSON")
	rootCmd.PersistentFlags().StringArrayVar(&a.targetFiles, "targets-file", nil, "Extra target catalog YAML file (repeatable)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error (default silent)")

	rootCmd.AddCommand(
		a.segmentsCmd(),
		a.symbolsCmd(),
		a.rttCmd(),
		a.defmtCmd(),
		a.dwarfCmd(),
		a.summaryCmd(),
		a.targetsCmd(),
		a.configCmd(),
		a.versionCmd(),
	)

	return rootCmd
}

// setup initializes logging and loads the configuration. The --log-level
// flag wins over FWSCOPE_LOG_LEVEL, which wins over the configured level.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	registry, regErr := config.LoadRegistry()
	if regErr != nil {
		registry = config.NewRegistry()
	}
	a.registry = registry

	level := a.logLevel
	if level == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
		level = registry.Preferences.LogLevel
	}
	if err := logging.Initialize(level); err != nil {
		return err
	}

	if regErr != nil {
		logging.Warn("Ignoring unreadable configuration", zap.Error(regErr))
	}
	return nil
}

// printer writes styled output to the command's stdout.
func (a *app) printer(cmd *cobra.Command) *ui.Printer {
	return ui.NewPrinter(cmd.OutOrStdout())
}

// fail prints a failure box with hints for err and returns it. JSON mode
// leaves the box out so stdout stays parseable.
func (a *app) fail(cmd *cobra.Command, title string, err error) error {
	if !a.jsonOutput {
		ui.NewPrinter(cmd.ErrOrStderr()).PrintError(title, err, troubleshooting(err))
	}
	return err
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonOutput {
				return a.printer(cmd).PrintJSON(version.Get())
			}
			info := version.Get()
			a.printer(cmd).Println(fmt.Sprintf("fwscope %s (commit: %s, %s, %s)",
				info.Version, info.Commit, info.GoVersion, info.Platform))
			return nil
		},
	}
}
