package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/fwscope/internal/config"
	"github.com/muurk/fwscope/internal/dwarftree"
	"github.com/muurk/fwscope/internal/logging"
	"github.com/muurk/fwscope/internal/targets"
	"github.com/muurk/fwscope/internal/ui"
)

// targetView is the JSON form of a catalog target.
type targetView struct {
	Name    string                 `json:"name"`
	Family  string                 `json:"family,omitempty"`
	Core    string                 `json:"core,omitempty"`
	Regions []targets.MemoryRegion `json:"regions"`
}

func (a *app) targetsCmd() *cobra.Command {
	var (
		search string
		show   string
	)

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "List known target chips",
		Long: `List the targets in the catalog, including any added with
--targets-file or the target_files configuration setting.`,
		Example: `  fwscope targets --search stm32f4
  fwscope targets --show nRF52840_xxAA`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			db, err := a.database()
			if err != nil {
				return a.fail(cmd, "Target catalog failed to load", err)
			}

			if show != "" {
				return a.showTarget(cmd, db, show)
			}

			names := db.Search(search)
			list := make([]*targets.Target, 0, len(names))
			for _, name := range names {
				if t, ok := db.Get(name); ok {
					list = append(list, t)
				}
			}

			if a.jsonOutput {
				views := make([]targetView, 0, len(list))
				for _, t := range list {
					regions, _ := db.Lookup(t.Name)
					views = append(views, targetView{Name: t.Name, Family: t.Family, Core: t.Core, Regions: regions})
				}
				return a.printer(cmd).PrintJSON(views)
			}

			p := a.printer(cmd)
			p.PrintHeader(ui.NewHeader("Targets", "fwscope targets").
				AddParam("Search", search).
				AddParam("Shown", fmt.Sprintf("%d of %d", len(list), db.Count())))
			if len(list) == 0 {
				p.Println(ui.StepPendingStyle.Render("No matching targets"))
				return nil
			}
			p.Println(ui.TargetsTable(list))
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only list targets whose name contains this text")
	cmd.Flags().StringVar(&show, "show", "", "Show the memory map of one target")
	return cmd
}

func (a *app) showTarget(cmd *cobra.Command, db *targets.Database, name string) error {
	regions, err := db.Lookup(name)
	if err != nil {
		return a.fail(cmd, "Target lookup failed", err)
	}
	t, _ := db.Get(name)

	if a.jsonOutput {
		return a.printer(cmd).PrintJSON(targetView{Name: t.Name, Family: t.Family, Core: t.Core, Regions: regions})
	}

	p := a.printer(cmd)
	p.PrintHeader(ui.NewHeader(t.Name, "fwscope targets --show "+name).
		AddParam("Family", t.Family).
		AddParam("Core", t.Core))
	p.Println(ui.RegionsTable(regions))
	return nil
}

// settings are the preferences `fwscope config set` accepts.
var settings = []string{"default_target", "log_level", "skipped_dwarf_policy", "max_tree_depth", "max_recent"}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change preferences",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the configuration and recent images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonOutput {
				return a.printer(cmd).PrintJSON(a.registry)
			}

			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			prefs := a.registry.Preferences

			p := a.printer(cmd)
			p.PrintHeader(ui.NewHeader("Configuration", "fwscope config show").
				AddParam("File", path))
			p.PrintSection("Preferences", strings.Join([]string{
				setting("default_target", prefs.DefaultTarget),
				setting("target_files", strings.Join(prefs.TargetFiles, ", ")),
				setting("log_level", prefs.LogLevel),
				setting("skipped_dwarf_policy", prefs.SkippedDwarfPolicy),
				setting("max_tree_depth", strconv.Itoa(prefs.MaxTreeDepth)),
				setting("max_recent", strconv.Itoa(prefs.MaxRecent)),
			}, "\n"))

			recent := a.registry.RecentPaths()
			if len(recent) == 0 {
				return nil
			}
			lines := make([]string, 0, len(recent))
			for _, path := range recent {
				r := a.registry.GetRecent(path)
				line := "  " + r.LastOpened.Format("2006-01-02 15:04") + "  " + path
				if r.Target != "" {
					line += ui.StepNoteStyle.Render("  (" + r.Target + ")")
				}
				lines = append(lines, line)
			}
			p.PrintSection("Recent images", strings.Join(lines, "\n"))
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a preference",
		Long: `Change a preference and save the configuration.

Keys: ` + strings.Join(settings, ", ") + `

An empty value resets default_target and log_level.`,
		Example: `  fwscope config set default_target STM32F407VGTx
  fwscope config set skipped_dwarf_policy hoist`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			if err := a.applySetting(args[0], args[1]); err != nil {
				return a.fail(cmd, "Invalid setting", err)
			}
			if err := a.registry.Save(); err != nil {
				return a.fail(cmd, "Failed to save configuration", err)
			}

			if !a.jsonOutput {
				a.printer(cmd).PrintSuccess("Preference saved", ui.Param{Key: args[0], Value: args[1]})
			}
			return nil
		},
	}

	addTargets := &cobra.Command{
		Use:   "add-targets-file <file.yaml>",
		Short: "Load a target catalog file on every run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			extra, err := targets.LoadDatabaseFiles(args[0])
			if err != nil {
				return a.fail(cmd, "Target file rejected", err)
			}
			prefs := a.registry.Preferences
			for _, f := range prefs.TargetFiles {
				if f == args[0] {
					return nil
				}
			}
			prefs.TargetFiles = append(prefs.TargetFiles, args[0])
			if err := a.registry.Save(); err != nil {
				return a.fail(cmd, "Failed to save configuration", err)
			}

			if !a.jsonOutput {
				a.printer(cmd).PrintSuccess("Target file added",
					ui.Param{Key: "File", Value: args[0]},
					ui.Param{Key: "Targets", Value: strconv.Itoa(extra.Count())},
				)
			}
			return nil
		},
	}

	cmd.AddCommand(show, set, addTargets)
	return cmd
}

func setting(key, value string) string {
	if value == "" {
		value = "-"
	}
	return ui.AttributeKeyStyle.Render(fmt.Sprintf("  %-22s", key)) + value
}

// applySetting validates and stores one preference.
func (a *app) applySetting(key, value string) error {
	prefs := a.registry.Preferences

	switch key {
	case "default_target":
		if value != "" {
			db, err := a.database()
			if err != nil {
				return err
			}
			if _, err := db.Lookup(value); err != nil {
				return err
			}
			t, _ := db.Get(value)
			value = t.Name
		}
		prefs.DefaultTarget = value

	case "log_level":
		if value != "" {
			if _, err := logging.ParseLevel(value); err != nil {
				return err
			}
		}
		prefs.LogLevel = value

	case "skipped_dwarf_policy":
		policy, err := dwarftree.ParseSkippedPolicy(value)
		if err != nil {
			return err
		}
		prefs.SkippedDwarfPolicy = policy.String()

	case "max_tree_depth", "max_recent":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative number, got %q", key, value)
		}
		if key == "max_tree_depth" {
			prefs.MaxTreeDepth = n
		} else {
			prefs.MaxRecent = n
		}

	default:
		return &unknownSettingError{Key: key}
	}
	return nil
}

type unknownSettingError struct {
	Key string
}

func (e *unknownSettingError) Error() string {
	return fmt.Sprintf("unknown setting %q (valid: %s)", e.Key, strings.Join(settings, ", "))
}

// isUnknownSetting reports whether err names a preference that does not exist.
func isUnknownSetting(err error) bool {
	var target *unknownSettingError
	return errors.As(err, &target)
}
