package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/fwscope/internal/dwarftree"
	"github.com/muurk/fwscope/internal/elfimage"
	"github.com/muurk/fwscope/internal/inspect"
	"github.com/muurk/fwscope/internal/logging"
	"github.com/muurk/fwscope/internal/targets"
	"github.com/muurk/fwscope/internal/ui"
	"github.com/muurk/fwscope/internal/ui/browser"
)

// loadRequest says what a command needs from the image.
type loadRequest struct {
	path string

	// target is the --target flag; useTarget is false for commands that
	// never check the memory map
	target    string
	useTarget bool

	hoistSkipped bool
}

// database returns the built-in catalog extended with configured and
// command-line target files.
func (a *app) database() (*targets.Database, error) {
	files := append(append([]string{}, a.registry.Preferences.TargetFiles...), a.targetFiles...)
	if len(files) == 0 {
		return targets.LoadDatabase()
	}
	return targets.LoadDatabaseFiles(files...)
}

// load analyzes an image and records it in the recent files list.
func (a *app) load(req loadRequest) (*inspect.Snapshot, error) {
	abs, err := filepath.Abs(req.path)
	if err != nil {
		abs = req.path
	}

	target := ""
	if req.useTarget {
		target = req.target
		if target == "" {
			target = a.registry.TargetFor(abs)
		}
	}

	db, err := a.database()
	if err != nil {
		return nil, err
	}

	policy, err := dwarftree.ParseSkippedPolicy(a.registry.Preferences.SkippedDwarfPolicy)
	if err != nil {
		logging.Warn("Ignoring configured skipped DWARF policy", zap.Error(err))
		policy = dwarftree.DiscardSkipped
	}
	if req.hoistSkipped {
		policy = dwarftree.HoistSkipped
	}

	snap, err := inspect.Load(req.path, inspect.Options{
		Target:   target,
		Database: db,
		Dwarf:    []dwarftree.Option{dwarftree.WithSkippedPolicy(policy)},
	})
	if err != nil {
		return nil, err
	}

	a.registry.TouchRecent(abs, snap.Target)
	if err := a.registry.Save(); err != nil {
		logging.Warn("Failed to save recent files", zap.Error(err))
	}
	return snap, nil
}

// header builds the banner shared by the analysis commands.
func header(title, command string, snap *inspect.Snapshot) *ui.Header {
	return ui.NewHeader(title, command).
		AddParam("Image", snap.Path).
		AddParam("Size", ui.FormatSize(uint64(snap.Size))).
		AddParam("Target", snap.Target)
}

func (a *app) segmentsCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "segments <image.elf>",
		Short: "List memory segments and memory map conflicts",
		Long: `List the allocated sections of an image sorted by address.

With a target, every segment is checked against the target's memory regions
and against the other segments. Without --target the last target used with
this image, or the configured default target, is used.`,
		Example: `  fwscope segments app.elf --target STM32F407VGTx`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			snap, err := a.load(loadRequest{path: args[0], target: target, useTarget: true})
			if err != nil {
				return a.fail(cmd, "Segment analysis failed", err)
			}

			if a.jsonOutput {
				return a.printer(cmd).PrintJSON(struct {
					Target   string                   `json:"target,omitempty"`
					Regions  []targets.MemoryRegion   `json:"regions"`
					Segments []elfimage.MemorySegment `json:"segments"`
				}{snap.Target, snap.Regions, snap.Segments})
			}

			p := a.printer(cmd)
			p.PrintHeader(header("Memory Segments", "fwscope segments "+args[0], snap))
			if snap.HasTarget() {
				p.PrintSection("Memory regions", ui.RegionsTable(snap.Regions))
			}
			p.PrintSection("Segments", ui.SegmentsTable(snap.Segments))
			a.printConflictWarning(p, snap)
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Target chip whose memory map to check against")
	return cmd
}

func (a *app) printConflictWarning(p *ui.Printer, snap *inspect.Snapshot) {
	n := 0
	for _, s := range snap.Segments {
		if len(s.Conflicts) > 0 {
			n++
		}
	}
	if n > 0 {
		p.PrintWarning("Segments conflict with the memory map",
			ui.Param{Key: "Segments", Value: strconv.Itoa(n)},
			ui.Param{Key: "Target", Value: snap.Target},
		)
	}
}

func (a *app) symbolsCmd() *cobra.Command {
	var (
		filter     string
		limit      int
		sortBy     string
		descending bool
	)

	cmd := &cobra.Command{
		Use:   "symbols <image.elf>",
		Short: "List ELF symbols",
		Long: `List the symbol table with demangled names.

--filter keeps symbols whose demangled name contains the text, ignoring
case. Symbols sort by address unless --sort says otherwise.`,
		Example: `  fwscope symbols app.elf --filter rtt
  fwscope symbols app.elf --sort size --desc --limit 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			order, err := inspect.ParseSymbolSort(sortBy)
			if err != nil {
				return a.fail(cmd, "Invalid arguments", err)
			}

			snap, err := a.load(loadRequest{path: args[0]})
			if err != nil {
				return a.fail(cmd, "Symbol listing failed", err)
			}

			symbols := inspect.QuerySymbols(snap.Symbols, inspect.SymbolQuery{
				Filter:     filter,
				Sort:       order,
				Descending: descending,
				Limit:      limit,
			})

			if a.jsonOutput {
				return a.printer(cmd).PrintJSON(symbols)
			}

			p := a.printer(cmd)
			p.PrintHeader(header("Symbols", "fwscope symbols "+args[0], snap).
				AddParam("Filter", filter).
				AddParam("Shown", fmt.Sprintf("%d of %d", len(symbols), len(snap.Symbols))))
			p.Println(ui.SymbolsTable(symbols))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Only show symbols containing this text")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many symbols (0 = all)")
	cmd.Flags().StringVar(&sortBy, "sort", "address", "Sort by address, name or size")
	cmd.Flags().BoolVar(&descending, "desc", false, "Reverse the sort order")
	return cmd
}

func (a *app) rttCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rtt <image.elf>",
		Short: "Decode the SEGGER RTT control block",
		Long: `Find the _SEGGER_RTT control block symbol and decode its buffer
descriptors from the image's initialized data.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			snap, err := a.load(loadRequest{path: args[0]})
			if err != nil {
				return a.fail(cmd, "RTT decode failed", err)
			}

			if a.jsonOutput {
				return a.printer(cmd).PrintJSON(snap.RTT)
			}

			p := a.printer(cmd)
			p.PrintHeader(header("RTT Control Block", "fwscope rtt "+args[0], snap))
			p.Println(ui.RTTView(snap.RTT))
			return nil
		},
	}
}

func (a *app) defmtCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defmt <image.elf>",
		Short: "List defmt logging sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			snap, err := a.load(loadRequest{path: args[0]})
			if err != nil {
				return a.fail(cmd, "defmt scan failed", err)
			}

			if a.jsonOutput {
				return a.printer(cmd).PrintJSON(snap.Defmt)
			}

			p := a.printer(cmd)
			p.PrintHeader(header("defmt", "fwscope defmt "+args[0], snap))
			p.Println(ui.DefmtView(snap.Defmt))
			return nil
		},
	}
}

func (a *app) dwarfCmd() *cobra.Command {
	var (
		depth        int
		attrs        bool
		interactive  bool
		hoistSkipped bool
	)

	cmd := &cobra.Command{
		Use:   "dwarf <image.elf>",
		Short: "Show the DWARF debug info tree",
		Long: `Print the debug info as a tree of compilation units, functions,
variables, types and their members.

--interactive opens a browser with an expandable tree and a detail pane
listing every attribute of the selected symbol.

By default the children of unsupported entries (such as C++ class types)
are dropped with them. --hoist-skipped lifts them into the nearest kept
ancestor instead.`,
		Example: `  fwscope dwarf app.elf --depth 2
  fwscope dwarf app.elf --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			snap, err := a.load(loadRequest{path: args[0], hoistSkipped: hoistSkipped})
			if err != nil {
				return a.fail(cmd, "Debug info load failed", err)
			}

			if a.jsonOutput {
				return a.printer(cmd).PrintJSON(struct {
					*dwarftree.Info
					Error string `json:"error,omitempty"`
				}{snap.Dwarf, errString(snap.DwarfErr)})
			}

			p := a.printer(cmd)
			if snap.DwarfErr != nil {
				p.PrintWarning("Debug info could not be read",
					ui.Param{Key: "Image", Value: snap.Path},
					ui.Param{Key: "Error", Value: snap.DwarfErr.Error()},
				)
			}

			if interactive {
				if !ui.IsTerminal() {
					return a.fail(cmd, "Interactive browser unavailable", fmt.Errorf("stdout is not a terminal"))
				}
				return browser.Run(snap.Dwarf, snap.Path)
			}

			if !cmd.Flags().Changed("depth") {
				depth = a.registry.Preferences.MaxTreeDepth
			}

			p.PrintHeader(header("Debug Info", "fwscope dwarf "+args[0], snap).
				AddParam("Units", strconv.Itoa(len(snap.Dwarf.CompileUnits))).
				AddParam("Symbols", strconv.Itoa(snap.Dwarf.TotalSymbols)))
			p.Println(ui.DwarfTree(snap.Dwarf, ui.TreeOptions{MaxDepth: depth, Attributes: attrs}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "Levels shown below each compilation unit (0 = all)")
	cmd.Flags().BoolVarP(&attrs, "attrs", "a", false, "List every DWARF attribute")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse the tree interactively")
	cmd.Flags().BoolVar(&hoistSkipped, "hoist-skipped", false, "Keep children of unsupported entries")
	return cmd
}

func (a *app) summaryCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "summary <image.elf>",
		Short: "Show every analysis of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			snap, err := a.load(loadRequest{path: args[0], target: target, useTarget: true})
			if err != nil {
				return a.fail(cmd, "Analysis failed", err)
			}

			if a.jsonOutput {
				return a.printer(cmd).PrintJSON(struct {
					*inspect.Snapshot
					Usage      []inspect.RegionUsage `json:"usage,omitempty"`
					DwarfError string                `json:"dwarf_error,omitempty"`
				}{snap, snap.Usage(), errString(snap.DwarfErr)})
			}

			p := a.printer(cmd)
			p.PrintHeader(header("Firmware Summary", "fwscope summary "+args[0], snap))
			p.PrintSection("Analysis", ui.RenderSteps(summarySteps(snap)))
			if snap.HasTarget() {
				p.PrintSection("Memory usage", ui.UsageBars(snap.Usage(), p.Width()))
			}
			p.PrintSection("Segments", ui.SegmentsTable(snap.Segments))
			if snap.RTT.Present {
				p.PrintSection("RTT", ui.RTTView(snap.RTT))
			}
			if snap.Defmt.Present {
				p.PrintSection("defmt", ui.DefmtView(snap.Defmt))
			}
			a.printConflictWarning(p, snap)
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Target chip whose memory map to check against")
	return cmd
}

// summarySteps lists each analysis pass with its outcome.
func summarySteps(snap *inspect.Snapshot) []ui.Step {
	steps := make([]ui.Step, 0, 5)

	seg := ui.Step{Name: "Segments", Status: ui.StepEmpty, Message: "none loadable"}
	if n := len(snap.Segments); n > 0 {
		seg.Status = ui.StepComplete
		seg.Message = fmt.Sprintf("%d segments", n)
		if elfimage.HasConflicts(snap.Segments) {
			seg.Status = ui.StepFailed
			seg.Message += ", conflicts"
		}
	}
	steps = append(steps, seg)

	sym := ui.Step{Name: "Symbols", Status: ui.StepEmpty}
	if n := len(snap.Symbols); n > 0 {
		sym.Status = ui.StepComplete
		sym.Message = fmt.Sprintf("%d symbols", n)
	}
	steps = append(steps, sym)

	r := ui.Step{Name: "RTT control block", Status: ui.StepEmpty}
	if snap.RTT.Present {
		r.Status = ui.StepComplete
		if snap.RTT.Address != nil {
			r.Message = ui.FormatAddress(*snap.RTT.Address)
		}
	}
	steps = append(steps, r)

	d := ui.Step{Name: "defmt", Status: ui.StepEmpty}
	if snap.Defmt.Present {
		d.Status = ui.StepComplete
		d.Message = ui.FormatSize(snap.Defmt.TotalSize())
	}
	steps = append(steps, d)

	dw := ui.Step{Name: "Debug info", Status: ui.StepEmpty}
	switch {
	case snap.DwarfErr != nil:
		dw.Status = ui.StepFailed
		dw.Message = "unreadable"
	case snap.Dwarf.Present:
		dw.Status = ui.StepComplete
		dw.Message = fmt.Sprintf("%d units, %d symbols", len(snap.Dwarf.CompileUnits), snap.Dwarf.TotalSymbols)
	}
	steps = append(steps, dw)

	return steps
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
