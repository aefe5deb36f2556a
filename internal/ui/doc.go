// Package ui provides terminal output components for the fwscope CLI.
//
// Components are rendered with Lipgloss and printed once; nothing here
// waits for input. The interactive tree browser lives in the browser
// subpackage.
//
// # Components
//
//   - Header: command banner showing the image and target
//   - Tables: segments, regions, symbols, targets, RTT channels, defmt sections
//   - DwarfTree and SymbolDetail: the debug info tree and one node in full
//   - RenderSteps and UsageBars: the summary checklist and region fill bars
//   - Result: success, warning and failure boxes
//
// # Usage Pattern
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader(ui.NewHeader("Memory Segments", "fwscope segments app.elf",
//		ui.Param{Key: "Target", Value: "STM32F407VGTx"}))
//	p.Println(ui.SegmentsTable(snap.Segments))
//
// Sizes are printed with FormatSize and addresses with FormatAddress so every
// view agrees on units.
package ui
