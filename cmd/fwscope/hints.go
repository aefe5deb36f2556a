package main

import (
	"errors"

	"github.com/muurk/fwscope/internal/dwarftree"
	"github.com/muurk/fwscope/internal/elfimage"
	"github.com/muurk/fwscope/internal/inspect"
	"github.com/muurk/fwscope/internal/targets"
)

// troubleshooting returns the tips printed under a failure box.
func troubleshooting(err error) []string {
	var (
		ioErr     *inspect.IoError
		formatErr *elfimage.FormatError
		dwarfErr  *dwarftree.DwarfError
	)

	switch {
	case errors.As(err, &ioErr):
		return []string{
			"Check the path: " + ioErr.Path,
			"Make sure the file is readable by the current user",
		}
	case errors.Is(err, targets.ErrTargetNotFound):
		return []string{
			"List known targets: fwscope targets --search <text>",
			"Add your own chip with --targets-file <file.yaml>",
		}
	case errors.Is(err, targets.ErrEmptyMemoryMap):
		return []string{
			"The target descriptor declares no memory regions",
			"Fix the target file or pick another target",
		}
	case errors.As(err, &formatErr):
		return []string{
			"fwscope reads ELF files, not raw .bin or .hex images",
			"Point it at the linker output (e.g. target/thumbv7em-none-eabihf/release/app)",
		}
	case errors.As(err, &dwarfErr):
		return []string{
			"The debug sections are malformed; rebuild with debug info enabled",
		}
	case isUnknownSetting(err):
		return []string{
			"Show current settings: fwscope config show",
		}
	default:
		return []string{
			"Re-run with --log-level debug for details",
		}
	}
}
