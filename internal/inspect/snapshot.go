package inspect

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/muurk/fwscope/internal/dwarftree"
	"github.com/muurk/fwscope/internal/elfimage"
	"github.com/muurk/fwscope/internal/logging"
	"github.com/muurk/fwscope/internal/rtt"
	"github.com/muurk/fwscope/internal/targets"
)

// Options controls a load.
type Options struct {
	// Target names the memory map to check segments against. Empty skips
	// conflict detection.
	Target string

	// Database resolves Target. Nil uses the built-in catalog.
	Database *targets.Database

	// Dwarf is passed to the debug info tree build.
	Dwarf []dwarftree.Option
}

// Snapshot holds every analysis result for one image.
type Snapshot struct {
	Path string `json:"path"`
	Size int    `json:"size"`

	Target  string                 `json:"target,omitempty"`
	Regions []targets.MemoryRegion `json:"regions"`

	Segments []elfimage.MemorySegment `json:"segments"`
	Symbols  []elfimage.Symbol        `json:"symbols"`
	Defmt    *elfimage.DefmtInfo      `json:"defmt"`
	RTT      *rtt.Info                `json:"rtt"`
	Dwarf    *dwarftree.Info          `json:"dwarf"`

	// DwarfErr is set when the debug info could not be read. Dwarf is then
	// empty and everything else is still valid.
	DwarfErr error `json:"-"`

	data []byte
	db   *targets.Database
}

// Load reads the image at path and analyzes it.
func Load(path string, opts Options) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IoError{Path: path, Err: err}
	}
	return LoadBytes(path, data, opts)
}

// LoadBytes analyzes an image already in memory. path is only used for
// reporting.
func LoadBytes(path string, data []byte, opts Options) (*Snapshot, error) {
	s := &Snapshot{
		Path: path,
		Size: len(data),
		data: data,
		db:   opts.Database,
	}

	if err := s.applyTarget(opts.Target); err != nil {
		return nil, err
	}

	symbols, err := elfimage.ExtractSymbols(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ELF symbols: %w", err)
	}
	s.Symbols = symbols
	logging.LogParse("symbols", path, zap.Int("count", len(symbols)))

	if s.Defmt, err = elfimage.ScanDefmt(data); err != nil {
		return nil, fmt.Errorf("failed to parse defmt info: %w", err)
	}
	if s.RTT, err = rtt.Decode(data); err != nil {
		return nil, fmt.Errorf("failed to parse RTT info: %w", err)
	}

	s.Dwarf, err = dwarftree.Build(data, opts.Dwarf...)
	if err != nil {
		logging.LogParseFailure("dwarf", path, err)
		s.DwarfErr = err
		s.Dwarf = &dwarftree.Info{CompileUnits: []*dwarftree.Symbol{}}
	}
	logging.LogParse("dwarf", path,
		zap.Int("compile_units", len(s.Dwarf.CompileUnits)),
		zap.Int("symbols", s.Dwarf.TotalSymbols),
	)

	return s, nil
}

// Retarget checks the segments against another target's memory map. An
// empty target clears it. On error the snapshot is left unchanged.
func (s *Snapshot) Retarget(target string) error {
	prev := *s
	if err := s.applyTarget(target); err != nil {
		*s = prev
		return err
	}
	return nil
}

func (s *Snapshot) applyTarget(target string) error {
	var regions []targets.MemoryRegion
	if target != "" {
		db, err := s.database()
		if err != nil {
			return err
		}
		if regions, err = db.Lookup(target); err != nil {
			return err
		}
	}

	segments, err := elfimage.ExtractSegments(s.data, regions)
	if err != nil {
		return fmt.Errorf("failed to parse ELF segments: %w", err)
	}
	if len(segments) == 0 {
		logging.Warn("No loadable segments found", zap.String("path", s.Path))
	}

	s.Target = target
	s.Regions = regions
	s.Segments = segments
	logging.LogParse("segments", s.Path,
		zap.Int("count", len(segments)),
		zap.String("target", target),
		zap.Bool("conflicts", elfimage.HasConflicts(segments)),
	)
	return nil
}

func (s *Snapshot) database() (*targets.Database, error) {
	if s.db == nil {
		db, err := targets.LoadDatabase()
		if err != nil {
			return nil, err
		}
		s.db = db
	}
	return s.db, nil
}

// HasTarget reports whether segments were checked against a memory map.
func (s *Snapshot) HasTarget() bool {
	return s.Target != ""
}
