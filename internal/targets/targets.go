package targets

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/fwscope/internal/logging"
)

//go:embed targets.yaml
var targetsYAML []byte

// EntryKind classifies a memory map entry as the target descriptor declares it.
type EntryKind string

const (
	// EntryRAM is volatile memory.
	EntryRAM EntryKind = "ram"
	// EntryNVM is non-volatile memory (flash, OTP).
	EntryNVM EntryKind = "nvm"
	// EntryGeneric is memory the descriptor does not classify.
	EntryGeneric EntryKind = "generic"
)

// MemoryMapEntry is one raw range from a target descriptor.
type MemoryMapEntry struct {
	// Kind is the declared memory kind
	Kind EntryKind `yaml:"kind"`

	// Name is optional; unnamed entries get a name from their kind
	Name string `yaml:"name,omitempty"`

	// Start is the first address of the range
	Start uint64 `yaml:"start"`

	// End is one past the last address of the range
	End uint64 `yaml:"end"`
}

// Target describes one chip and its memory map.
type Target struct {
	// Name is the target identifier (e.g., "STM32F407VGTx")
	Name string `yaml:"name"`

	// Family groups related targets
	Family string `yaml:"family,omitempty"`

	// Core is the CPU architecture
	Core string `yaml:"core,omitempty"`

	// Memory is the declared memory map, in source order
	Memory []MemoryMapEntry `yaml:"memory_map"`
}

// Database holds all known targets.
type Database struct {
	// Targets in load order (embedded catalog first, then user files)
	Targets []*Target

	// index maps lower-cased names to targets
	index map[string]*Target

	mu sync.RWMutex
}

// databaseFile is for YAML unmarshaling
type databaseFile struct {
	Targets []*Target `yaml:"targets"`
}

var (
	globalDatabase     *Database
	globalDatabaseOnce sync.Once
	globalDatabaseErr  error
)

// LoadDatabase loads the embedded target catalog.
// This function is safe to call multiple times; the catalog is parsed only once.
func LoadDatabase() (*Database, error) {
	globalDatabaseOnce.Do(func() {
		globalDatabase, globalDatabaseErr = ParseDatabase(targetsYAML)
	})
	return globalDatabase, globalDatabaseErr
}

// LoadDatabaseFiles returns the embedded catalog extended with targets from
// user YAML files. A target in a later file replaces an earlier target with
// the same name.
func LoadDatabaseFiles(paths ...string) (*Database, error) {
	db, err := ParseDatabase(targetsYAML)
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read target file %s: %w", path, err)
		}
		extra, err := ParseDatabase(data)
		if err != nil {
			return nil, fmt.Errorf("failed to load target file %s: %w", path, err)
		}
		db.Merge(extra)
		logging.Debug("Loaded target file",
			zap.String("path", path),
			zap.Int("targets", len(extra.Targets)),
		)
	}

	return db, nil
}

// ParseDatabase parses a target catalog in the targets.yaml schema.
func ParseDatabase(data []byte) (*Database, error) {
	var file databaseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse target catalog: %w", err)
	}

	db := &Database{index: make(map[string]*Target)}
	for i, target := range file.Targets {
		if target == nil || target.Name == "" {
			return nil, fmt.Errorf("target catalog entry %d has no name", i)
		}
		for j, entry := range target.Memory {
			if err := entry.validate(); err != nil {
				return nil, fmt.Errorf("target %s memory entry %d: %w", target.Name, j, err)
			}
		}
		db.add(target)
	}

	return db, nil
}

func (e MemoryMapEntry) validate() error {
	switch e.Kind {
	case EntryRAM, EntryNVM, EntryGeneric:
	default:
		return fmt.Errorf("unknown memory kind %q", e.Kind)
	}
	if e.End < e.Start {
		return fmt.Errorf("end 0x%x is below start 0x%x", e.End, e.Start)
	}
	return nil
}

func (db *Database) add(target *Target) {
	key := strings.ToLower(target.Name)
	if existing, ok := db.index[key]; ok {
		for i, t := range db.Targets {
			if t == existing {
				db.Targets[i] = target
				break
			}
		}
	} else {
		db.Targets = append(db.Targets, target)
	}
	db.index[key] = target
}

// Merge adds every target of other, replacing same-named targets.
func (db *Database) Merge(other *Database) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, target := range other.Targets {
		db.add(target)
	}
}

// Get retrieves a target by name. Matching is case-insensitive.
func (db *Database) Get(name string) (*Target, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	target, ok := db.index[strings.ToLower(name)]
	return target, ok
}

// Names returns all target names sorted ascending.
func (db *Database) Names() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	names := make([]string, 0, len(db.Targets))
	for _, target := range db.Targets {
		names = append(names, target.Name)
	}
	sort.Strings(names)
	return names
}

// Search returns the sorted target names containing query, ignoring case.
// An empty query returns every name.
func (db *Database) Search(query string) []string {
	names := db.Names()
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return names
	}

	matches := make([]string, 0)
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), query) {
			matches = append(matches, name)
		}
	}
	return matches
}

// Count returns the number of targets in the catalog.
func (db *Database) Count() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.Targets)
}

// String returns a one-line description of the target.
func (t *Target) String() string {
	var details []string
	if t.Family != "" {
		details = append(details, t.Family)
	}
	if t.Core != "" {
		details = append(details, t.Core)
	}
	if len(details) == 0 {
		return t.Name
	}
	return fmt.Sprintf("%s (%s)", t.Name, strings.Join(details, ", "))
}
