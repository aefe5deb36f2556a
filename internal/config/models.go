package config

import (
	"sort"
	"time"
)

// DefaultMaxRecent is how many recent files Save keeps.
const DefaultMaxRecent = 20

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                    `yaml:"version" json:"version"`
	Preferences *Preferences           `yaml:"preferences,omitempty" json:"preferences,omitempty"`
	Recent      map[string]*RecentFile `yaml:"recent,omitempty" json:"recent,omitempty"` // Keyed by absolute image path
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultTarget      string   `yaml:"default_target,omitempty" json:"default_target,omitempty"`             // Target used when none is given
	TargetFiles        []string `yaml:"target_files,omitempty" json:"target_files,omitempty"`                 // Extra target YAML files, loaded after the built-in catalog
	LogLevel           string   `yaml:"log_level,omitempty" json:"log_level,omitempty"`                       // debug, info, warn or error; empty is silent
	SkippedDwarfPolicy string   `yaml:"skipped_dwarf_policy,omitempty" json:"skipped_dwarf_policy,omitempty"` // discard or hoist
	MaxTreeDepth       int      `yaml:"max_tree_depth" json:"max_tree_depth"`                                 // Depth limit for the dwarf tree printout, 0 = unlimited
	MaxRecent          int      `yaml:"max_recent" json:"max_recent"`                                         // Recent files kept on save
}

// RecentFile remembers how an image was last analyzed.
type RecentFile struct {
	Target     string    `yaml:"target,omitempty" json:"target,omitempty"`
	LastOpened time.Time `yaml:"last_opened" json:"last_opened"`
}

func defaultPreferences() *Preferences {
	return &Preferences{
		SkippedDwarfPolicy: "discard",
		MaxRecent:          DefaultMaxRecent,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Preferences: defaultPreferences(),
		Recent:      make(map[string]*RecentFile),
	}
}

// GetRecent returns what is remembered about an image, or nil.
func (r *Registry) GetRecent(path string) *RecentFile {
	return r.Recent[path]
}

// TouchRecent records that path was opened now. An empty target keeps the
// previously remembered one.
func (r *Registry) TouchRecent(path, target string) {
	if r.Recent == nil {
		r.Recent = make(map[string]*RecentFile)
	}

	entry, exists := r.Recent[path]
	if !exists {
		entry = &RecentFile{}
		r.Recent[path] = entry
	}
	if target != "" {
		entry.Target = target
	}
	entry.LastOpened = time.Now()
}

// TargetFor returns the target to analyze path against: the one it was last
// opened with, else the default target. Empty means no target.
func (r *Registry) TargetFor(path string) string {
	if entry := r.GetRecent(path); entry != nil && entry.Target != "" {
		return entry.Target
	}
	if r.Preferences != nil {
		return r.Preferences.DefaultTarget
	}
	return ""
}

// RecentPaths lists remembered images, most recently opened first.
func (r *Registry) RecentPaths() []string {
	paths := make([]string, 0, len(r.Recent))
	for path := range r.Recent {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		a, b := r.Recent[paths[i]], r.Recent[paths[j]]
		if !a.LastOpened.Equal(b.LastOpened) {
			return a.LastOpened.After(b.LastOpened)
		}
		return paths[i] < paths[j]
	})
	return paths
}

// PruneRecent keeps only the most recently opened images. Zero or less
// keeps everything.
func (r *Registry) PruneRecent(keep int) {
	if keep <= 0 || len(r.Recent) <= keep {
		return
	}
	for _, path := range r.RecentPaths()[keep:] {
		delete(r.Recent, path)
	}
}
