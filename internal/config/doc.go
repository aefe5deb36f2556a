// Package config manages the fwscope user configuration file.
//
// The file is YAML and holds application preferences plus a small history
// of recently opened firmware images, each remembered with the target it was
// last analyzed against.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/fwscope/config.yaml or $HOME/.config/fwscope/config.yaml
//   - macOS: $HOME/.config/fwscope/config.yaml
//   - Windows: %LOCALAPPDATA%\fwscope\config.yaml
//
// Setting FWSCOPE_CONFIG_DIR overrides the directory on every platform.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Pick the target for an image: the one it was last opened with,
//	// falling back to the default target.
//	target := registry.TargetFor("/work/app.elf")
//
//	registry.TouchRecent("/work/app.elf", "STM32F407VGTx")
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
