package ui

import "fmt"

const (
	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
)

// FormatSize renders a byte count with binary units: "N B" below 1 KiB,
// otherwise two decimals of KB, MB or GB.
func FormatSize(bytes uint64) string {
	switch {
	case bytes < kib:
		return fmt.Sprintf("%d B", bytes)
	case bytes < mib:
		return fmt.Sprintf("%.2f KB", float64(bytes)/kib)
	case bytes < gib:
		return fmt.Sprintf("%.2f MB", float64(bytes)/mib)
	default:
		return fmt.Sprintf("%.2f GB", float64(bytes)/gib)
	}
}

// FormatAddress renders an address as at least eight hex digits.
func FormatAddress(addr uint64) string {
	return fmt.Sprintf("0x%08x", addr)
}

// FormatHex renders a size or offset in hex without padding.
func FormatHex(v uint64) string {
	return fmt.Sprintf("0x%x", v)
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}
