package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{0, "0 B"},
		{1, "1 B"},
		{1023, "1023 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048575, "1024.00 KB"},
		{1048576, "1.00 MB"},
		{5 * 1024 * 1024 / 2, "2.50 MB"},
		{1 << 30, "1.00 GB"},
		{3 << 30, "3.00 GB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSize(tt.bytes))
		})
	}
}

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "0x00000000", FormatAddress(0))
	assert.Equal(t, "0x08000000", FormatAddress(0x08000000))
	assert.Equal(t, "0x100000000", FormatAddress(1<<32))
	assert.Equal(t, "0x400", FormatHex(1024))
	assert.Equal(t, "37.5%", FormatPercent(37.5))
}
