package dwarftree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDemangle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"_ZN3foo3barEv", "foo::bar()"},
		{"__ZN3foo3barEv", "foo::bar()"},
		{"_ZN4core3fmt5write17h0123456789abcdefE", "core::fmt::write"},
		{"main", "main"},
		{"_SEGGER_RTT", "_SEGGER_RTT"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Demangle(tt.in), tt.in)
	}
}

func TestIsRustSymbol(t *testing.T) {
	assert.True(t, isRustSymbol("_RNvCs1234_7mycrate3foo"))
	assert.True(t, isRustSymbol("_ZN4core3fmt5write17h0123456789abcdefE"))
	assert.False(t, isRustSymbol("_ZN3foo3barEv"))
	assert.False(t, isRustSymbol("_ZN3foo3barE"))
	assert.False(t, isRustSymbol("reset_handler"))
}
