// Package elfimage extracts memory layout facts from firmware ELF images:
// allocated segments, conflicts against a target memory map, the symbol
// table, and defmt sections.
//
// Every entry point takes the raw image bytes and parses them from scratch.
// An image that cannot be parsed yields a *FormatError. Missing optional
// content (no symbol table, no defmt sections) is an empty result.
package elfimage
