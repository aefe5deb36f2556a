// Package rtt decodes the SEGGER Real-Time Transfer control block embedded in
// firmware images.
//
// The control block is found through the symbol table, read from the
// initialized data of the section that holds it, and decoded with the
// image's pointer width and byte order. Missing pieces degrade to absent
// fields rather than errors; only an unparseable ELF image fails.
package rtt
