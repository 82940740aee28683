// Package detect implements the Table Detector: the exact-signature scan
// for the physical pad table and the targeted VGPIO heuristic scan,
// followed by deduplication (§4.C).
package detect

import (
	"encoding/binary"

	"github.com/linuxboot/gpioxtract/pkg/pad"
	"github.com/linuxboot/gpioxtract/pkg/platform"
)

// decodeAt reads one little-endian DW0/DW1 pair at byte offset off within
// buf. The caller guarantees off+8 <= len(buf).
func decodeAt(buf []byte, off int) (dw0, dw1 uint32) {
	return binary.LittleEndian.Uint32(buf[off : off+4]), binary.LittleEndian.Uint32(buf[off+4 : off+8])
}

// ScanSignature is the exact-signature scan for the physical pad table.
// It walks span in entry_size-sized steps — never 1, never a fixed 4 —
// because a real table only ever begins at an entry_size-aligned offset;
// a smaller stride costs more iterations for no additional coverage (P8).
// At each offset it requires *both* mode and reset to match the Profile's
// Signature; a mode-only match is far less selective and is rejected by
// design (see DESIGN.md's note on this deliberate improvement over the
// source tool's signature check).
func ScanSignature(span []byte, prof *platform.Profile) []*pad.Table {
	var anchors []*pad.Table

	for _, entrySize := range prof.PhysicalEntrySizes {
		n := len(prof.Signature)
		if n == 0 || entrySize <= 0 {
			continue
		}
		limit := len(span) - n*entrySize
		for off := 0; off <= limit; off += entrySize {
			if !matchesSignature(span, off, entrySize, prof.Signature) {
				continue
			}
			table := extend(span, off, entrySize, prof, true)
			anchors = append(anchors, table)
		}
	}
	return anchors
}

func matchesSignature(span []byte, off, entrySize int, sig []platform.SignatureEntry) bool {
	for i, want := range sig {
		pos := off + i*entrySize
		if pos+8 > len(span) {
			return false
		}
		dw0, dw1 := decodeAt(span, pos)
		d := pad.Decode(dw0, dw1)
		if d.Mode != want.Mode || d.ResetDomain != want.Reset {
			return false
		}
	}
	return true
}

// extend grows a table forward from offset, one descriptor at a time,
// stopping on the first validator rejection or at the Profile's extension
// cap. The anchor's own entries are validated like every later one; a
// signature match alone does not admit an entry.
func extend(span []byte, offset, entrySize int, prof *platform.Profile, fromSignature bool) *pad.Table {
	t := &pad.Table{Offset: uint64(offset), EntrySize: entrySize, FromSignature: fromSignature}

	extCap := prof.ExtensionCap
	if extCap <= 0 {
		extCap = len(span)/entrySize + 1
	}

	for i := 0; i < extCap; i++ {
		pos := offset + i*entrySize
		if pos+8 > len(span) {
			break
		}
		dw0, dw1 := decodeAt(span, pos)
		ok, _ := pad.Validate(dw0, dw1)
		if !ok {
			break
		}
		d := pad.Decode(dw0, dw1)
		t.Entries = append(t.Entries, pad.Entry{Index: i, Descriptor: d})
	}
	return t
}
