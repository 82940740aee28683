// Package fv walks a BIOS Region as a UEFI firmware volume, yielding
// candidate Module Spans for the Table Detector (Module Enumerator, §4.B).
package fv

import "github.com/linuxboot/gpioxtract/pkg/guid"

// Span is a (offset, length, name?, guid?) tuple pointing into a BIOS
// Region or an unpacked section. It is read-only and references the
// parent buffer by offset and length; Data gives direct access to the
// bytes for the Table Detector.
type Span struct {
	// Offset is this span's absolute offset within the Flash Image, so
	// detector results can be reported with meaningful addresses. For
	// spans produced by an external unpacker, Offset is relative to the
	// unpacked section's own buffer (the unpacker does not preserve
	// original flash addresses).
	Offset uint64
	Data   []byte
	Name   string
	GUID   *guid.GUID
}

// Length is len(Data).
func (s Span) Length() uint64 { return uint64(len(s.Data)) }

// matchesAny reports whether s's name contains any of patterns (compared
// case-insensitively) or its GUID is in verified.
func (s Span) matchesAny(patterns []string, verified map[guid.GUID]struct{}) bool {
	for _, p := range patterns {
		if containsFold(s.Name, p) {
			return true
		}
	}
	if s.GUID != nil {
		if _, ok := verified[*s.GUID]; ok {
			return true
		}
	}
	return false
}
