package detect

import (
	"github.com/linuxboot/gpioxtract/pkg/fv"
	"github.com/linuxboot/gpioxtract/pkg/pad"
	"github.com/linuxboot/gpioxtract/pkg/platform"
)

// dedupKey identifies a candidate by its (span offset, table offset,
// entry size) triple — two candidates at the same position and stride are
// the same table even if discovered by different strategies.
type dedupKey struct {
	spanOffset uint64
	offset     uint64
	entrySize  int
}

// Detect runs the Table Detector over every Module Span: the signature
// scan first, then the VGPIO scan, per the component design's ordering
// requirement, followed by deduplication across both strategies and all
// spans.
func Detect(spans []fv.Span, prof *platform.Profile) []*pad.Table {
	seen := make(map[dedupKey]struct{})
	var out []*pad.Table

	add := func(spanOffset uint64, tables []*pad.Table) {
		for _, t := range tables {
			t.SpanOffset = spanOffset
			key := dedupKey{spanOffset: spanOffset, offset: t.Offset, entrySize: t.EntrySize}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, t)
		}
	}

	for _, span := range spans {
		add(span.Offset, ScanSignature(span.Data, prof))
	}
	for _, span := range spans {
		add(span.Offset, ScanVGPIO(span.Data, prof))
	}

	return out
}
