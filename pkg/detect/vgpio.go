package detect

import (
	"github.com/linuxboot/gpioxtract/pkg/pad"
	"github.com/linuxboot/gpioxtract/pkg/platform"
)

// ScanVGPIO is the targeted VGPIO heuristic scan. VGPIO tables don't share
// the physical signature, so they're found by a brute offset walk
// constrained to their known size range: at each position, greedily
// extend a run of validator-accepted descriptors up to prof.VGPIOCeiling;
// a completed run is kept only if its length falls in the union of the
// Profile's VGPIO count bands. Runs that reach the ceiling, and runs
// outside every band, are discarded — they dominate the false-positive
// rate of a brute walk. On acceptance the walk advances past the run; on
// rejection it advances 4 bytes.
func ScanVGPIO(span []byte, prof *platform.Profile) []*pad.Table {
	var candidates []*pad.Table

	for _, entrySize := range prof.VGPIOEntrySizes {
		if entrySize <= 0 {
			continue
		}
		pos := 0
		for pos+entrySize <= len(span) {
			run := runLength(span, pos, entrySize, prof.VGPIOCeiling)
			if run == 0 {
				pos += 4
				continue
			}
			if run >= prof.VGPIOCeiling {
				pos += 4
				continue
			}
			if !inAnyVGPIOBand(run, prof) {
				pos += 4
				continue
			}
			table := extend(span, pos, entrySize, prof, false)
			applyVGPIORatios(table)
			candidates = append(candidates, table)
			pos += run * entrySize
		}
	}
	return candidates
}

// runLength counts consecutive validator-accepted descriptors starting at
// pos, stopping at the first rejection or at ceiling, whichever comes
// first.
func runLength(span []byte, pos, entrySize, ceiling int) int {
	count := 0
	for count < ceiling {
		at := pos + count*entrySize
		if at+8 > len(span) {
			break
		}
		dw0, dw1 := decodeAt(span, at)
		ok, _ := pad.Validate(dw0, dw1)
		if !ok {
			break
		}
		count++
	}
	return count
}

func inAnyVGPIOBand(n int, prof *platform.Profile) bool {
	for class, band := range prof.ClassBands {
		if class == 0 { // pad.ClassUnknown would never be keyed, defensive only
			continue
		}
		if band.In(n) {
			// Physical band is handled exclusively by the signature
			// scan; the VGPIO scanner only accepts the VGPIO_* bands.
			if classIsVGPIO(class) {
				return true
			}
		}
	}
	return false
}

func classIsVGPIO(c pad.Class) bool {
	return c == pad.ClassVGPIO || c == pad.ClassVGPIOUSB || c == pad.ClassVGPIOPCIe
}

// applyVGPIORatios computes the NAFVWE-bit and DEEP-reset diagnostic
// ratios over the table's first 10 entries (or fewer, if shorter) and
// stores them on t. These are surfaced in the structured output for a
// human reviewer; they play no part in the accept/reject decision above.
func applyVGPIORatios(t *pad.Table) {
	sample := t.Entries
	if len(sample) > 10 {
		sample = sample[:10]
	}
	if len(sample) == 0 {
		return
	}

	var nafvwe, deep int
	for _, e := range sample {
		if e.Descriptor.NAFVWE {
			nafvwe++
		}
		if e.Descriptor.ResetDomain == pad.ResetDEEP {
			deep++
		}
	}
	t.NAFVWERatio = float64(nafvwe) / float64(len(sample))
	t.DeepResetRatio = float64(deep) / float64(len(sample))
}
