package detect

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/linuxboot/gpioxtract/pkg/pad"
	"github.com/linuxboot/gpioxtract/pkg/platform"
	"github.com/stretchr/testify/require"
)

func putDescriptor(buf []byte, off int, mode pad.Mode, reset pad.ResetDomain) {
	var v uint32
	v |= uint32(reset) << 30
	v |= uint32(mode) << 10
	binary.LittleEndian.PutUint32(buf[off:off+4], v)
	binary.LittleEndian.PutUint32(buf[off+4:off+8], 0) // DW1: termination NONE, all else zero
}

// buildPhysicalTable writes count 8-byte descriptors at off, the first
// five matching the Alder Lake signature and the rest a validator-passing
// NF1/PLTRST pattern.
func buildPhysicalTable(buf []byte, off, count int) {
	sig := []struct {
		mode  pad.Mode
		reset pad.ResetDomain
	}{
		{pad.ModeGPIO, pad.ResetPLTRST},
		{pad.ModeNF1, pad.ResetPLTRST},
		{pad.ModeNF1, pad.ResetPLTRST},
		{pad.ModeNF1, pad.ResetPLTRST},
		{pad.ModeNF1, pad.ResetPLTRST},
	}
	for i := 0; i < count; i++ {
		if i < len(sig) {
			putDescriptor(buf, off+i*8, sig[i].mode, sig[i].reset)
		} else {
			putDescriptor(buf, off+i*8, pad.ModeNF1, pad.ResetPLTRST)
		}
	}
}

func buildVGPIORun(buf []byte, off, entrySize, count int) {
	for i := 0; i < count; i++ {
		pos := off + i*entrySize
		putDescriptor(buf, pos, pad.ModeGPIO, pad.ResetPLTRST)
		for j := 8; j < entrySize; j++ {
			buf[pos+j] = 0
		}
	}
}

// putDescriptorNAFVWE is putDescriptor plus the NAFVWE bit (DW0 bit 27),
// used to exercise ScanVGPIO's diagnostic ratio computation.
func putDescriptorNAFVWE(buf []byte, off int, mode pad.Mode, reset pad.ResetDomain) {
	putDescriptor(buf, off, mode, reset)
	v := binary.LittleEndian.Uint32(buf[off : off+4])
	v |= 1 << 27
	binary.LittleEndian.PutUint32(buf[off:off+4], v)
}

// Scenario 1: signature-only physical table.
func TestScenarioSignatureOnlyPhysicalTable(t *testing.T) {
	prof := platform.AlderLake()
	buf := make([]byte, 8*1024*1024)
	buildPhysicalTable(buf, 0x10000, 253)

	anchors := ScanSignature(buf, prof)
	require.NotEmpty(t, anchors)

	var best *pad.Table
	for _, a := range anchors {
		if best == nil || a.EntryCount() > best.EntryCount() {
			best = a
		}
	}
	require.Equal(t, uint64(0x10000), best.Offset)
	require.Equal(t, 253, best.EntryCount())

	vgpio := ScanVGPIO(buf, prof)
	for _, v := range vgpio {
		require.NotEqual(t, uint64(0x10000), v.Offset)
	}
}

// Scenario 2: signature + VGPIO mix.
func TestScenarioSignatureAndVGPIOMix(t *testing.T) {
	prof := platform.AlderLake()
	buf := make([]byte, 8*1024*1024)
	buildPhysicalTable(buf, 0x10000, 253)
	buildVGPIORun(buf, 0x400000, 12, 38)

	anchors := ScanSignature(buf, prof)
	require.NotEmpty(t, anchors)

	vgpio := ScanVGPIO(buf, prof)
	found := false
	for _, v := range vgpio {
		if v.Offset == 0x400000 && v.EntrySize == 12 && v.EntryCount() == 38 {
			found = true
		}
	}
	require.True(t, found)
}

// ScanVGPIO records the NAFVWE and DEEP-reset diagnostic ratios over an
// accepted run's first 10 entries; they are informational only and must
// not affect acceptance.
func TestScanVGPIORecordsDiagnosticRatios(t *testing.T) {
	prof := platform.AlderLake()
	buf := make([]byte, 1024*1024)

	const off = 0x10000
	const entrySize = 12
	const count = 38
	for i := 0; i < count; i++ {
		pos := off + i*entrySize
		if i < 8 {
			putDescriptorNAFVWE(buf, pos, pad.ModeGPIO, pad.ResetDEEP)
		} else {
			putDescriptor(buf, pos, pad.ModeGPIO, pad.ResetPLTRST)
		}
		for j := 8; j < entrySize; j++ {
			buf[pos+j] = 0
		}
	}

	var table *pad.Table
	for _, v := range ScanVGPIO(buf, prof) {
		if v.Offset == uint64(off) {
			table = v
		}
	}
	require.NotNil(t, table)
	require.Equal(t, 0.8, table.NAFVWERatio)
	require.Equal(t, 0.8, table.DeepResetRatio)
}

// Scenario 3: near-miss reset (DEEP instead of PLTRST) yields no anchor.
func TestScenarioNearMissResetRejected(t *testing.T) {
	prof := platform.AlderLake()
	buf := make([]byte, 64*1024)
	putDescriptor(buf, 0x100, pad.ModeGPIO, pad.ResetDEEP)
	putDescriptor(buf, 0x108, pad.ModeNF1, pad.ResetDEEP)
	putDescriptor(buf, 0x110, pad.ModeNF1, pad.ResetDEEP)
	putDescriptor(buf, 0x118, pad.ModeNF1, pad.ResetDEEP)
	putDescriptor(buf, 0x120, pad.ModeNF1, pad.ResetDEEP)

	anchors := ScanSignature(buf, prof)
	for _, a := range anchors {
		require.NotEqual(t, uint64(0x100), a.Offset)
	}
}

// Scenario 4: reset validated (PLTRST) yields an anchor that extends.
func TestScenarioResetValidatedExtends(t *testing.T) {
	prof := platform.AlderLake()
	buf := make([]byte, 64*1024)
	buildPhysicalTable(buf, 0x100, 10)

	anchors := ScanSignature(buf, prof)
	found := false
	for _, a := range anchors {
		if a.Offset == 0x100 {
			found = true
			require.GreaterOrEqual(t, a.EntryCount(), 5)
		}
	}
	require.True(t, found)
}

// Scenario 5: all-zeros region yields zero candidates from both scanners.
func TestScenarioAllZerosYieldsNothing(t *testing.T) {
	prof := platform.AlderLake()
	buf := make([]byte, 64*1024)
	require.Empty(t, ScanSignature(buf, prof))
	require.Empty(t, ScanVGPIO(buf, prof))
}

// Scenario 6: dead GPIO pad mid-extension halts the run immediately
// before it.
func TestScenarioDeadGPIOHaltsExtension(t *testing.T) {
	prof := platform.AlderLake()
	buf := make([]byte, 64*1024)
	buildPhysicalTable(buf, 0x100, 20)
	// Overwrite entry 12 with mode=GPIO, both rx/tx disabled.
	var dead uint32
	dead |= uint32(pad.ResetPLTRST) << 30
	dead |= uint32(pad.ModeGPIO) << 10
	dead |= uint32(0b11) << 8 // BothDisabled
	binary.LittleEndian.PutUint32(buf[0x100+12*8:], dead)
	binary.LittleEndian.PutUint32(buf[0x100+12*8+4:], 0)

	anchors := ScanSignature(buf, prof)
	var best *pad.Table
	for _, a := range anchors {
		if a.Offset == 0x100 {
			best = a
		}
	}
	require.NotNil(t, best)
	require.Equal(t, 12, best.EntryCount())
}

// P5: on a uniformly random 8 MiB buffer, the signature scanner emits
// zero candidates with probability > 0.99.
func TestSignatureSpecificityOnRandomBuffer(t *testing.T) {
	prof := platform.AlderLake()
	rng := rand.New(rand.NewSource(42))
	buf := make([]byte, 8*1024*1024)
	rng.Read(buf)

	anchors := ScanSignature(buf, prof)
	require.Empty(t, anchors)
}

// P8: replacing the outer loop's step with 1 does not discover any table
// not found by stepping by entry_size, because a real anchor is always
// entry_size-aligned.
func TestStrideCorrectness(t *testing.T) {
	prof := platform.AlderLake()
	buf := make([]byte, 64*1024)
	buildPhysicalTable(buf, 0x100, 10)

	byEntrySize := ScanSignature(buf, prof)

	// Emulate a stride-1 scan directly for comparison.
	var stride1 []uint64
	n := len(prof.Signature)
	entrySize := prof.PhysicalEntrySizes[0]
	limit := len(buf) - n*entrySize
	for off := 0; off <= limit; off++ {
		if matchesSignature(buf, off, entrySize, prof.Signature) {
			stride1 = append(stride1, uint64(off))
		}
	}

	for _, off := range stride1 {
		found := false
		for _, a := range byEntrySize {
			if a.Offset == off {
				found = true
			}
		}
		require.True(t, found, "stride-1 found anchor at 0x%x that entry_size-stepped scan missed", off)
	}
}
