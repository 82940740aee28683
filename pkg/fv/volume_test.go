package fv

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/linuxboot/gpioxtract/pkg/guid"
	"github.com/linuxboot/gpioxtract/pkg/platform"
	"github.com/stretchr/testify/require"
)

func ucs2(s string) []byte {
	var buf bytes.Buffer
	for _, r := range s {
		binary.Write(&buf, binary.LittleEndian, uint16(r))
	}
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	return buf.Bytes()
}

// buildUIFile constructs one FFS file (24-byte header, no extension)
// containing a single EFI_SECTION_USER_INTERFACE section with the given
// name, padded so the whole file length is 4-byte aligned.
func buildUIFile(nameGUID guid.GUID, uiName string) []byte {
	nameBytes := ucs2(uiName)
	sectionSize := 4 + len(nameBytes)
	sectionSize = (sectionSize + 3) &^ 3
	section := make([]byte, sectionSize)
	section[0] = byte(4 + len(nameBytes))
	section[1] = byte((4 + len(nameBytes)) >> 8)
	section[2] = byte((4 + len(nameBytes)) >> 16)
	section[3] = sectionTypeUserInterface
	copy(section[4:], nameBytes)

	fileSize := 24 + len(section)
	file := make([]byte, fileSize)
	copy(file[:16], nameGUID[:])
	file[18] = 0x07 // arbitrary FFS file type
	file[20] = byte(fileSize)
	file[21] = byte(fileSize >> 8)
	file[22] = byte(fileSize >> 16)
	copy(file[24:], section)

	return file
}

// buildVolume wraps files into a minimal FV: fixed header + an
// (Count,Size)=(1,4KiB),(0,0) block map + the file bytes + free-space
// padding of 0xFF to fill out the declared Length.
func buildVolume(totalLen int, files [][]byte) []byte {
	const blockMapSize = 16 // two (count,size) uint32 pairs
	headerLen := volumeHeaderFixedSize + blockMapSize

	buf := make([]byte, totalLen)
	for i := range buf {
		buf[i] = 0xFF
	}

	copy(buf[40:44], fvhSignature) // Signature sits at offset 40 in the fixed header
	binary.LittleEndian.PutUint64(buf[32:40], uint64(totalLen))
	binary.LittleEndian.PutUint16(buf[48:50], uint16(headerLen))

	binary.LittleEndian.PutUint32(buf[volumeHeaderFixedSize:volumeHeaderFixedSize+4], 1)
	binary.LittleEndian.PutUint32(buf[volumeHeaderFixedSize+4:volumeHeaderFixedSize+8], 0x1000)
	binary.LittleEndian.PutUint32(buf[volumeHeaderFixedSize+8:volumeHeaderFixedSize+12], 0)
	binary.LittleEndian.PutUint32(buf[volumeHeaderFixedSize+12:volumeHeaderFixedSize+16], 0)

	pos := headerLen
	for _, f := range files {
		copy(buf[pos:], f)
		pos += len(f)
	}
	return buf
}

func TestEnumerateFindsNamedGPIOModule(t *testing.T) {
	g := *guid.MustParse("11111111-2222-3333-4444-555555555555")
	file := buildUIFile(g, "PchGpioInit")
	volume := buildVolume(8192, [][]byte{file})

	prof := platform.AlderLake()
	spans := Enumerate(0, volume, prof)

	require.Equal(t, "<whole BIOS region>", spans[0].Name)
	require.Len(t, spans, 2)
	require.Equal(t, "PchGpioInit", spans[1].Name)
}

// The matched module's span must carry its absolute offset within the
// Flash Image (region offset + its position inside the volume), not zero
// — otherwise a table found inside it reports the wrong address and can
// wrongly out-rank a correctly addressed candidate on the calibrator's
// smaller-offset tiebreak.
func TestEnumerateMatchedModuleCarriesAbsoluteOffset(t *testing.T) {
	g := *guid.MustParse("11111111-2222-3333-4444-555555555555")
	file := buildUIFile(g, "PchGpioInit")
	volume := buildVolume(8192, [][]byte{file})

	const regionOffset = 0x500000
	prof := platform.AlderLake()
	spans := Enumerate(regionOffset, volume, prof)

	require.Len(t, spans, 2)
	module := spans[1]
	require.Equal(t, "PchGpioInit", module.Name)

	const headerLen = volumeHeaderFixedSize + 16 // fixed header + block map, per buildVolume
	wantOffset := uint64(regionOffset + headerLen + 24)
	require.Equal(t, wantOffset, module.Offset)
	require.True(t, module.Offset > regionOffset)
}

func TestEnumerateNonMatchingModuleIsExcluded(t *testing.T) {
	g := *guid.MustParse("11111111-2222-3333-4444-555555555555")
	file := buildUIFile(g, "SomeUnrelatedDriver")
	volume := buildVolume(8192, [][]byte{file})

	prof := platform.AlderLake()
	spans := Enumerate(0, volume, prof)

	require.Len(t, spans, 1) // only the whole-region fallback
}
