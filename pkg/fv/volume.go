package fv

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/linuxboot/gpioxtract/pkg/guid"
)

var fvhSignature = []byte("_FVH")

// findVolumeOffset looks for the next "_FVH" signature, 8-byte aligned
// from start, the same way the source tool's firmware-volume reader does:
// the signature sits 40 bytes into the volume header, so a match at byte i
// means the volume itself begins at i-40.
func findVolumeOffset(buf []byte, start int) int {
	for i := start; i+4 <= len(buf); i += 8 {
		if string(buf[i:i+4]) == string(fvhSignature) {
			return i - 40
		}
	}
	return -1
}

// volumeHeaderFixed mirrors the fixed portion of a UEFI firmware volume
// header preceding its variable-length block map.
type volumeHeaderFixed struct {
	_              [16]byte // zero vector
	FileSystemGUID guid.GUID
	Length         uint64
	Signature      [4]byte
	AttrMask       uint32
	HeaderLen      uint16
	Checksum       uint16
	ExtHeaderOff   uint16
	_              uint8
	Revision       uint8
}

const volumeHeaderFixedSize = 16 + 16 + 8 + 4 + 4 + 2 + 2 + 2 + 1 + 1 // = 56

// walkVolumes finds every firmware volume in buf and calls fn with each
// volume's file-region bytes (header + block list skipped) and that
// region's starting offset within buf, so callers can recover absolute
// addresses for anything found inside.
func walkVolumes(buf []byte, fn func(fileRegionOffset int, fvBuf []byte)) {
	offset := 0
	for {
		off := findVolumeOffset(buf, offset)
		if off < 0 || off+volumeHeaderFixedSize > len(buf) {
			return
		}
		var hdr volumeHeaderFixed
		if err := bread(buf[off:off+volumeHeaderFixedSize], &hdr); err != nil {
			return
		}
		if hdr.Length == 0 || off+int(hdr.Length) > len(buf) {
			// Malformed or truncated; stop walking this buffer but don't
			// fail the whole enumeration — the whole-region span still
			// covers everything.
			return
		}

		// Skip the block map: a sequence of (Count uint32, Size uint32)
		// pairs terminated by a zero entry.
		pos := off + volumeHeaderFixedSize
		for pos+8 <= len(buf) {
			count := binary.LittleEndian.Uint32(buf[pos : pos+4])
			size := binary.LittleEndian.Uint32(buf[pos+4 : pos+8])
			pos += 8
			if count == 0 && size == 0 {
				break
			}
		}

		fvEnd := off + int(hdr.Length)
		fn(pos, buf[pos:fvEnd])

		offset = fvEnd
		if offset <= off {
			return
		}
	}
}

func bread(b []byte, v interface{}) error {
	return binary.Read(bytes.NewReader(b), binary.LittleEndian, v)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
