package fv

import (
	"encoding/binary"

	"github.com/linuxboot/gpioxtract/pkg/guid"
)

const (
	sectionTypeUserInterface = 0x15
	sectionTypeGUIDDefined   = 0x02
)

// read3 decodes a UEFI 3-byte little-endian size field.
func read3(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func align4(n int) int {
	return (n + 3) &^ 3
}

// walkFiles iterates the FFS files inside a firmware volume's file region,
// calling fn for each file's body bytes, decoded name GUID, and the
// body's starting offset within buf (so callers can recover absolute
// addresses). A run of 0xFF bytes where a file header is expected marks
// the start of free space and ends the walk without error, matching how
// the BIOS region's trailing padding is represented on real flash.
func walkFiles(buf []byte, fn func(bodyOffset int, nameGUID guid.GUID, fileType uint8, body []byte)) {
	pos := 0
	for pos+24 <= len(buf) {
		header := buf[pos : pos+24]
		if isAllOnes(header[:16]) {
			return // start of free space
		}

		var nameGUID guid.GUID
		copy(nameGUID[:], header[:16])
		fileType := header[18]
		attributes := header[19]
		size := read3(header[20:23])

		headerSize := 24
		totalSize := int(size)
		if size == 0xFFFFFF {
			if pos+32 > len(buf) {
				return
			}
			totalSize = int(binary.LittleEndian.Uint64(buf[pos+24 : pos+32]))
			headerSize = 32
		}
		_ = attributes

		if totalSize < headerSize || pos+totalSize > len(buf) {
			return
		}

		body := buf[pos+headerSize : pos+totalSize]
		fn(pos+headerSize, nameGUID, fileType, body)

		pos += align4(totalSize)
	}
}

// walkSections iterates the sections inside one FFS file's body, calling
// fn for each section's type and payload bytes, and reporting any
// EFI_SECTION_USER_INTERFACE name it finds.
func walkSections(buf []byte, fn func(sectionType uint8, payload []byte, uiName string)) {
	pos := 0
	for pos+4 <= len(buf) {
		size := read3(buf[pos : pos+3])
		sectionType := buf[pos+3]
		if size == 0 {
			return
		}

		headerSize := 4
		totalSize := int(size)
		if size == 0xFFFFFF {
			if pos+8 > len(buf) {
				return
			}
			totalSize = int(binary.LittleEndian.Uint32(buf[pos+4 : pos+8]))
			headerSize = 8
		}

		if totalSize < headerSize || pos+totalSize > len(buf) {
			return
		}

		payload := buf[pos+headerSize : pos+totalSize]

		uiName := ""
		if sectionType == sectionTypeUserInterface {
			uiName = decodeUCS2(payload)
		}
		fn(sectionType, payload, uiName)

		pos += align4(totalSize)
	}
}

func isAllOnes(b []byte) bool {
	for _, v := range b {
		if v != 0xFF {
			return false
		}
	}
	return true
}

// decodeUCS2 decodes a NUL-terminated UCS2 (UTF-16LE without surrogate
// pairs, as UEFI uses for simple ASCII-range strings) byte sequence into a
// Go string.
func decodeUCS2(b []byte) string {
	var out []rune
	for i := 0; i+2 <= len(b); i += 2 {
		cp := uint16(b[i]) | uint16(b[i+1])<<8
		if cp == 0 {
			break
		}
		out = append(out, rune(cp))
	}
	return string(out)
}
