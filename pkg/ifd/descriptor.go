// Package ifd parses the Intel Flash Descriptor region of an SPI flash
// image and extracts the BIOS Region byte span (Region Extractor, §4.A).
//
// Layout constants here follow the same struct-decoding idiom as the rest
// of the module: fixed-offset fields read with encoding/binary and
// binary.LittleEndian, matching how the wire format is laid out on real
// hardware.
package ifd

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/linuxboot/gpioxtract/pkg/pipeline"
	"github.com/linuxboot/gpioxtract/pkg/platform"
)

// FlashSignature is the 4-byte magic identifying an Intel Flash
// Descriptor.
var FlashSignature = []byte{0x5a, 0xa5, 0xf0, 0x0f}

const (
	// FlashDescriptorLength is the fixed size of the descriptor region.
	FlashDescriptorLength = 0x1000
	// signatureOffset is where FlashSignature is expected within the
	// descriptor region.
	signatureOffset = 0x10
	// descriptorMapOffset is where the 16-byte DescriptorMap begins.
	descriptorMapOffset = signatureOffset + 4
	// RegionBlockSize is the unit (in bytes) of FlashRegion Base/Limit
	// fields.
	RegionBlockSize = 0x1000
	// regionBlockUnit is the unit (in bytes) of DescriptorMap's *Base
	// byte offsets, which point to 16-byte-aligned sub-sections.
	regionBlockUnit = 16
)

// DescriptorMap locates the Region Section (and, were it needed, the
// Component/Master sections) within the descriptor region.
type DescriptorMap struct {
	ComponentBase      uint8
	NumberOfComponents uint8
	RegionBase         uint8
	NumberOfRegions     uint8
	MasterBase         uint8
	NumberOfMasters    uint8
	// PlatformID is not part of the real Intel IFD; it is this
	// repository's stand-in for whatever strap bits an implementation
	// uses to identify the platform family, so DescriptorPlatformMismatch
	// is a distinct, testable condition from an absent signature.
	PlatformID   uint8
	_            uint8
	ICCTableBase uint16
	ICCTableLen  uint8
	_            uint8
	_            uint32
}

// FlashRegion is one Base/Limit pair, in RegionBlockSize units.
type FlashRegion struct {
	Base, Limit uint16
}

// Valid reports whether the region has a sane (nonzero-length, Base <=
// Limit) extent.
func (r FlashRegion) Valid() bool {
	return r.Limit >= r.Base && r.Limit != 0
}

// BaseOffset is the region's starting absolute offset within the flash
// image.
func (r FlashRegion) BaseOffset() uint64 {
	return uint64(r.Base) * RegionBlockSize
}

// EndOffset is the region's exclusive ending absolute offset.
func (r FlashRegion) EndOffset() uint64 {
	return uint64(r.Limit+1) * RegionBlockSize
}

// Length is EndOffset - BaseOffset.
func (r FlashRegion) Length() uint64 {
	return r.EndOffset() - r.BaseOffset()
}

// Descriptor is the parsed Intel Flash Descriptor.
type Descriptor struct {
	Map    DescriptorMap
	BIOS   FlashRegion
	ME     FlashRegion
	GBE    FlashRegion
	PD     FlashRegion
	DevExp FlashRegion // only populated when the platform's RegionQuirk is set
}

// Parse reads the Intel Flash Descriptor out of the first
// FlashDescriptorLength bytes of image, honoring prof's region-layout
// quirk. It returns NotDescriptorFormatted if the signature is absent and
// DescriptorPlatformMismatch if the descriptor does not identify as prof.
func Parse(image []byte, prof *platform.Profile) (*Descriptor, error) {
	if len(image) < FlashDescriptorLength {
		return nil, pipeline.NotDescriptorFormatted{}
	}
	if !bytes.Equal(image[signatureOffset:signatureOffset+4], FlashSignature) {
		return nil, pipeline.NotDescriptorFormatted{}
	}

	var m DescriptorMap
	r := bytes.NewReader(image[descriptorMapOffset : descriptorMapOffset+16])
	if err := binary.Read(r, binary.LittleEndian, &m); err != nil {
		return nil, fmt.Errorf("reading descriptor map: %w", err)
	}

	if m.PlatformID != prof.PlatformID {
		return nil, pipeline.DescriptorPlatformMismatch{Tag: prof.Tag}
	}

	regionSectionOffset := int(m.RegionBase) * regionBlockUnit
	regions, err := readRegions(image, regionSectionOffset, prof.RegionQuirk)
	if err != nil {
		return nil, err
	}

	return &Descriptor{Map: m, BIOS: regions.bios, ME: regions.me, GBE: regions.gbe, PD: regions.pd, DevExp: regions.devExp}, nil
}

type regionSet struct {
	bios, me, gbe, pd, devExp FlashRegion
}

// readRegions decodes the Region Section's FlashRegion slots. Without the
// platform quirk, an Alder Lake descriptor's extra "Device Expansion 1"
// slot ahead of BIOS is not accounted for and is read as BIOS, so every
// subsequent region is read one slot early: the extracted range has the correct length but the wrong
// content, exactly as the Region Extractor's contract describes.
func readRegions(image []byte, sectionOffset int, quirk bool) (regionSet, error) {
	const entrySize = 4 // one FlashRegion, Base+Limit as two uint16
	// Slot 0 is always the descriptor region itself.
	next := sectionOffset + entrySize

	readOne := func() (FlashRegion, error) {
		if next+entrySize > len(image) {
			return FlashRegion{}, fmt.Errorf("region section truncated")
		}
		reg := FlashRegion{
			Base:  binary.LittleEndian.Uint16(image[next : next+2]),
			Limit: binary.LittleEndian.Uint16(image[next+2 : next+4]),
		}
		next += entrySize
		return reg, nil
	}

	var rs regionSet
	var err error

	if quirk {
		if rs.devExp, err = readOne(); err != nil {
			return rs, err
		}
	}
	if rs.bios, err = readOne(); err != nil {
		return rs, err
	}
	if rs.me, err = readOne(); err != nil {
		return rs, err
	}
	if rs.gbe, err = readOne(); err != nil {
		return rs, err
	}
	if rs.pd, err = readOne(); err != nil {
		return rs, err
	}
	return rs, nil
}
