package ifd

import (
	gobytes "github.com/linuxboot/gpioxtract/pkg/bytes"
	"github.com/linuxboot/gpioxtract/pkg/log"
	"github.com/linuxboot/gpioxtract/pkg/pipeline"
	"github.com/linuxboot/gpioxtract/pkg/platform"
)

// BIOSRegion is the extracted byte span of the flash image's BIOS region.
type BIOSRegion struct {
	// Offset and Length locate the region within the original Flash
	// Image, so Module Spans produced downstream can report absolute
	// addresses.
	Offset uint64
	Length uint64
	Data   []byte
}

// ExtractBIOSRegion is the Region Extractor entry point: given a whole
// Flash Image and a platform tag, it returns the BIOS Region byte span.
// The platform tag is mandatory and load-bearing — see Parse's contract.
func ExtractBIOSRegion(image []byte, platformTag string) (*BIOSRegion, error) {
	prof, ok := platform.Lookup(platformTag)
	if !ok {
		return nil, pipeline.UnsupportedPlatform{Tag: platformTag}
	}
	log.Warnf("extracting BIOS region using platform tag %q", prof.Tag)

	desc, err := Parse(image, prof)
	if err != nil {
		return nil, err
	}

	base, end := desc.BIOS.BaseOffset(), desc.BIOS.EndOffset()
	if end > uint64(len(image)) {
		end = uint64(len(image))
	}
	data := image[base:end]

	if gobytes.IsZeroFilled(data) {
		log.Warnf("BIOS region at offset 0x%x is entirely erased flash (all zero bytes)", base)
	}

	return &BIOSRegion{Offset: base, Length: end - base, Data: data}, nil
}
