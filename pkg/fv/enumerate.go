package fv

import (
	"github.com/linuxboot/gpioxtract/pkg/guid"
	"github.com/linuxboot/gpioxtract/pkg/log"
	"github.com/linuxboot/gpioxtract/pkg/platform"
)

// Enumerate is the Module Enumerator: given a BIOS Region's bytes and its
// absolute offset within the Flash Image, it returns an ordered list of
// Module Spans. The first span always covers the whole region; any
// subsequent spans cover named UEFI sections whose name or GUID matches
// one of prof's patterns.
func Enumerate(regionOffset uint64, region []byte, prof *platform.Profile) []Span {
	spans := []Span{{Offset: regionOffset, Data: region, Name: "<whole BIOS region>"}}

	verified := make(map[guid.GUID]struct{}, len(prof.VerifiedGUIDs))
	for _, s := range prof.VerifiedGUIDs {
		if g, err := guid.Parse(s); err == nil {
			verified[*g] = struct{}{}
		}
	}

	walkVolumes(region, func(fileRegionOffset int, fvBuf []byte) {
		walkFiles(fvBuf, func(bodyOffset int, nameGUID guid.GUID, fileType uint8, body []byte) {
			_ = fileType
			var uiName string
			walkSections(body, func(sectionType uint8, payload []byte, found string) {
				if found != "" {
					uiName = found
				}
			})

			candidate := Span{
				Offset: regionOffset + uint64(fileRegionOffset) + uint64(bodyOffset),
				Data:   body,
				Name:   uiName,
				GUID:   &nameGUID,
			}
			if !candidate.matchesAny(prof.ModuleNamePatterns, verified) {
				return
			}

			log.Warnf("module enumerator matched span %q (guid %s) at offset 0x%x", uiName, nameGUID.String(), candidate.Offset)
			spans = append(spans, candidate)
		})
	})

	return spans
}
