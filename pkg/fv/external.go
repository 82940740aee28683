package fv

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/linuxboot/gpioxtract/pkg/log"
)

// UnpackerName is the external UEFI-volume unpacker helper's program
// name. Its absence is non-fatal: the Module Enumerator simply degrades
// to the whole-region span and the in-memory volume walk.
const UnpackerName = "UEFIExtract"

// ignoreDirs are path substrings excluded from pattern matching to avoid
// false positives from non-BIOS regions that sometimes end up alongside
// an unpacker's output tree (e.g. an ME region GPIO-looking table).
var ignoreDirs = []string{"me region", "descriptor region", "gbe region", "padding"}

// WalkUnpackedTree mirrors the source tool's find_modules: given the root
// of an external unpacker's output directory, it returns one Span per
// file whose path (relative to root, including parent directory names)
// contains any of patterns, skipping ignored regions. A missing or
// unreadable root yields an empty, non-error result — callers should
// proceed with the whole-region span regardless.
func WalkUnpackedTree(root string, patterns []string) []Span {
	var spans []Span
	seen := map[string]struct{}{}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relLower := strings.ToLower(rel)
		for _, ignore := range ignoreDirs {
			if strings.Contains(relLower, ignore) {
				return nil
			}
		}
		for _, p := range patterns {
			if !strings.Contains(relLower, strings.ToLower(p)) {
				continue
			}
			if _, dup := seen[path]; dup {
				break
			}
			data, rerr := os.ReadFile(path)
			if rerr != nil {
				break
			}
			spans = append(spans, Span{Data: data, Name: rel})
			seen[path] = struct{}{}
			break
		}
		return nil
	})
	if err != nil {
		log.Warnf("UEFI-volume unpacker output tree %q unavailable: %v", root, err)
		return nil
	}
	return spans
}
