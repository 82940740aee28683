// Package platform encapsulates per-chipset knowledge: pad-group ordering,
// the physical-table signature, VGPIO size bands, and module-name
// patterns. Adding a new chipset (Raptor Lake, Meteor Lake) means adding a
// Profile here, not touching the detector or validator.
package platform

import (
	"strconv"

	"github.com/linuxboot/gpioxtract/pkg/pad"
)

// SignatureEntry is one position of the Profile's physical-table
// signature: the exact (mode, reset) pair expected at that position.
type SignatureEntry struct {
	Mode     pad.Mode
	Reset    pad.ResetDomain
	Required bool
}

// PadGroup is a contiguous, named run of pads within one class's layout,
// used for positional naming. Count is never inferred from descriptor
// contents.
type PadGroup struct {
	Name  string
	Count int
}

// CountBand is an inclusive entry-count range used to classify a
// candidate table.
type CountBand struct {
	Min, Max int
}

// In reports whether n falls within the band.
func (b CountBand) In(n int) bool {
	return n >= b.Min && n <= b.Max
}

// Profile is all chipset-specific knowledge needed by stages B through E.
type Profile struct {
	// Tag is the platform token accepted on the CLI (e.g. "alderlake").
	Tag string

	// PhysicalEntrySizes lists the descriptor sizes, in bytes, the
	// signature scanner tries for the physical table.
	PhysicalEntrySizes []int
	// VGPIOEntrySizes lists the descriptor sizes the VGPIO scanner
	// tries.
	VGPIOEntrySizes []int

	// Signature is the ordered (mode, reset) pattern expected at the
	// start of the canonical physical pad table.
	Signature []SignatureEntry

	// ExtensionCap bounds how far a signature-scan anchor may be
	// extended before it is treated as implausible.
	ExtensionCap int
	// VGPIOCeiling bounds how far a VGPIO run may be greedily extended
	// before being discarded as a false positive.
	VGPIOCeiling int

	// ClassBands maps each class to its entry-count range. The
	// ClassPhysical band is not consulted by classification: physical
	// tables come only from the signature scan.
	ClassBands map[pad.Class]CountBand

	// PhysicalGroups is the ordered list of physical pad groups; the
	// i-th descriptor of a physical table is always the i-th pad of
	// this sequence.
	PhysicalGroups []PadGroup

	// ModuleNamePatterns are text substrings matched against UEFI
	// section/file names to prioritize candidate Module Spans.
	ModuleNamePatterns []string

	// VerifiedGUIDs are module GUIDs independently confirmed (against
	// public documentation or firmware sources) to carry GPIO
	// configuration. Empty until a GUID is verified; see the Open
	// Question in DESIGN.md.
	VerifiedGUIDs []string

	// RegionQuirk selects the IFD region-slot layout this platform
	// family requires. When true, the Region Extractor must account for
	// an extra region slot ahead of BIOS or else it reads the wrong
	// region entry.
	RegionQuirk bool
	// PlatformID is the descriptor-embedded platform family identifier
	// the Region Extractor checks against to detect a mismatched image.
	PlatformID uint8
}

// PhysicalPadCount is the sum of all physical group counts — the expected
// entry count of a complete canonical physical table.
func (p *Profile) PhysicalPadCount() int {
	n := 0
	for _, g := range p.PhysicalGroups {
		n += g.Count
	}
	return n
}

// PhysicalPadName returns the pad name for the i-th descriptor (0-based)
// of a physical table, by walking the ordered group list. Returns false if
// i is out of range for the known physical layout.
func (p *Profile) PhysicalPadName(i int) (string, bool) {
	base := 0
	for _, g := range p.PhysicalGroups {
		if i < base+g.Count {
			return groupPadName(g.Name, i-base), true
		}
		base += g.Count
	}
	return "", false
}

// ClassPadName returns the pad name for the i-th descriptor of a table
// already classified as class c. VGPIO classes have a single virtual
// group, so naming is a direct format of the index.
func ClassPadName(c pad.Class, i int) string {
	switch c {
	case pad.ClassVGPIO:
		return groupPadName("VGPIO", i)
	case pad.ClassVGPIOUSB:
		return groupPadName("VGPIO_0", i)
	case pad.ClassVGPIOPCIe:
		return groupPadName("VGPIO_PCIE", i)
	}
	return groupPadName("UNKNOWN", i)
}

// groupPadName follows the naming convention from the platform's pad-group
// layout: VGPIO groups get a flattened name, physical groups concatenate
// the group name with the local index.
func groupPadName(group string, index int) string {
	switch group {
	case "VGPIO":
		return formatPadName("VGPIO_", index)
	case "VGPIO_0":
		return formatPadName("VGPIO_USB_", index)
	case "VGPIO_PCIE":
		return formatPadName("VGPIO_PCIE_", index)
	default:
		return formatPadName(group, index)
	}
}

func formatPadName(prefix string, index int) string {
	return prefix + strconv.Itoa(index)
}
