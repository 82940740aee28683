package platform

import "github.com/linuxboot/gpioxtract/pkg/pad"

// AlderLakeTag is the platform token selecting the Alder Lake Profile,
// matching the IFD splitter's required "-p adl" flag in spirit.
const AlderLakeTag = "alderlake"

// alderLakePlatformID is the descriptor-embedded platform family
// identifier the Region Extractor checks to detect a descriptor that does
// not identify as Alder Lake.
const alderLakePlatformID = 0xA1

// alderLakePhysicalGroups is the order of physical GPIO groups in the
// monolithic BIOS table. Virtual groups are excluded: they are not present
// in the 8-byte physical descriptor table.
var alderLakePhysicalGroups = []PadGroup{
	{Name: "GPP_I", Count: 23},
	{Name: "GPP_R", Count: 22},
	{Name: "GPP_J", Count: 12},
	{Name: "GPP_B", Count: 24},
	{Name: "GPP_G", Count: 8},
	{Name: "GPP_H", Count: 24},
	{Name: "GPD", Count: 13},
	{Name: "GPP_A", Count: 15},
	{Name: "GPP_C", Count: 24},
	{Name: "GPP_S", Count: 8},
	{Name: "GPP_E", Count: 22},
	{Name: "GPP_K", Count: 12},
	{Name: "GPP_F", Count: 24},
	{Name: "GPP_D", Count: 24},
}

// alderLakeSignature: the Z690/Alder Lake physical table always begins
// with GPP_I0 (GPIO, PLTRST) followed by GPP_I1-I4 (NF1, PLTRST).
var alderLakeSignature = []SignatureEntry{
	{Mode: pad.ModeGPIO, Reset: pad.ResetPLTRST, Required: true},
	{Mode: pad.ModeNF1, Reset: pad.ResetPLTRST, Required: true},
	{Mode: pad.ModeNF1, Reset: pad.ResetPLTRST, Required: true},
	{Mode: pad.ModeNF1, Reset: pad.ResetPLTRST, Required: true},
	{Mode: pad.ModeNF1, Reset: pad.ResetPLTRST, Required: true},
}

// moduleNamePatterns are verified text substrings. Three strings that
// appeared in the source material as "known FSP GUIDs" are deliberately
// omitted here: they were never independently verified against public
// documentation, and per the design notes an unverified GUID must not be
// included. See DESIGN.md, "Open Question decisions".
var alderLakeModuleNamePatterns = []string{
	"Gpio",
	"GPIO",
	"PchInit",
	"PchGpio",
	"SiliconInit",
	"GpioInit",
	"PlatformGpio",
	"PchSmi",
}

// AlderLake is the Profile for 12th-gen Core / Z690-H670-B660 chipsets.
func AlderLake() *Profile {
	return &Profile{
		Tag:                AlderLakeTag,
		PhysicalEntrySizes: []int{8},
		VGPIOEntrySizes:    []int{12, 16},
		Signature:          alderLakeSignature,
		ExtensionCap:       350,
		VGPIOCeiling:       100,
		ClassBands: map[pad.Class]CountBand{
			pad.ClassPhysical:  {Min: 250, Max: 260},
			pad.ClassVGPIOUSB:  {Min: 10, Max: 15},
			pad.ClassVGPIO:     {Min: 35, Max: 40},
			pad.ClassVGPIOPCIe: {Min: 75, Max: 85},
		},
		PhysicalGroups:     alderLakePhysicalGroups,
		ModuleNamePatterns: alderLakeModuleNamePatterns,
		VerifiedGUIDs:      nil,
		RegionQuirk:        true,
		PlatformID:         alderLakePlatformID,
	}
}

// Registry maps a platform tag to its Profile constructor. Adding a new
// chipset means adding an entry here.
var registry = map[string]func() *Profile{
	AlderLakeTag: AlderLake,
}

// Lookup returns the Profile for tag, or false if the tag is unknown. The
// caller (Region Extractor) must treat an unknown tag as UnsupportedPlatform
// and refuse to proceed.
func Lookup(tag string) (*Profile, bool) {
	ctor, ok := registry[tag]
	if !ok {
		return nil, false
	}
	return ctor(), true
}
