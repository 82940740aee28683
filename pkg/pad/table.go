package pad

// Class is a Pad Table's classification, assigned by the calibrator from
// its entry count.
type Class int

const (
	ClassUnknown Class = iota
	ClassPhysical
	ClassVGPIO
	ClassVGPIOUSB
	ClassVGPIOPCIe
)

func (c Class) String() string {
	switch c {
	case ClassPhysical:
		return "PHYSICAL"
	case ClassVGPIO:
		return "VGPIO"
	case ClassVGPIOUSB:
		return "VGPIO_USB"
	case ClassVGPIOPCIe:
		return "VGPIO_PCIE"
	}
	return "UNKNOWN"
}

// Entry is one decoded, validated descriptor together with its position in
// the containing table.
type Entry struct {
	Index      int
	Descriptor Descriptor
	Name       string
}

// Table is an ordered sequence of descriptors sharing a common entry size,
// occupying a contiguous byte range of some Module Span. A Table is never
// mutated after it is fully extended.
type Table struct {
	// SpanOffset is the offset of the owning Module Span within the
	// Flash Image, so absolute addressing survives past the span.
	SpanOffset uint64
	// Offset is relative to the Module Span.
	Offset    uint64
	EntrySize int
	Entries   []Entry

	// FromSignature records whether this table originated from the
	// signature scan (always classified PHYSICAL regardless of count)
	// or the VGPIO scan.
	FromSignature bool

	Class Class
	// Score is populated by the calibrator when a Reference Header is
	// supplied; zero otherwise.
	Score int
	Scored bool

	// NAFVWERatio and DeepResetRatio are diagnostic-only characteristics
	// computed over the first 10 entries (or fewer, if the table is
	// shorter) by the VGPIO scan: the fraction with the NAFVWE bit set
	// and the fraction in the DEEP reset domain, respectively. They play
	// no part in acceptance — VGPIO classification is the size-band
	// rule in ScanVGPIO — and are zero on tables from the signature
	// scan.
	NAFVWERatio    float64
	DeepResetRatio float64
}

// EntryCount is the number of validated descriptors in the table.
func (t *Table) EntryCount() int {
	return len(t.Entries)
}

// AbsoluteOffset is the table's start offset within the Flash Image.
func (t *Table) AbsoluteOffset() uint64 {
	return t.SpanOffset + t.Offset
}
