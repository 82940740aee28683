// Package pipeline defines the shared error taxonomy of the five
// detection stages (A-E): Region Extractor, Module Enumerator, Table
// Detector, Pad Validator, Calibrator. It holds no orchestration; the
// stages are run in order by cmd/gpioxtract's run.
package pipeline

import "fmt"

// NotDescriptorFormatted is returned when the Flash Image lacks an Intel
// Flash Descriptor signature.
type NotDescriptorFormatted struct{}

func (NotDescriptorFormatted) Error() string {
	return "image lacks an Intel Flash Descriptor signature"
}

// UnsupportedPlatform is returned when the caller supplies a platform tag
// with no registered Profile.
type UnsupportedPlatform struct {
	Tag string
}

func (e UnsupportedPlatform) Error() string {
	return fmt.Sprintf("unsupported platform tag %q", e.Tag)
}

// DescriptorPlatformMismatch is returned when the descriptor's own
// platform strap/region layout does not identify as the requested
// platform family.
type DescriptorPlatformMismatch struct {
	Tag string
}

func (e DescriptorPlatformMismatch) Error() string {
	return fmt.Sprintf("descriptor does not identify as platform %q", e.Tag)
}

// HelperUnavailable is returned when a required external helper (the
// descriptor splitter) cannot be located. The UEFI-volume unpacker is
// optional and its absence is not an error (see pkg/fv).
type HelperUnavailable struct {
	Name string
}

func (e HelperUnavailable) Error() string {
	return fmt.Sprintf("required external helper %q not found", e.Name)
}

// HelperFailed is returned when an external helper subprocess exits
// nonzero.
type HelperFailed struct {
	Name     string
	ExitCode int
}

func (e HelperFailed) Error() string {
	return fmt.Sprintf("external helper %q failed with exit code %d", e.Name, e.ExitCode)
}

// NoPhysicalTableFound is returned when the pipeline completes but the
// signature scan produced zero candidates surviving validation and
// calibration. The rest of the result (any VGPIO winners) is still valid
// and is not discarded.
type NoPhysicalTableFound struct{}

func (NoPhysicalTableFound) Error() string {
	return "no physical pad table survived detection and calibration"
}

// ReferenceParseError is returned when a Reference Header line cannot be
// parsed.
type ReferenceParseError struct {
	Line int
	Text string
}

func (e ReferenceParseError) Error() string {
	return fmt.Sprintf("reference header line %d: %s", e.Line, e.Text)
}
