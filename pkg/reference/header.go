// Package reference parses an optional coreboot-style Reference Header:
// plain text containing pad-configuration macro invocations, used only to
// score candidate Pad Tables during calibration (§6, §4.E).
package reference

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/linuxboot/gpioxtract/pkg/pad"
	"github.com/linuxboot/gpioxtract/pkg/pipeline"
)

// Expected is the (mode, reset_domain, direction) triple a Reference
// Header associates with one pad name.
type Expected struct {
	Mode      pad.Mode
	Reset     pad.ResetDomain
	Direction pad.Direction
}

// Header is a parsed mapping from Pad Name to Expected configuration.
type Header struct {
	pads map[string]Expected
}

// Lookup returns the Expected configuration for name, if the header names
// it.
func (h *Header) Lookup(name string) (Expected, bool) {
	e, ok := h.pads[name]
	return e, ok
}

var (
	// PAD_CFG_GPO(name, default_value, rst) — GPIO output.
	reGPO = regexp.MustCompile(`PAD_CFG_GPO\s*\(\s*([A-Za-z0-9_]+)\s*,\s*([0-9]+)\s*,\s*([A-Za-z0-9_]+)\s*\)`)
	// PAD_CFG_GPI_*(name, pull, rst) — GPIO input, any GPI variant.
	reGPI = regexp.MustCompile(`PAD_CFG_GPI[A-Za-z0-9_]*\s*\(\s*([A-Za-z0-9_]+)\s*,\s*[A-Za-z0-9_]+\s*,\s*([A-Za-z0-9_]+)\s*\)`)
	// PAD_CFG_NF(name, pull, rst, func) — native function, optional 4th
	// argument selecting NF2..NF7 (defaults to NF1 when absent).
	reNF = regexp.MustCompile(`PAD_CFG_NF\s*\(\s*([A-Za-z0-9_]+)\s*,\s*[A-Za-z0-9_]+\s*,\s*([A-Za-z0-9_]+)\s*(?:,\s*([A-Za-z0-9_]+)\s*)?\)`)
	// _PAD_CFG_STRUCT(name, dw0, dw1) — raw struct form used for VGPIO
	// pads in real coreboot headers.
	reStruct = regexp.MustCompile(`_PAD_CFG_STRUCT\s*\(\s*([A-Za-z0-9_]+)\s*,\s*(0[xX][0-9a-fA-F]+)\s*,\s*(0[xX][0-9a-fA-F]+)\s*\)`)

	resetAliases = map[string]pad.ResetDomain{
		"PWROK":  pad.ResetPWROK,
		"DEEP":   pad.ResetDEEP,
		"PLTRST": pad.ResetPLTRST,
		"RSMRST": pad.ResetRSMRST,
	}
	nfModeAliases = map[string]pad.Mode{
		"NF1": pad.ModeNF1, "NF2": pad.ModeNF2, "NF3": pad.ModeNF3, "NF4": pad.ModeNF4,
		"NF5": pad.ModeNF5, "NF6": pad.ModeNF6, "NF7": pad.ModeNF7,
	}
)

// Parse reads a Reference Header from r. A line that looks like one of
// the recognized macro forms but fails to parse contributes a
// ReferenceParseError to the aggregated error; parsing continues past
// such lines so a single bad line does not hide the rest of the header.
func Parse(r io.Reader) (*Header, error) {
	h := &Header{pads: make(map[string]Expected)}
	var errs *multierror.Error

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !strings.Contains(line, "PAD_CFG") {
			continue
		}
		if !parseLine(h, line) {
			errs = multierror.Append(errs, pipeline.ReferenceParseError{Line: lineNo, Text: line})
		}
	}
	if err := scanner.Err(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return h, errs.ErrorOrNil()
}

func parseLine(h *Header, line string) bool {
	if m := reStruct.FindStringSubmatch(line); m != nil {
		dw0 := parseHex(m[2])
		dw1 := parseHex(m[3])
		d := pad.Decode(dw0, dw1)
		h.pads[m[1]] = Expected{Mode: d.Mode, Reset: d.ResetDomain, Direction: d.Direction()}
		return true
	}
	if m := reGPO.FindStringSubmatch(line); m != nil {
		reset, ok := resetAliases[m[3]]
		if !ok {
			return false
		}
		h.pads[m[1]] = Expected{Mode: pad.ModeGPIO, Reset: reset, Direction: pad.DirectionOutput}
		return true
	}
	if m := reGPI.FindStringSubmatch(line); m != nil {
		reset, ok := resetAliases[m[2]]
		if !ok {
			return false
		}
		h.pads[m[1]] = Expected{Mode: pad.ModeGPIO, Reset: reset, Direction: pad.DirectionInput}
		return true
	}
	if m := reNF.FindStringSubmatch(line); m != nil {
		reset, ok := resetAliases[m[2]]
		if !ok {
			return false
		}
		mode := pad.ModeNF1
		if m[3] != "" {
			if alias, ok := nfModeAliases[m[3]]; ok {
				mode = alias
			}
		}
		h.pads[m[1]] = Expected{Mode: mode, Reset: reset, Direction: pad.DirectionInput}
		return true
	}
	return false
}

func parseHex(s string) uint32 {
	v, _ := strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"), 16, 32)
	return uint32(v)
}
