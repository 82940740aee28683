// Package emit renders the Calibrator's selected tables as a coreboot
// gpio.h-style macro header and as a structured JSON report. Neither
// renderer participates in detection or validation; they are pure
// functions over an already-selected Result (§6 "Outputs").
package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/linuxboot/gpioxtract/pkg/calibrate"
	"github.com/linuxboot/gpioxtract/pkg/pad"
)

// PadReport is one pad's structured-output shape.
type PadReport struct {
	Name        string `json:"name"`
	Mode        string `json:"mode"`
	ResetDomain string `json:"reset_domain"`
	Direction   string `json:"direction"`
	DW0         string `json:"dw0"`
	DW1         string `json:"dw1"`
}

// TableReport is one selected table's structured-output shape.
type TableReport struct {
	Offset         uint64      `json:"offset"`
	EntrySize      int         `json:"entry_size"`
	EntryCount     int         `json:"entry_count"`
	Classification string      `json:"classification"`
	Scored         bool        `json:"scored"`
	Score          int         `json:"score,omitempty"`
	Confidence     float64     `json:"confidence,omitempty"`
	NAFVWERatio    float64     `json:"nafvwe_ratio,omitempty"`
	DeepResetRatio float64     `json:"deep_reset_ratio,omitempty"`
	Pads           []PadReport `json:"pads"`
}

// Report is the top-level structured-output document.
type Report struct {
	Tables []TableReport `json:"tables"`
}

func toReport(res *calibrate.Result) Report {
	var r Report
	classes := []pad.Class{pad.ClassPhysical, pad.ClassVGPIO, pad.ClassVGPIOUSB, pad.ClassVGPIOPCIe}
	for _, class := range classes {
		t, ok := res.Winners[class]
		if !ok {
			continue
		}
		tr := TableReport{
			Offset:         t.AbsoluteOffset(),
			EntrySize:      t.EntrySize,
			EntryCount:     t.EntryCount(),
			Classification: t.Class.String(),
			Scored:         t.Scored,
			Score:          t.Score,
		}
		if !t.Scored {
			tr.Confidence = calibrate.Confidence(t)
		}
		if !t.FromSignature {
			tr.NAFVWERatio = t.NAFVWERatio
			tr.DeepResetRatio = t.DeepResetRatio
		}
		for _, e := range t.Entries {
			tr.Pads = append(tr.Pads, PadReport{
				Name:        e.Name,
				Mode:        e.Descriptor.Mode.String(),
				ResetDomain: e.Descriptor.ResetDomain.String(),
				Direction:   directionString(e.Descriptor),
				DW0:         fmt.Sprintf("0x%08x", e.Descriptor.DW0),
				DW1:         fmt.Sprintf("0x%08x", e.Descriptor.DW1),
			})
		}
		r.Tables = append(r.Tables, tr)
	}
	return r
}

func directionString(d pad.Descriptor) string {
	if d.Mode != pad.ModeGPIO {
		return "N/A"
	}
	if d.Direction() == pad.DirectionOutput {
		return "OUTPUT"
	}
	return "INPUT"
}

// WriteJSON marshals the Calibrator's result to w as the structured
// output document.
func WriteJSON(w io.Writer, res *calibrate.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toReport(res))
}

// WriteCorebootHeader renders one macro invocation per named pad, grouped
// by pad group, with VGPIO classes rendered via _PAD_CFG_STRUCT — the
// grouping convention observed in the source material's composed output.
func WriteCorebootHeader(w io.Writer, res *calibrate.Result) error {
	classes := []pad.Class{pad.ClassPhysical, pad.ClassVGPIO, pad.ClassVGPIOUSB, pad.ClassVGPIOPCIe}
	for _, class := range classes {
		t, ok := res.Winners[class]
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "/* %s table, offset 0x%x, %d pads */\n", class, t.AbsoluteOffset(), t.EntryCount()); err != nil {
			return err
		}
		group := ""
		for _, e := range groupedEntries(t) {
			if g := padGroupPrefix(e.Name); g != group {
				if group != "" {
					fmt.Fprintln(w)
				}
				group = g
			}
			if err := writeMacro(w, class, e); err != nil {
				return err
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

func groupedEntries(t *pad.Table) []pad.Entry {
	out := make([]pad.Entry, len(t.Entries))
	copy(out, t.Entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// padGroupPrefix strips a trailing run of digits, giving the pad group
// name a pad belongs to for grouping purposes.
func padGroupPrefix(name string) string {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	return name[:i]
}

// vgpioClass reports whether class is one of the virtual-GPIO
// classifications, which have no coreboot PAD_CFG_* macro form and are
// emitted as raw _PAD_CFG_STRUCT words instead.
func vgpioClass(class pad.Class) bool {
	return class == pad.ClassVGPIO || class == pad.ClassVGPIOUSB || class == pad.ClassVGPIOPCIe
}

func writeMacro(w io.Writer, class pad.Class, e pad.Entry) error {
	if vgpioClass(class) {
		_, err := fmt.Fprintf(w, "_PAD_CFG_STRUCT(%s, 0x%08x, 0x%08x),\n", e.Name, e.Descriptor.DW0, e.Descriptor.DW1)
		return err
	}
	if e.Descriptor.Mode == pad.ModeGPIO {
		if e.Descriptor.Direction() == pad.DirectionOutput {
			txVal := 0
			if e.Descriptor.TxState {
				txVal = 1
			}
			_, err := fmt.Fprintf(w, "PAD_CFG_GPO(%s, %d, %s),\n", e.Name, txVal, e.Descriptor.ResetDomain)
			return err
		}
		_, err := fmt.Fprintf(w, "PAD_CFG_GPI(%s, NONE, %s),\n", e.Name, e.Descriptor.ResetDomain)
		return err
	}
	_, err := fmt.Fprintf(w, "PAD_CFG_NF(%s, NONE, %s, %s),\n", e.Name, e.Descriptor.ResetDomain, e.Descriptor.Mode)
	return err
}
