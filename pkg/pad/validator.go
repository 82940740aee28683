package pad

// RejectReason names which rule rejected a descriptor. It is reported for
// diagnostics; the validator's accept/reject decision itself is a silent
// boolean used to terminate scan extension (see pkg/detect).
type RejectReason int

const (
	// Accepted means no rule rejected the descriptor.
	Accepted RejectReason = iota
	RejectTrivialPattern
	RejectModeOutOfRange
	RejectResetOutOfRange
	RejectGPIOBothDisabled
	RejectNativeFunctionLatchBits
	RejectNativeFunctionPartialBuffer
	RejectInterruptTriggerMismatch
	RejectOutputTerminationNotIsolated
)

func (r RejectReason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectTrivialPattern:
		return "trivial pattern (empty slot or erased flash)"
	case RejectModeOutOfRange:
		return "mode out of range"
	case RejectResetOutOfRange:
		return "reset domain out of range"
	case RejectGPIOBothDisabled:
		return "GPIO mode with both rx and tx disabled"
	case RejectNativeFunctionLatchBits:
		return "native-function pad with nonzero GPIO latch bits"
	case RejectNativeFunctionPartialBuffer:
		return "native-function pad with partial rx/tx buffer enable"
	case RejectInterruptTriggerMismatch:
		return "interrupt route selected with trigger off"
	case RejectOutputTerminationNotIsolated:
		return "actively driven output pad with termination enabled"
	}
	return "unknown"
}

// Validate is the pure semantic Pad Validator described by the component
// design: given raw DW0/DW1 words, decide whether they could plausibly
// represent a real pad configuration. It never mutates its input and has
// no side effects.
func Validate(dw0, dw1 uint32) (bool, RejectReason) {
	// Rule 1: not a trivial pattern.
	if Trivial(dw0, dw1) {
		return false, RejectTrivialPattern
	}

	d := Decode(dw0, dw1)

	// Rule 2: reset domain in enum. Always true for a 2-bit field; kept
	// explicit so the rule set reads as a complete checklist.
	if d.ResetDomain > ResetRSMRST {
		return false, RejectResetOutOfRange
	}

	// Rule 3: mode in enum. DW0's mode field is 4 bits wide (0-15); only
	// 0-7 are defined.
	if !d.Mode.Valid() {
		return false, RejectModeOutOfRange
	}

	// Rule 4: GPIO consistency. A GPIO-mode pad with both buffers
	// disabled is functionally dead and indicates the bytes are not a
	// real pad.
	if d.Mode == ModeGPIO && d.RxTx == BothDisabled {
		return false, RejectGPIOBothDisabled
	}

	if d.Mode.IsNativeFunction() {
		// Rule 5: native-function isolation. Stray output-latch bits on
		// a native-function pad indicate random data.
		if d.TxState || d.RxState {
			return false, RejectNativeFunctionLatchBits
		}
		// Rule 6: native-function buffer consistency. Partial rx/tx
		// enables are rejected; only all-enabled or all-disabled are
		// legitimate on a native function.
		if d.RxTx != BothEnabled && d.RxTx != BothDisabled {
			return false, RejectNativeFunctionPartialBuffer
		}
	}

	// Rule 7: interrupt/trigger consistency. Selecting a route with
	// trigger off is inconsistent; the converse (trigger set, no route)
	// is permitted.
	if d.InterruptRoute.Any() && d.Trigger == TriggerOff {
		return false, RejectInterruptTriggerMismatch
	}

	// Rule 8: output-termination isolation. One does not pull an
	// actively driven line.
	if d.Mode == ModeGPIO && d.RxTx != TxDisabled && d.RxTx != BothDisabled {
		if d.Termination != TerminationNone {
			return false, RejectOutputTerminationNotIsolated
		}
	}

	return true, Accepted
}
