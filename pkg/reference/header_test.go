package reference

import (
	"strings"
	"testing"

	"github.com/linuxboot/gpioxtract/pkg/pad"
	"github.com/stretchr/testify/require"
)

func TestParseRecognizedMacroForms(t *testing.T) {
	text := `
/* example coreboot gpio table */
PAD_CFG_GPO(GPP_A0, 1, DEEP),
PAD_CFG_GPI_APIC(GPP_A1, NONE, PLTRST),
PAD_CFG_NF(GPP_A2, NONE, PLTRST, NF3),
PAD_CFG_NF(GPP_A3, NONE, PLTRST),
_PAD_CFG_STRUCT(VGPIO_0, 0x84000600, 0x00000000),
`
	h, err := Parse(strings.NewReader(text))
	require.NoError(t, err)

	e, ok := h.Lookup("GPP_A0")
	require.True(t, ok)
	require.Equal(t, pad.ModeGPIO, e.Mode)
	require.Equal(t, pad.ResetDEEP, e.Reset)
	require.Equal(t, pad.DirectionOutput, e.Direction)

	e, ok = h.Lookup("GPP_A1")
	require.True(t, ok)
	require.Equal(t, pad.ResetPLTRST, e.Reset)
	require.Equal(t, pad.DirectionInput, e.Direction)

	e, ok = h.Lookup("GPP_A2")
	require.True(t, ok)
	require.Equal(t, pad.ModeNF3, e.Mode)

	e, ok = h.Lookup("GPP_A3")
	require.True(t, ok)
	require.Equal(t, pad.ModeNF1, e.Mode)

	_, ok = h.Lookup("VGPIO_0")
	require.True(t, ok)
}

func TestParseUnparseableLineIsReported(t *testing.T) {
	text := "PAD_CFG_GPO(totally, broken\n"
	_, err := Parse(strings.NewReader(text))
	require.Error(t, err)
}
