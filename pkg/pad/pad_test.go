package pad

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeNAFVWEBit(t *testing.T) {
	set := Decode(1<<27, 0)
	require.True(t, set.NAFVWE)

	clear := Decode(0, 0)
	require.False(t, clear.NAFVWE)
}
