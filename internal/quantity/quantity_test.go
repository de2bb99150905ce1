package quantity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for _, perBox := range []int{1, 12, 24, 30} {
		for totalPcs := 0; totalPcs <= 200; totalPcs++ {
			boxes, pcs := FromPieces(totalPcs, perBox)
			require.Less(t, pcs, perBox)
			require.Equal(t, totalPcs, ToPieces(boxes, pcs, perBox))
		}
	}
}

func TestFromPiecesNegative(t *testing.T) {
	boxes, pcs := FromPieces(-5, 24)
	require.Equal(t, 0, boxes)
	require.Equal(t, 0, pcs)
}

func TestResolvePrecedence(t *testing.T) {
	// Explicit value wins regardless of prices.
	require.Equal(t, 12, Resolve(12, 240, 10))

	// No explicit value: inferred from price ratio.
	require.Equal(t, 24, Resolve(0, 240, 10))
	require.Equal(t, 20, Resolve(0, 100, 5))

	// Neither configured: default.
	require.Equal(t, DefaultPcsPerBox, Resolve(0, 0, 0))
	require.Equal(t, DefaultPcsPerBox, Resolve(-3, 0, 10))
	require.Equal(t, DefaultPcsPerBox, Resolve(0, 240, 0))
}

func TestToPiecesFallbackPerBox(t *testing.T) {
	require.Equal(t, 2*DefaultPcsPerBox+3, ToPieces(2, 3, 0))
}
