package quantity

import "math"

// DefaultPcsPerBox is used when a product has no usable box configuration.
const DefaultPcsPerBox = 24

// ToPieces converts a (boxes, pcs) pair to total pieces.
func ToPieces(boxes, pcs, pcsPerBox int) int {
	if pcsPerBox <= 0 {
		pcsPerBox = DefaultPcsPerBox
	}
	return boxes*pcsPerBox + pcs
}

// FromPieces splits total pieces into (boxes, pcs) using floor division.
func FromPieces(totalPcs, pcsPerBox int) (boxes, pcs int) {
	if pcsPerBox <= 0 {
		pcsPerBox = DefaultPcsPerBox
	}
	if totalPcs <= 0 {
		return 0, 0
	}
	return totalPcs / pcsPerBox, totalPcs % pcsPerBox
}

// Resolve returns the pieces-per-box for a product.
// Precedence: explicit configured value, then the box/pcs price ratio,
// then DefaultPcsPerBox. Every subsystem that converts units must go
// through this function so billing, assignment and summaries never
// disagree on rounding.
func Resolve(pcsPerBox int, boxPrice, pcsPrice float64) int {
	if pcsPerBox > 0 {
		return pcsPerBox
	}
	if pcsPrice > 0 && boxPrice > 0 {
		ratio := boxPrice / pcsPrice
		if !math.IsInf(ratio, 0) && !math.IsNaN(ratio) {
			if n := int(math.Round(ratio)); n > 0 {
				return n
			}
		}
	}
	return DefaultPcsPerBox
}
