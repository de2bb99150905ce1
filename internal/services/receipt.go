package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"distro-backend/internal/models"
	"distro-backend/internal/quantity"
	"distro-backend/internal/timeutil"
)

// Thermal printers take 32 characters per line.
const receiptWidth = 32

// BuildReceipt renders the fixed-width plain-text receipt for a sale.
// Layout: centered header, shop block, one line per item
// (name left, qty and amount right), totals, footer.
func BuildReceipt(sale *models.Sale, shop *models.Shop, catalog map[int]*models.Product) string {
	var b strings.Builder
	rule := strings.Repeat("-", receiptWidth)

	writeLine(&b, center("DISTRO BEVERAGES"))
	writeLine(&b, center(sale.ReceiptNo))
	writeLine(&b, rule)
	writeLine(&b, clip("Shop: "+shop.Name))
	writeLine(&b, clip("Date: "+timeutil.FormatIST(sale.CreatedAt, timeutil.DisplayLayout)))
	writeLine(&b, rule)

	for _, line := range sale.Items {
		name := fmt.Sprintf("#%d", line.ProductID)
		if p, ok := catalog[line.ProductID]; ok {
			name = p.Name
		}
		qty := fmt.Sprintf("%d %s", line.Quantity, line.Unit)
		var amount float64
		if p, ok := catalog[line.ProductID]; ok {
			amount = lineRevenue(line, p, quantity.Resolve(p.PcsPerBox, p.BoxPrice, p.PcsPrice))
		}
		writeLine(&b, clip(name))
		writeLine(&b, spread(qty, fmt.Sprintf("%.2f", amount)))
	}

	writeLine(&b, rule)
	writeLine(&b, spread("TOTAL", fmt.Sprintf("%.2f", sale.TotalAmount)))
	writeLine(&b, spread("PAID", fmt.Sprintf("%.2f", sale.AmountPaid)))
	if due := sale.TotalAmount - sale.AmountPaid; due > 0 {
		writeLine(&b, spread("DUE", fmt.Sprintf("%.2f", due)))
	}
	writeLine(&b, rule)
	writeLine(&b, center("Thank you!"))
	return b.String()
}

func writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteByte('\n')
}

// clip counts runes, not bytes, so a non-ASCII shop or product name
// is never cut mid-character.
func clip(s string) string {
	r := []rune(s)
	if len(r) > receiptWidth {
		return string(r[:receiptWidth])
	}
	return s
}

func center(s string) string {
	s = clip(s)
	pad := (receiptWidth - utf8.RuneCountInString(s)) / 2
	return strings.Repeat(" ", pad) + s
}

// spread left-aligns one string and right-aligns another on one line.
func spread(left, right string) string {
	gap := receiptWidth - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
