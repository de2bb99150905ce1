package services

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"distro-backend/internal/models"

	"github.com/stretchr/testify/require"
)

func TestBuildReceiptFitsThermalWidth(t *testing.T) {
	sale := &models.Sale{
		ID:        101,
		ShopID:    5,
		RouteID:   1,
		ReceiptNo: "R20250110-00101",
		Items: []models.SoldLineItem{
			{ProductID: 1, Unit: models.UnitBox, Quantity: 1, Total: floatPtr(240)},
			{ProductID: 1, Unit: models.UnitPcs, Quantity: 3},
			{ProductID: 99, Unit: models.UnitPcs, Quantity: 2}, // not in catalog
		},
		TotalAmount: 290,
		AmountPaid:  200,
		CreatedAt:   time.Date(2025, 1, 10, 18, 45, 0, 0, time.UTC),
	}
	shop := &models.Shop{ID: 5, Name: "A Shop With A Very Long Name Indeed"}
	catalog := map[int]*models.Product{1: sodaA()}

	receipt := BuildReceipt(sale, shop, catalog)

	for _, line := range strings.Split(receipt, "\n") {
		require.LessOrEqual(t, utf8.RuneCountInString(line), receiptWidth, "line %q", line)
	}
	require.Contains(t, receipt, "R20250110-00101")
	require.Contains(t, receipt, "Soda-A")
	require.Contains(t, receipt, "#99") // unknown product falls back to its id
	require.Contains(t, receipt, "TOTAL")
	require.Contains(t, receipt, "290.00")
	require.Contains(t, receipt, "DUE")
	require.Contains(t, receipt, "90.00")
}

func TestBuildReceiptClipsNamesOnRunes(t *testing.T) {
	sale := &models.Sale{
		ReceiptNo:   "R20250110-00103",
		Items:       []models.SoldLineItem{{ProductID: 1, Unit: models.UnitBox, Quantity: 1}},
		TotalAmount: 240,
		AmountPaid:  240,
		CreatedAt:   time.Now(),
	}
	shop := &models.Shop{Name: "किराना स्टोर " + strings.Repeat("अ", receiptWidth)}

	receipt := BuildReceipt(sale, shop, map[int]*models.Product{1: sodaA()})

	require.True(t, utf8.ValidString(receipt))
	for _, line := range strings.Split(receipt, "\n") {
		require.LessOrEqual(t, utf8.RuneCountInString(line), receiptWidth, "line %q", line)
	}
}

func TestBuildReceiptNoDueLineWhenPaid(t *testing.T) {
	sale := &models.Sale{
		ReceiptNo:   "R20250110-00102",
		Items:       []models.SoldLineItem{{ProductID: 1, Unit: models.UnitBox, Quantity: 1}},
		TotalAmount: 240,
		AmountPaid:  240,
		CreatedAt:   time.Now(),
	}
	receipt := BuildReceipt(sale, &models.Shop{Name: "Corner Store"}, map[int]*models.Product{1: sodaA()})
	require.NotContains(t, receipt, "DUE")
}
