package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"distro-backend/internal/models"

	"github.com/stretchr/testify/require"
)

func TestNormalizeSoldItemsShapes(t *testing.T) {
	want := []models.SoldLineItem{{ProductID: 1, Unit: models.UnitBox, Quantity: 2}}

	// Bare array.
	items, err := NormalizeSoldItems(json.RawMessage(`[{"product_id":1,"unit":"box","quantity":2}]`))
	require.NoError(t, err)
	require.Equal(t, want, items)

	// Object wrapper, both historical key names.
	items, err = NormalizeSoldItems(json.RawMessage(`{"items":[{"product_id":1,"unit":"box","quantity":2}]}`))
	require.NoError(t, err)
	require.Equal(t, want, items)

	items, err = NormalizeSoldItems(json.RawMessage(`{"products_sold":[{"product_id":1,"unit":"box","quantity":2}]}`))
	require.NoError(t, err)
	require.Equal(t, want, items)

	// JSON-encoded string holding the array.
	items, err = NormalizeSoldItems(json.RawMessage(`"[{\"product_id\":1,\"unit\":\"box\",\"quantity\":2}]"`))
	require.NoError(t, err)
	require.Equal(t, want, items)

	// String wrapping an object wrapper.
	items, err = NormalizeSoldItems(json.RawMessage(`"{\"items\":[{\"product_id\":1,\"unit\":\"box\",\"quantity\":2}]}"`))
	require.NoError(t, err)
	require.Equal(t, want, items)
}

func TestNormalizeSoldItemsRejectsMalformed(t *testing.T) {
	cases := []string{
		``,
		`null`,
		`[]`,
		`{"items":[]}`,
		`{"other":1}`,
		`42`,
		`[{"unit":"box","quantity":2}]`,   // no product
		`[{"product_id":1,"unit":"box"}]`, // no quantity
		`[{"product_id":1,"unit":"crate","quantity":2}]`,
		`[{"product_id":1,"unit":"box","quantity":-1}]`,
		`"\"\"[]\"\""`, // nested beyond recognition
	}
	for _, raw := range cases {
		_, err := NormalizeSoldItems(json.RawMessage(raw))
		require.ErrorIs(t, err, ErrMalformedSalePayload, "payload %q", raw)
	}
}

type deductCall struct {
	productID, routeID, boxQty, pcsQty int
	driverID                           *int
}

type fakeDeducter struct {
	calls []deductCall
	err   error
}

func (f *fakeDeducter) DeductSold(ctx context.Context, productID int, driverID *int, routeID int, date time.Time, boxQty, pcsQty int) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, deductCall{productID, routeID, boxQty, pcsQty, driverID})
	return nil
}

type fakeSaleStore struct {
	created *models.Sale
}

func (f *fakeSaleStore) Create(ctx context.Context, s *models.Sale) error {
	s.ID = 101
	s.ReceiptNo = "R20250110-00101"
	s.CreatedAt = time.Now()
	f.created = s
	return nil
}

type fakeShopLedger struct {
	shop   *models.Shop
	deltas []float64
}

func (f *fakeShopLedger) Get(ctx context.Context, id int) (*models.Shop, error) {
	return f.shop, nil
}

func (f *fakeShopLedger) AdjustCreditBalance(ctx context.Context, shopID int, delta float64) error {
	f.deltas = append(f.deltas, delta)
	return nil
}

func billingFixture() (*BillingService, *fakeSaleStore, *fakeDeducter, *fakeShopLedger) {
	sales := &fakeSaleStore{}
	deducter := &fakeDeducter{}
	shops := &fakeShopLedger{shop: &models.Shop{ID: 5, RouteID: 1, Name: "Corner Store"}}
	svc := NewBillingService(
		&fakeCatalog{products: []*models.Product{sodaA()}},
		sales, deducter, shops,
	)
	return svc, sales, deducter, shops
}

func TestCreateSale(t *testing.T) {
	svc, sales, deducter, shops := billingFixture()

	req := &models.CreateSaleRequest{
		ShopID:  5,
		RouteID: 1,
		Date:    "2025-01-10",
		ProductsSold: json.RawMessage(
			`[{"product_id":1,"unit":"box","quantity":1,"total":240},{"product_id":1,"unit":"pcs","quantity":3}]`),
		AmountPaid: 200,
	}

	sale, receipt, err := svc.CreateSale(context.Background(), req, intPtr(7))
	require.NoError(t, err)
	require.NotNil(t, sales.created)
	require.InDelta(t, 270.0, sale.TotalAmount, 0.001) // 240 explicit + 3 pcs at 10

	// One deduction per line, carrying the unit split.
	require.Equal(t, []deductCall{
		{1, 1, 1, 0, intPtr(7)},
		{1, 1, 0, 3, intPtr(7)},
	}, deducter.calls)

	// Unpaid portion goes to the shop's credit balance.
	require.Equal(t, []float64{70}, shops.deltas)

	require.Contains(t, receipt, "R20250110-00101")
	require.Contains(t, receipt, "Corner Store")
}

func TestCreateSaleMalformedPayload(t *testing.T) {
	svc, _, deducter, _ := billingFixture()

	req := &models.CreateSaleRequest{
		ShopID: 5, RouteID: 1, Date: "2025-01-10",
		ProductsSold: json.RawMessage(`42`),
	}
	_, _, err := svc.CreateSale(context.Background(), req, nil)
	require.ErrorIs(t, err, ErrMalformedSalePayload)
	require.Empty(t, deducter.calls)
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	svc, _, deducter, _ := billingFixture()

	req := &models.CreateSaleRequest{
		ShopID: 5, RouteID: 1, Date: "2025-01-10",
		ProductsSold: json.RawMessage(`[{"product_id":99,"unit":"box","quantity":1}]`),
	}
	_, _, err := svc.CreateSale(context.Background(), req, nil)
	require.Error(t, err)
	require.Empty(t, deducter.calls)
}

func TestCreateSaleFullyPaidSkipsCredit(t *testing.T) {
	svc, _, _, shops := billingFixture()

	req := &models.CreateSaleRequest{
		ShopID: 5, RouteID: 1, Date: "2025-01-10",
		ProductsSold: json.RawMessage(`[{"product_id":1,"unit":"box","quantity":1}]`),
		AmountPaid:   240,
	}
	_, _, err := svc.CreateSale(context.Background(), req, nil)
	require.NoError(t, err)
	require.Empty(t, shops.deltas)
}

func TestCreateSaleRequiresValidDate(t *testing.T) {
	svc, _, _, _ := billingFixture()

	req := &models.CreateSaleRequest{
		ShopID: 5, RouteID: 1, Date: "10/01/2025",
		ProductsSold: json.RawMessage(`[{"product_id":1,"unit":"box","quantity":1}]`),
	}
	_, _, err := svc.CreateSale(context.Background(), req, nil)
	require.Error(t, err)
}
