package services

import (
	"context"
	"testing"
	"time"

	"distro-backend/internal/models"
	"distro-backend/internal/timeutil"

	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	products []*models.Product
}

func (f *fakeCatalog) List(ctx context.Context) ([]*models.Product, error) {
	return f.products, nil
}

type fakeSales struct {
	sales []*models.Sale
}

func (f *fakeSales) ListForDate(ctx context.Context, routeID int, date time.Time) ([]*models.Sale, error) {
	return f.sales, nil
}

type fakeAssigned struct {
	routeRows  []*models.AssignedStock
	driverRows []*models.AssignedStock
}

func (f *fakeAssigned) ListForBilling(ctx context.Context, driverID *int, routeID int, date time.Time) ([]*models.AssignedStock, error) {
	if driverID == nil {
		return f.routeRows, nil
	}
	return f.driverRows, nil
}

func intPtr(n int) *int { return &n }

func floatPtr(v float64) *float64 { return &v }

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := timeutil.ParseDate(value)
	require.NoError(t, err)
	return date
}

func sodaA() *models.Product {
	return &models.Product{ID: 1, Name: "Soda-A", BoxPrice: 240, PcsPrice: 10, PcsPerBox: 24, IsActive: true}
}

func TestBuildReconciliation(t *testing.T) {
	// Route R1: 2 boxes of Soda-A remain assigned and one box was sold
	// for 240. Start must come out as remaining + sold = 3 boxes.
	date := mustDate(t, "2025-01-10")
	svc := NewSummaryService(
		&fakeCatalog{products: []*models.Product{sodaA()}},
		&fakeSales{sales: []*models.Sale{{
			RouteID: 1, Date: date,
			Items: []models.SoldLineItem{{ProductID: 1, Unit: models.UnitBox, Quantity: 1, Total: floatPtr(240)}},
		}}},
		&fakeAssigned{routeRows: []*models.AssignedStock{{
			ProductID: 1, RouteID: 1, Date: date, BoxQty: 2, PcsQty: 0, Status: models.AssignedStatusAssigned,
		}}},
	)

	summary, err := svc.Build(context.Background(), date, 1, nil)
	require.NoError(t, err)
	require.False(t, summary.NoData)
	require.True(t, summary.HasAssignedStock)
	require.Len(t, summary.Items, 1)

	item := summary.Items[0]
	require.Equal(t, 3, item.StartBox)
	require.Equal(t, 0, item.StartPcs)
	require.Equal(t, 1, item.SoldBox)
	require.Equal(t, 0, item.SoldPcs)
	require.Equal(t, 2, item.RemainingBox)
	require.Equal(t, 0, item.RemainingPcs)
	require.InDelta(t, 240.0, item.TotalRevenue, 0.001)
	require.InDelta(t, 240.0, summary.TotalRevenue, 0.001)
	require.Equal(t, 72, summary.TotalStartPcs)
	require.Equal(t, 24, summary.TotalSoldPcs)
	require.Equal(t, 48, summary.TotalRemaining)
}

func TestBuildDriverRowsOverrideRouteRows(t *testing.T) {
	date := mustDate(t, "2025-01-10")
	driverID := intPtr(7)
	svc := NewSummaryService(
		&fakeCatalog{products: []*models.Product{sodaA()}},
		&fakeSales{},
		&fakeAssigned{
			routeRows: []*models.AssignedStock{{
				ProductID: 1, RouteID: 1, Date: date, BoxQty: 9, Status: models.AssignedStatusAssigned,
			}},
			driverRows: []*models.AssignedStock{{
				ProductID: 1, RouteID: 1, DriverID: driverID, Date: date, BoxQty: 5, Status: models.AssignedStatusAssigned,
			}},
		},
	)

	summary, err := svc.Build(context.Background(), date, 1, driverID)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	// Not 9 (route row) and not 14 (sum of both): the driver row wins.
	require.Equal(t, 5, summary.Items[0].RemainingBox)
}

func TestBuildFiltersSalesByDriver(t *testing.T) {
	date := mustDate(t, "2025-01-10")
	svc := NewSummaryService(
		&fakeCatalog{products: []*models.Product{sodaA()}},
		&fakeSales{sales: []*models.Sale{
			{RouteID: 1, DriverID: intPtr(7), Date: date,
				Items: []models.SoldLineItem{{ProductID: 1, Unit: models.UnitBox, Quantity: 2}}},
			{RouteID: 1, DriverID: intPtr(8), Date: date,
				Items: []models.SoldLineItem{{ProductID: 1, Unit: models.UnitBox, Quantity: 3}}},
			{RouteID: 1, Date: date,
				Items: []models.SoldLineItem{{ProductID: 1, Unit: models.UnitBox, Quantity: 4}}},
		}},
		&fakeAssigned{},
	)

	summary, err := svc.Build(context.Background(), date, 1, intPtr(7))
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	require.Equal(t, 2, summary.Items[0].SoldBox)

	// Route scope counts every sale on the route.
	summary, err = svc.Build(context.Background(), date, 1, nil)
	require.NoError(t, err)
	require.Equal(t, 9, summary.Items[0].SoldBox)
}

func TestBuildSuppressesIdleProducts(t *testing.T) {
	date := mustDate(t, "2025-01-10")
	idle := &models.Product{ID: 2, Name: "Water", BoxPrice: 120, PcsPerBox: 12, IsActive: true}
	svc := NewSummaryService(
		&fakeCatalog{products: []*models.Product{sodaA(), idle}},
		&fakeSales{sales: []*models.Sale{{
			RouteID: 1, Date: date,
			Items: []models.SoldLineItem{{ProductID: 1, Unit: models.UnitPcs, Quantity: 5}},
		}}},
		&fakeAssigned{},
	)

	summary, err := svc.Build(context.Background(), date, 1, nil)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	require.Equal(t, "Soda-A", summary.Items[0].ProductName)
	// Fully sold out: start == sold, nothing remaining.
	require.Equal(t, 5, summary.Items[0].StartPcs)
	require.False(t, summary.HasAssignedStock)
}

func TestBuildNoData(t *testing.T) {
	date := mustDate(t, "2025-01-10")
	svc := NewSummaryService(
		&fakeCatalog{products: []*models.Product{sodaA()}},
		&fakeSales{},
		&fakeAssigned{},
	)

	summary, err := svc.Build(context.Background(), date, 1, nil)
	require.NoError(t, err)
	require.True(t, summary.NoData)
	require.Empty(t, summary.Items)
	require.False(t, summary.HasAssignedStock)
}

func TestLineRevenuePrecedence(t *testing.T) {
	p := sodaA()

	// Explicit total wins over everything.
	line := models.SoldLineItem{ProductID: 1, Unit: models.UnitBox, Quantity: 2, Price: floatPtr(230), Total: floatPtr(400)}
	require.InDelta(t, 400.0, lineRevenue(line, p, 24), 0.001)

	// Then price * quantity.
	line = models.SoldLineItem{ProductID: 1, Unit: models.UnitBox, Quantity: 2, Price: floatPtr(230)}
	require.InDelta(t, 460.0, lineRevenue(line, p, 24), 0.001)

	// Then the catalog price for the declared unit.
	line = models.SoldLineItem{ProductID: 1, Unit: models.UnitBox, Quantity: 2}
	require.InDelta(t, 480.0, lineRevenue(line, p, 24), 0.001)
	line = models.SoldLineItem{ProductID: 1, Unit: models.UnitPcs, Quantity: 3}
	require.InDelta(t, 30.0, lineRevenue(line, p, 24), 0.001)

	// No pcs price configured: derived from the box price.
	derived := &models.Product{ID: 3, Name: "Juice", BoxPrice: 120, PcsPerBox: 12}
	require.InDelta(t, 20.0, lineRevenue(models.SoldLineItem{ProductID: 3, Unit: models.UnitPcs, Quantity: 2}, derived, 12), 0.001)
}
