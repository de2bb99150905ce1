package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"distro-backend/internal/cache"
	"distro-backend/internal/models"
	"distro-backend/internal/quantity"

	"golang.org/x/sync/errgroup"
)

// Data sources for summary building, satisfied by the repositories and
// by in-memory fakes in tests.
type productCatalog interface {
	List(ctx context.Context) ([]*models.Product, error)
}

type saleReader interface {
	ListForDate(ctx context.Context, routeID int, date time.Time) ([]*models.Sale, error)
}

type assignedStockReader interface {
	ListForBilling(ctx context.Context, driverID *int, routeID int, date time.Time) ([]*models.AssignedStock, error)
}

// SummaryService builds the per-product reconciliation report for a
// (route, driver?, date) scope. Start quantities are always derived as
// remaining + sold; they are never read from storage.
type SummaryService struct {
	Products productCatalog
	Sales    saleReader
	Assigned assignedStockReader
	CacheTTL time.Duration
}

func NewSummaryService(products productCatalog, sales saleReader, assigned assignedStockReader) *SummaryService {
	return &SummaryService{
		Products: products,
		Sales:    sales,
		Assigned: assigned,
		CacheTTL: 30 * time.Second,
	}
}

// Build computes the day summary. When driverID is set, assigned rows
// scoped to that driver override route-scoped rows for the same
// product, and only the driver's own sales are counted. An empty result
// is a "no data" condition, not an error.
func (s *SummaryService) Build(ctx context.Context, date time.Time, routeID int, driverID *int) (*models.DaySummary, error) {
	dateStr := date.Format("2006-01-02")
	cacheKey := cache.SummaryKey(dateStr, routeID, driverScope(driverID))
	if data, ok := cache.GetCached(ctx, cacheKey); ok {
		summary := &models.DaySummary{}
		if err := json.Unmarshal(data, summary); err == nil {
			return summary, nil
		}
	}

	var (
		products      []*models.Product
		sales         []*models.Sale
		driverAssigns []*models.AssignedStock
		routeAssigns  []*models.AssignedStock
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.Products.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.Sales.ListForDate(gctx, routeID, date)
		return err
	})
	g.Go(func() error {
		var err error
		routeAssigns, err = s.Assigned.ListForBilling(gctx, nil, routeID, date)
		return err
	})
	if driverID != nil {
		g.Go(func() error {
			var err error
			driverAssigns, err = s.Assigned.ListForBilling(gctx, driverID, routeID, date)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading summary inputs: %w", err)
	}

	// Merge assignment rows by product. Route-scoped rows first, then
	// driver-scoped rows replace them where both exist.
	remaining := make(map[int]*models.AssignedStock)
	for _, a := range routeAssigns {
		remaining[a.ProductID] = a
	}
	for _, a := range driverAssigns {
		remaining[a.ProductID] = a
	}

	if driverID != nil {
		sales = filterSalesByDriver(sales, *driverID)
	}

	summary := &models.DaySummary{
		Date:     dateStr,
		RouteID:  routeID,
		DriverID: driverID,
		Items:    []models.SummaryItem{},
	}

	for _, p := range products {
		ppb := quantity.Resolve(p.PcsPerBox, p.BoxPrice, p.PcsPrice)

		remainingPcs := 0
		if a, ok := remaining[p.ID]; ok {
			remainingPcs = quantity.ToPieces(a.BoxQty, a.PcsQty, ppb)
		}

		soldPcs, revenue := tallySold(sales, p, ppb)
		startPcs := remainingPcs + soldPcs

		if startPcs <= 0 && soldPcs <= 0 {
			continue
		}

		item := models.SummaryItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			BoxPrice:     p.BoxPrice,
			PcsPrice:     pcsPrice(p, ppb),
			TotalRevenue: revenue,
		}
		item.StartBox, item.StartPcs = quantity.FromPieces(startPcs, ppb)
		item.SoldBox, item.SoldPcs = quantity.FromPieces(soldPcs, ppb)
		item.RemainingBox, item.RemainingPcs = quantity.FromPieces(remainingPcs, ppb)

		summary.Items = append(summary.Items, item)
		summary.TotalStartPcs += startPcs
		summary.TotalSoldPcs += soldPcs
		summary.TotalRemaining += remainingPcs
		summary.TotalRevenue += revenue
		if remainingPcs > 0 {
			summary.HasAssignedStock = true
		}
	}

	summary.NoData = len(summary.Items) == 0

	if data, err := json.Marshal(summary); err == nil {
		cache.SetCached(ctx, cacheKey, data, s.CacheTTL)
	}
	return summary, nil
}

// tallySold scans every sale's line items for one product, converting
// each line to pieces via its declared unit. Revenue prefers the line's
// own total, then price * quantity, then the catalog price by unit.
func tallySold(sales []*models.Sale, p *models.Product, ppb int) (soldPcs int, revenue float64) {
	for _, sale := range sales {
		for _, line := range sale.Items {
			if line.ProductID != p.ID {
				continue
			}
			switch line.Unit {
			case models.UnitBox:
				soldPcs += line.Quantity * ppb
			default:
				soldPcs += line.Quantity
			}
			revenue += lineRevenue(line, p, ppb)
		}
	}
	return soldPcs, revenue
}

func lineRevenue(line models.SoldLineItem, p *models.Product, ppb int) float64 {
	if line.Total != nil {
		return *line.Total
	}
	if line.Price != nil {
		return *line.Price * float64(line.Quantity)
	}
	if line.Unit == models.UnitBox {
		return p.BoxPrice * float64(line.Quantity)
	}
	return pcsPrice(p, ppb) * float64(line.Quantity)
}

func pcsPrice(p *models.Product, ppb int) float64 {
	if p.PcsPrice > 0 {
		return p.PcsPrice
	}
	if ppb > 0 {
		return p.BoxPrice / float64(ppb)
	}
	return 0
}

func filterSalesByDriver(sales []*models.Sale, driverID int) []*models.Sale {
	filtered := make([]*models.Sale, 0, len(sales))
	for _, s := range sales {
		if s.DriverID != nil && *s.DriverID == driverID {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func driverScope(driverID *int) string {
	if driverID == nil {
		return "route"
	}
	return fmt.Sprintf("d%d", *driverID)
}
