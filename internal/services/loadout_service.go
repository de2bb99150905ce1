package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"distro-backend/internal/cache"
	"distro-backend/internal/metrics"
	"distro-backend/internal/models"
	"distro-backend/internal/quantity"

	"golang.org/x/sync/errgroup"
)

type summaryBuilder interface {
	Build(ctx context.Context, date time.Time, routeID int, driverID *int) (*models.DaySummary, error)
}

type warehouseWriter interface {
	AddStock(ctx context.Context, productID, boxQty, pcsQty int, note string, actorUserID int) error
}

type assignmentCloser interface {
	ReturnStock(ctx context.Context, driverID *int, routeID int, date time.Time) error
	ClearDailyStock(ctx context.Context, driverID *int, routeID int, date time.Time) error
	ListForRoute(ctx context.Context, routeID int, date time.Time) ([]*models.AssignedStock, error)
}

type dayCloseStore interface {
	GetByScope(ctx context.Context, routeID int, driverID *int, date time.Time) (*models.DayClose, error)
	Create(ctx context.Context, d *models.DayClose) error
	UpdateSteps(ctx context.Context, d *models.DayClose) error
	MarkComplete(ctx context.Context, id, remainingAfter int) error
	MarkFailed(ctx context.Context, id int, cause string) error
}

// Archiver exports a finalized summary for audit. Optional.
type Archiver interface {
	ArchiveSummary(ctx context.Context, summary *models.DaySummary) error
}

// LoadOutService closes out a (route, driver?, date): remaining stock
// goes back to the warehouse, the assignment ledger is returned and
// cleared, then a verification read confirms nothing is left. The three
// remote steps share no transaction, so progress is persisted per step
// and a failed close resumes after the last completed step instead of
// repeating it.
type LoadOutService struct {
	Summary   summaryBuilder
	Warehouse warehouseWriter
	Assigned  assignmentCloser
	Closes    dayCloseStore
	Products  productCatalog
	Archive   Archiver // may be nil
}

func NewLoadOutService(summary summaryBuilder, warehouse warehouseWriter, assigned assignmentCloser, closes dayCloseStore, products productCatalog) *LoadOutService {
	return &LoadOutService{
		Summary:   summary,
		Warehouse: warehouse,
		Assigned:  assigned,
		Closes:    closes,
		Products:  products,
	}
}

// Execute runs the load-out saga. trigger is "manual" or "timer";
// closedBy is the acting admin/driver user, nil for the timer path.
// A scope whose close record is already complete is a no-op. Partial
// failure is surfaced to the caller and never retried automatically.
func (s *LoadOutService) Execute(ctx context.Context, routeID int, driverID *int, date time.Time, trigger string, closedBy *int) (*models.DayClose, error) {
	rec, err := s.Closes.GetByScope(ctx, routeID, driverID, date)
	if err != nil {
		return nil, fmt.Errorf("loading close record: %w", err)
	}
	if rec != nil && rec.Status == models.CloseStatusComplete {
		log.Printf("[LoadOut] route=%d date=%s already complete, skipping", routeID, date.Format("2006-01-02"))
		return rec, nil
	}
	if rec == nil {
		rec = &models.DayClose{
			RouteID:        routeID,
			DriverID:       driverID,
			Date:           date,
			Status:         models.CloseStatusPending,
			Trigger:        trigger,
			ClosedByUserID: closedBy,
		}
		if err := s.Closes.Create(ctx, rec); err != nil {
			return nil, fmt.Errorf("creating close record: %w", err)
		}
	}

	summary, err := s.Summary.Build(ctx, date, routeID, driverID)
	if err != nil {
		return rec, s.fail(ctx, rec, trigger, fmt.Errorf("building summary: %w", err))
	}

	// Step 1: warehouse increments for everything still remaining.
	// Re-reading remaining through the summary is the double-credit
	// guard: a retry after the return RPC already zeroed the ledger
	// sees no remaining quantity and issues no increments.
	if !rec.StepIncrements {
		if err := s.incrementWarehouse(ctx, summary, routeID, driverID, closedBy); err != nil {
			return rec, s.fail(ctx, rec, trigger, fmt.Errorf("warehouse increments: %w", err))
		}
		rec.StepIncrements = true
		if err := s.Closes.UpdateSteps(ctx, rec); err != nil {
			return rec, s.fail(ctx, rec, trigger, err)
		}
	}

	// Step 2: authoritative return of the assignment ledger.
	if !rec.StepReturned {
		if err := s.Assigned.ReturnStock(ctx, driverID, routeID, date); err != nil {
			return rec, s.fail(ctx, rec, trigger, fmt.Errorf("stock return: %w", err))
		}
		rec.StepReturned = true
		if err := s.Closes.UpdateSteps(ctx, rec); err != nil {
			return rec, s.fail(ctx, rec, trigger, err)
		}
	}

	// Step 3: mark the day's assignment rows closed.
	if !rec.StepCleared {
		if err := s.Assigned.ClearDailyStock(ctx, driverID, routeID, date); err != nil {
			return rec, s.fail(ctx, rec, trigger, fmt.Errorf("clearing daily stock: %w", err))
		}
		rec.StepCleared = true
		if err := s.Closes.UpdateSteps(ctx, rec); err != nil {
			return rec, s.fail(ctx, rec, trigger, err)
		}
	}

	// Step 4: verification read. Nonzero remaining is a warning, not a
	// failure; the close still completes and the value is persisted for
	// manual reconciliation.
	remainingAfter, err := s.verifyRemaining(ctx, routeID, date)
	if err != nil {
		return rec, s.fail(ctx, rec, trigger, fmt.Errorf("verification read: %w", err))
	}
	rec.StepVerified = true
	rec.RemainingAfter = remainingAfter
	if err := s.Closes.UpdateSteps(ctx, rec); err != nil {
		return rec, s.fail(ctx, rec, trigger, err)
	}
	if remainingAfter != 0 {
		log.Printf("[LoadOut] route=%d date=%s verification shows %d pcs remaining after clear",
			routeID, date.Format("2006-01-02"), remainingAfter)
	}

	if err := s.Closes.MarkComplete(ctx, rec.ID, remainingAfter); err != nil {
		return rec, s.fail(ctx, rec, trigger, err)
	}
	rec.Status = models.CloseStatusComplete

	cache.InvalidateAssignmentCaches(ctx)
	cache.InvalidateWarehouseCaches(ctx)
	metrics.DayClosesTotal.WithLabelValues(trigger, "success").Inc()

	if s.Archive != nil {
		if err := s.Archive.ArchiveSummary(ctx, summary); err != nil {
			log.Printf("[LoadOut] archive failed for route=%d date=%s: %v", routeID, summary.Date, err)
		}
	}
	return rec, nil
}

func (s *LoadOutService) incrementWarehouse(ctx context.Context, summary *models.DaySummary, routeID int, driverID, closedBy *int) error {
	note := fmt.Sprintf("Route %d load-out", routeID)
	if driverID != nil {
		note = fmt.Sprintf("Route %d driver %d load-out", routeID, *driverID)
	}
	actor := 0
	if closedBy != nil {
		actor = *closedBy
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, item := range summary.Items {
		if item.RemainingBox <= 0 && item.RemainingPcs <= 0 {
			continue
		}
		item := item
		g.Go(func() error {
			return s.Warehouse.AddStock(gctx, item.ProductID, item.RemainingBox, item.RemainingPcs, note, actor)
		})
	}
	return g.Wait()
}

// verifyRemaining sums the route's assignment ledger in pieces after
// the clear. Expected to be zero.
func (s *LoadOutService) verifyRemaining(ctx context.Context, routeID int, date time.Time) (int, error) {
	rows, err := s.Assigned.ListForRoute(ctx, routeID, date)
	if err != nil {
		return 0, err
	}
	products, err := s.Products.List(ctx)
	if err != nil {
		return 0, err
	}
	ppbByProduct := make(map[int]int, len(products))
	for _, p := range products {
		ppbByProduct[p.ID] = quantity.Resolve(p.PcsPerBox, p.BoxPrice, p.PcsPrice)
	}

	total := 0
	for _, a := range rows {
		if a.Status != models.AssignedStatusAssigned {
			continue
		}
		total += quantity.ToPieces(a.BoxQty, a.PcsQty, ppbByProduct[a.ProductID])
	}
	return total, nil
}

func (s *LoadOutService) fail(ctx context.Context, rec *models.DayClose, trigger string, cause error) error {
	log.Printf("[LoadOut] route=%d date=%s failed: %v", rec.RouteID, rec.Date.Format("2006-01-02"), cause)
	if err := s.Closes.MarkFailed(ctx, rec.ID, cause.Error()); err != nil {
		log.Printf("[LoadOut] could not persist failure state: %v", err)
	}
	rec.Status = models.CloseStatusFailed
	rec.LastError = cause.Error()
	metrics.DayClosesTotal.WithLabelValues(trigger, "failure").Inc()
	return cause
}
