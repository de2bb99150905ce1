package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"distro-backend/internal/cache"
	"distro-backend/internal/metrics"
	"distro-backend/internal/models"
	"distro-backend/internal/repositories"
)

// AssignmentService moves stock from the warehouse onto a route day.
// Each item is deducted from the warehouse first, then upserted into
// the assignment ledger; re-assigning the same product on the same day
// adds to the existing row.
type AssignmentService struct {
	Warehouse *repositories.WarehouseRepository
	Assigned  *repositories.AssignedStockRepository
}

func NewAssignmentService(warehouse *repositories.WarehouseRepository, assigned *repositories.AssignedStockRepository) *AssignmentService {
	return &AssignmentService{Warehouse: warehouse, Assigned: assigned}
}

func (s *AssignmentService) AssignStock(ctx context.Context, req *models.AssignStockRequest, actorUserID int) error {
	if req.RouteID <= 0 {
		return errors.New("route is required")
	}
	if len(req.Items) == 0 {
		return errors.New("no items to assign")
	}
	date, err := parseBusinessDate(req.Date)
	if err != nil {
		return err
	}
	for _, item := range req.Items {
		if item.ProductID <= 0 || (item.BoxQty <= 0 && item.PcsQty <= 0) {
			return errors.New("each item needs a product and a positive quantity")
		}
	}

	note := fmt.Sprintf("Assigned to route %d for %s", req.RouteID, req.Date)
	for _, item := range req.Items {
		if err := s.Warehouse.DeductStock(ctx, item.ProductID, item.BoxQty, item.PcsQty, note, actorUserID); err != nil {
			return fmt.Errorf("product %d: %w", item.ProductID, err)
		}
		a := &models.AssignedStock{
			ProductID: item.ProductID,
			RouteID:   req.RouteID,
			DriverID:  req.DriverID,
			Date:      date,
			BoxQty:    item.BoxQty,
			PcsQty:    item.PcsQty,
			Status:    models.AssignedStatusAssigned,
		}
		if err := s.Assigned.Upsert(ctx, a); err != nil {
			// Warehouse already deducted; put it back so the ledgers
			// stay consistent.
			if revertErr := s.Warehouse.AddStock(ctx, item.ProductID, item.BoxQty, item.PcsQty,
				"Revert: "+note, actorUserID); revertErr != nil {
				log.Printf("[Assignment] revert failed for product=%d: %v", item.ProductID, revertErr)
			}
			return fmt.Errorf("assigning product %d: %w", item.ProductID, err)
		}
	}

	cache.InvalidateAssignmentCaches(ctx)
	cache.InvalidateWarehouseCaches(ctx)
	metrics.StockAssignmentsTotal.Inc()
	return nil
}
