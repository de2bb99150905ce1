package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"distro-backend/internal/cache"
	"distro-backend/internal/metrics"
	"distro-backend/internal/models"
	"distro-backend/internal/quantity"
	"distro-backend/internal/timeutil"
)

var ErrMalformedSalePayload = errors.New("malformed products_sold payload")

type saleStore interface {
	Create(ctx context.Context, s *models.Sale) error
}

type assignedDeducter interface {
	DeductSold(ctx context.Context, productID int, driverID *int, routeID int, date time.Time, boxQty, pcsQty int) error
}

type shopLedger interface {
	Get(ctx context.Context, id int) (*models.Shop, error)
	AdjustCreditBalance(ctx context.Context, shopID int, delta float64) error
}

// ReceiptPrinter pushes receipt text to the thermal printer bridge.
// Optional; billing succeeds even when printing fails.
type ReceiptPrinter interface {
	Print(ctx context.Context, text string) error
}

// BillingService records a shop sale: normalizes the line items,
// prices them, decrements the driver's assigned stock and posts the
// unpaid portion to the shop's credit balance.
type BillingService struct {
	Products productCatalog
	Sales    saleStore
	Assigned assignedDeducter
	Shops    shopLedger
	Printer  ReceiptPrinter // may be nil
}

func NewBillingService(products productCatalog, sales saleStore, assigned assignedDeducter, shops shopLedger) *BillingService {
	return &BillingService{
		Products: products,
		Sales:    sales,
		Assigned: assigned,
		Shops:    shops,
	}
}

// NormalizeSoldItems accepts the three historical wire shapes of
// products_sold (a bare array, an object wrapper holding the array,
// or a JSON-encoded string of either) and returns clean line items.
// All validation happens here, once; nothing downstream re-parses.
func NormalizeSoldItems(raw json.RawMessage) ([]models.SoldLineItem, error) {
	items, err := decodeSoldItems(raw, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no line items", ErrMalformedSalePayload)
	}
	for i, line := range items {
		if line.ProductID <= 0 {
			return nil, fmt.Errorf("%w: line %d has no product", ErrMalformedSalePayload, i)
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line %d has non-positive quantity", ErrMalformedSalePayload, i)
		}
		if line.Unit != models.UnitBox && line.Unit != models.UnitPcs {
			return nil, fmt.Errorf("%w: line %d has unit %q", ErrMalformedSalePayload, i, line.Unit)
		}
	}
	return items, nil
}

func decodeSoldItems(raw json.RawMessage, depth int) ([]models.SoldLineItem, error) {
	if depth > 2 {
		return nil, fmt.Errorf("%w: nesting too deep", ErrMalformedSalePayload)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrMalformedSalePayload)
	}

	switch trimmed[0] {
	case '[':
		var items []models.SoldLineItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSalePayload, err)
		}
		return items, nil
	case '"':
		// JSON-encoded string containing the real payload.
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSalePayload, err)
		}
		return decodeSoldItems(json.RawMessage(inner), depth+1)
	case '{':
		var wrapper struct {
			Items        json.RawMessage `json:"items"`
			ProductsSold json.RawMessage `json:"products_sold"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSalePayload, err)
		}
		if wrapper.Items != nil {
			return decodeSoldItems(wrapper.Items, depth+1)
		}
		if wrapper.ProductsSold != nil {
			return decodeSoldItems(wrapper.ProductsSold, depth+1)
		}
		return nil, fmt.Errorf("%w: object wrapper has no items", ErrMalformedSalePayload)
	default:
		return nil, fmt.Errorf("%w: unexpected shape", ErrMalformedSalePayload)
	}
}

// CreateSale records a bill for one shop. driverID is the acting
// driver, nil when an admin records the sale at route scope.
func (s *BillingService) CreateSale(ctx context.Context, req *models.CreateSaleRequest, driverID *int) (*models.Sale, string, error) {
	if req.ShopID <= 0 || req.RouteID <= 0 {
		return nil, "", errors.New("shop and route are required")
	}
	date, err := parseBusinessDate(req.Date)
	if err != nil {
		return nil, "", err
	}
	items, err := NormalizeSoldItems(req.ProductsSold)
	if err != nil {
		return nil, "", err
	}

	shop, err := s.Shops.Get(ctx, req.ShopID)
	if err != nil {
		return nil, "", fmt.Errorf("loading shop: %w", err)
	}
	products, err := s.Products.List(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("loading catalog: %w", err)
	}
	catalog := make(map[int]*models.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	var total float64
	for _, line := range items {
		p, ok := catalog[line.ProductID]
		if !ok {
			return nil, "", fmt.Errorf("unknown product %d", line.ProductID)
		}
		ppb := quantity.Resolve(p.PcsPerBox, p.BoxPrice, p.PcsPrice)
		total += lineRevenue(line, p, ppb)
	}

	// Decrement assigned stock line by line. Each deduction is its own
	// statement; a failure midway leaves earlier deductions applied,
	// same as the route's paper process would.
	for _, line := range items {
		boxQty, pcsQty := 0, 0
		if line.Unit == models.UnitBox {
			boxQty = line.Quantity
		} else {
			pcsQty = line.Quantity
		}
		if err := s.Assigned.DeductSold(ctx, line.ProductID, driverID, req.RouteID, date, boxQty, pcsQty); err != nil {
			return nil, "", fmt.Errorf("deducting assigned stock for product %d: %w", line.ProductID, err)
		}
	}

	sale := &models.Sale{
		ShopID:      req.ShopID,
		ShopName:    shop.Name,
		RouteID:     req.RouteID,
		DriverID:    driverID,
		Date:        date,
		Items:       items,
		TotalAmount: total,
		AmountPaid:  req.AmountPaid,
	}
	if err := s.Sales.Create(ctx, sale); err != nil {
		return nil, "", fmt.Errorf("recording sale: %w", err)
	}

	if credit := total - req.AmountPaid; credit != 0 {
		if err := s.Shops.AdjustCreditBalance(ctx, req.ShopID, credit); err != nil {
			log.Printf("[Billing] credit adjustment failed for shop=%d sale=%s: %v", req.ShopID, sale.ReceiptNo, err)
		}
	}

	cache.InvalidateSaleCaches(ctx)
	cache.InvalidateAssignmentCaches(ctx)
	cache.InvalidateShopCaches(ctx)
	metrics.SalesRecordedTotal.Inc()

	receipt := BuildReceipt(sale, shop, catalog)
	if req.Print && s.Printer != nil {
		if err := s.Printer.Print(ctx, receipt); err != nil {
			log.Printf("[Billing] print failed for %s: %v", sale.ReceiptNo, err)
		}
	}
	return sale, receipt, nil
}

func parseBusinessDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("date is required")
	}
	date, err := timeutil.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return date, nil
}
