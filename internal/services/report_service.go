package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"distro-backend/internal/repositories"
	"distro-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// ReportService renders admin reports: the route-day reconciliation
// as PDF or CSV, and the warehouse movement ledger as CSV.
type ReportService struct {
	Summary   summaryBuilder
	Expenses  *repositories.ExpenseRepository
	Warehouse *repositories.WarehouseRepository
}

func NewReportService(summary summaryBuilder, expenses *repositories.ExpenseRepository, warehouse *repositories.WarehouseRepository) *ReportService {
	return &ReportService{Summary: summary, Expenses: expenses, Warehouse: warehouse}
}

// DaySummaryPDF renders the reconciliation report for one route day.
func (s *ReportService) DaySummaryPDF(ctx context.Context, date time.Time, routeID int, driverID *int) ([]byte, error) {
	summary, err := s.Summary.Build(ctx, date, routeID, driverID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.Expenses.List(ctx, routeID, date, date)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Day Summary Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	scope := fmt.Sprintf("Route %d", routeID)
	if driverID != nil {
		scope = fmt.Sprintf("Route %d / Driver %d", routeID, *driverID)
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("%s - %s", scope, summary.Date), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if summary.NoData {
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(0, 8, "No activity recorded for this day.", "", 1, "C", false, 0, "")
		return pdfBytes(pdf)
	}

	// Table header
	widths := []float64{50, 22, 22, 28, 28, 30}
	headers := []string{"Product", "Start", "Sold", "Remaining", "Box Price", "Revenue"}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, item := range summary.Items {
		pdf.CellFormat(widths[0], 6, item.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, qtyLabel(item.StartBox, item.StartPcs), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, qtyLabel(item.SoldBox, item.SoldPcs), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, qtyLabel(item.RemainingBox, item.RemainingPcs), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", item.BoxPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, fmt.Sprintf("%.2f", item.TotalRevenue), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3]+widths[4], 7, "Total Revenue", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[5], 7, fmt.Sprintf("%.2f", summary.TotalRevenue), "1", 1, "R", false, 0, "")

	if len(expenses) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Expenses", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		var totalExpense float64
		for _, e := range expenses {
			pdf.CellFormat(110, 6, fmt.Sprintf("%s - %s", e.Category, e.Notes), "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", e.Amount), "1", 1, "R", false, 0, "")
			totalExpense += e.Amount
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(110, 7, "Total Expenses", "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", totalExpense), "1", 1, "R", false, 0, "")
		pdf.Ln(2)
		pdf.CellFormat(0, 7, fmt.Sprintf("Net: %.2f", summary.TotalRevenue-totalExpense), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "I", 8)
	pdf.Ln(6)
	pdf.CellFormat(0, 5, "Generated "+timeutil.FormatIST(timeutil.Now(), timeutil.DisplayLayout), "", 1, "R", false, 0, "")
	return pdfBytes(pdf)
}

// DaySummaryCSV exports the same report as CSV.
func (s *ReportService) DaySummaryCSV(ctx context.Context, date time.Time, routeID int, driverID *int) ([]byte, error) {
	summary, err := s.Summary.Build(ctx, date, routeID, driverID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{
		"product_id", "product_name",
		"start_box", "start_pcs", "sold_box", "sold_pcs",
		"remaining_box", "remaining_pcs", "revenue",
	})
	for _, item := range summary.Items {
		_ = w.Write([]string{
			strconv.Itoa(item.ProductID), item.ProductName,
			strconv.Itoa(item.StartBox), strconv.Itoa(item.StartPcs),
			strconv.Itoa(item.SoldBox), strconv.Itoa(item.SoldPcs),
			strconv.Itoa(item.RemainingBox), strconv.Itoa(item.RemainingPcs),
			fmt.Sprintf("%.2f", item.TotalRevenue),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// WarehouseMovementCSV exports the movement ledger, optionally filtered
// by product.
func (s *ReportService) WarehouseMovementCSV(ctx context.Context, productID, limit int) ([]byte, error) {
	movements, err := s.Warehouse.ListMovements(ctx, productID, limit)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "product", "direction", "box_qty", "pcs_qty", "note", "at"})
	for _, m := range movements {
		_ = w.Write([]string{
			strconv.Itoa(m.ID), m.ProductName, m.Direction,
			strconv.Itoa(m.BoxQty), strconv.Itoa(m.PcsQty), m.Note,
			timeutil.FormatIST(m.CreatedAt, timeutil.DateTimeLayout),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func qtyLabel(box, pcs int) string {
	return fmt.Sprintf("%dB %dP", box, pcs)
}

func pdfBytes(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
