package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"distro-backend/internal/models"

	"github.com/stretchr/testify/require"
)

type fakeSummaryBuilder struct {
	summary *models.DaySummary
	err     error
}

func (f *fakeSummaryBuilder) Build(ctx context.Context, date time.Time, routeID int, driverID *int) (*models.DaySummary, error) {
	return f.summary, f.err
}

type addStockCall struct {
	productID, boxQty, pcsQty, actor int
	note                             string
}

type fakeWarehouse struct {
	calls []addStockCall
	err   error
}

func (f *fakeWarehouse) AddStock(ctx context.Context, productID, boxQty, pcsQty int, note string, actorUserID int) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, addStockCall{productID, boxQty, pcsQty, actorUserID, note})
	return nil
}

type fakeAssignmentCloser struct {
	returned  bool
	cleared   bool
	rows      []*models.AssignedStock
	returnErr error
	clearErr  error
}

func (f *fakeAssignmentCloser) ReturnStock(ctx context.Context, driverID *int, routeID int, date time.Time) error {
	if f.returnErr != nil {
		return f.returnErr
	}
	f.returned = true
	return nil
}

func (f *fakeAssignmentCloser) ClearDailyStock(ctx context.Context, driverID *int, routeID int, date time.Time) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = true
	return nil
}

func (f *fakeAssignmentCloser) ListForRoute(ctx context.Context, routeID int, date time.Time) ([]*models.AssignedStock, error) {
	return f.rows, nil
}

type fakeCloseStore struct {
	existing *models.DayClose
	created  *models.DayClose
	updates  int
	complete bool
	failed   string
	nextID   int
}

func (f *fakeCloseStore) GetByScope(ctx context.Context, routeID int, driverID *int, date time.Time) (*models.DayClose, error) {
	return f.existing, nil
}

func (f *fakeCloseStore) Create(ctx context.Context, d *models.DayClose) error {
	f.nextID++
	d.ID = f.nextID
	f.created = d
	return nil
}

func (f *fakeCloseStore) UpdateSteps(ctx context.Context, d *models.DayClose) error {
	f.updates++
	return nil
}

func (f *fakeCloseStore) MarkComplete(ctx context.Context, id, remainingAfter int) error {
	f.complete = true
	return nil
}

func (f *fakeCloseStore) MarkFailed(ctx context.Context, id int, cause string) error {
	f.failed = cause
	return nil
}

func loadOutFixture(summary *models.DaySummary) (*LoadOutService, *fakeWarehouse, *fakeAssignmentCloser, *fakeCloseStore) {
	warehouse := &fakeWarehouse{}
	closer := &fakeAssignmentCloser{}
	store := &fakeCloseStore{}
	svc := NewLoadOutService(
		&fakeSummaryBuilder{summary: summary},
		warehouse, closer, store,
		&fakeCatalog{products: []*models.Product{sodaA()}},
	)
	return svc, warehouse, closer, store
}

func TestExecuteHappyPath(t *testing.T) {
	date := mustDate(t, "2025-01-10")
	summary := &models.DaySummary{
		Date: "2025-01-10", RouteID: 1,
		Items: []models.SummaryItem{
			{ProductID: 1, ProductName: "Soda-A", RemainingBox: 2, RemainingPcs: 3},
			{ProductID: 2, ProductName: "Water", RemainingBox: 0, RemainingPcs: 0},
		},
		HasAssignedStock: true,
	}
	svc, warehouse, closer, store := loadOutFixture(summary)

	rec, err := svc.Execute(context.Background(), 1, nil, date, models.CloseTriggerManual, intPtr(42))
	require.NoError(t, err)
	require.Equal(t, models.CloseStatusComplete, rec.Status)
	require.True(t, rec.StepIncrements)
	require.True(t, rec.StepReturned)
	require.True(t, rec.StepCleared)
	require.True(t, rec.StepVerified)
	require.Equal(t, 0, rec.RemainingAfter)

	// Only the item with remaining stock goes back to the warehouse.
	require.Len(t, warehouse.calls, 1)
	require.Equal(t, addStockCall{1, 2, 3, 42, "Route 1 load-out"}, warehouse.calls[0])
	require.True(t, closer.returned)
	require.True(t, closer.cleared)
	require.True(t, store.complete)
}

func TestExecuteCompletedScopeIsNoOp(t *testing.T) {
	date := mustDate(t, "2025-01-10")
	svc, warehouse, closer, store := loadOutFixture(&models.DaySummary{Date: "2025-01-10", RouteID: 1})
	store.existing = &models.DayClose{ID: 9, RouteID: 1, Date: date, Status: models.CloseStatusComplete}

	rec, err := svc.Execute(context.Background(), 1, nil, date, models.CloseTriggerTimer, nil)
	require.NoError(t, err)
	require.Equal(t, 9, rec.ID)
	require.Empty(t, warehouse.calls)
	require.False(t, closer.returned)
}

func TestExecuteResumeSkipsCompletedSteps(t *testing.T) {
	// A retry after the increments already ran must not credit the
	// warehouse a second time.
	date := mustDate(t, "2025-01-10")
	summary := &models.DaySummary{
		Date: "2025-01-10", RouteID: 1,
		Items: []models.SummaryItem{{ProductID: 1, RemainingBox: 2}},
	}
	svc, warehouse, closer, store := loadOutFixture(summary)
	store.existing = &models.DayClose{
		ID: 3, RouteID: 1, Date: date,
		Status:         models.CloseStatusFailed,
		StepIncrements: true,
	}

	rec, err := svc.Execute(context.Background(), 1, nil, date, models.CloseTriggerManual, intPtr(42))
	require.NoError(t, err)
	require.Equal(t, models.CloseStatusComplete, rec.Status)
	require.Empty(t, warehouse.calls)
	require.True(t, closer.returned)
	require.True(t, closer.cleared)
}

func TestExecuteStepFailurePersistsProgress(t *testing.T) {
	date := mustDate(t, "2025-01-10")
	summary := &models.DaySummary{
		Date: "2025-01-10", RouteID: 1,
		Items: []models.SummaryItem{{ProductID: 1, RemainingBox: 2}},
	}
	svc, warehouse, closer, store := loadOutFixture(summary)
	closer.returnErr = errors.New("ledger timeout")

	rec, err := svc.Execute(context.Background(), 1, nil, date, models.CloseTriggerManual, intPtr(42))
	require.Error(t, err)
	require.Equal(t, models.CloseStatusFailed, rec.Status)
	require.Contains(t, rec.LastError, "ledger timeout")
	require.Contains(t, store.failed, "ledger timeout")

	// Step 1 completed before the failure and stays marked.
	require.True(t, rec.StepIncrements)
	require.False(t, rec.StepReturned)
	require.Len(t, warehouse.calls, 1)
	require.False(t, store.complete)
}

func TestExecuteNonzeroVerificationStillCompletes(t *testing.T) {
	date := mustDate(t, "2025-01-10")
	svc, _, closer, store := loadOutFixture(&models.DaySummary{Date: "2025-01-10", RouteID: 1})
	closer.rows = []*models.AssignedStock{
		{ProductID: 1, BoxQty: 0, PcsQty: 7, Status: models.AssignedStatusAssigned},
		{ProductID: 1, BoxQty: 5, PcsQty: 0, Status: models.AssignedStatusClosed}, // closed rows don't count
	}

	rec, err := svc.Execute(context.Background(), 1, nil, date, models.CloseTriggerManual, nil)
	require.NoError(t, err)
	require.Equal(t, models.CloseStatusComplete, rec.Status)
	require.Equal(t, 7, rec.RemainingAfter)
	require.True(t, store.complete)
}

func TestExecuteDriverScopedNote(t *testing.T) {
	date := mustDate(t, "2025-01-10")
	summary := &models.DaySummary{
		Date: "2025-01-10", RouteID: 1, DriverID: intPtr(7),
		Items: []models.SummaryItem{{ProductID: 1, RemainingPcs: 4}},
	}
	svc, warehouse, _, _ := loadOutFixture(summary)

	_, err := svc.Execute(context.Background(), 1, intPtr(7), date, models.CloseTriggerTimer, nil)
	require.NoError(t, err)
	require.Len(t, warehouse.calls, 1)
	require.Equal(t, "Route 1 driver 7 load-out", warehouse.calls[0].note)
	require.Equal(t, 0, warehouse.calls[0].actor)
}
