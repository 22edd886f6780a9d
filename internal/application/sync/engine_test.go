package sync

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/integration"
	"github.com/storesync/backend/internal/domain/shared"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
)

type engineFixture struct {
	engine          *Engine
	gateway         *MockStorefrontGateway
	creds           *MockCredentialsProvider
	jobs            *MockJobRepository
	jobErrors       *MockJobErrorRepository
	stagedCustomers *MockStagedCustomerRepository
	customers       *MockCustomerRepository
	cache           *MockStatusCache
}

func newEngineFixture() *engineFixture {
	f := &engineFixture{
		gateway:         new(MockStorefrontGateway),
		creds:           new(MockCredentialsProvider),
		jobs:            new(MockJobRepository),
		jobErrors:       new(MockJobErrorRepository),
		stagedCustomers: new(MockStagedCustomerRepository),
		customers:       new(MockCustomerRepository),
		cache:           new(MockStatusCache),
	}
	logger := zap.NewNop()
	stagedProducts := new(MockStagedProductRepository)
	stagedOrders := new(MockStagedOrderRepository)
	customerStaging := f.stagedCustomers
	f.engine = NewEngine(
		f.gateway,
		f.creds,
		f.jobs,
		f.jobErrors,
		stagedProducts,
		stagedOrders,
		customerStaging,
		NewProductLinker(new(MockProductRepository), new(MockVariantRepository), stagedProducts, new(MockProductLinkRepository), logger),
		NewOrderLinker(new(MockOrderRepository), new(MockOrderItemRepository), f.customers, new(MockProductLinkRepository), stagedOrders, NewTagService(new(MockTagRepository), logger), NewNoteExtractor(new(MockOrderNoteRepository), logger), logger),
		NewCustomerLinker(f.customers, customerStaging, logger),
		f.cache,
		Options{PageSize: 200, InterPageDelay: time.Millisecond, IncrementalBuffer: 2 * time.Minute},
		logger,
	)
	return f
}

func customerPage(n int, cursor string, hasNext bool) *integration.CustomerPage {
	page := &integration.CustomerPage{
		PageInfo: integration.PageInfo{EndCursor: cursor, HasNextPage: hasNext},
	}
	for i := 0; i < n; i++ {
		page.Customers = append(page.Customers, integration.PlatformCustomer{
			ID: fmt.Sprintf("%s-c%d", cursor, i),
		})
	}
	return page
}

func validCreds() integration.Credentials {
	return integration.Credentials{ShopDomain: "acme.example.com", AccessToken: "token"}
}

func TestEngineFullSyncCountsAllPages(t *testing.T) {
	f := newEngineFixture()
	tenantID := uuid.New()
	job := syncdomain.NewJob(tenantID, syncdomain.EntityKindCustomers, nil)

	f.jobs.On("FindByID", mock.Anything, tenantID, job.ID).Return(job, nil)
	f.jobs.On("Update", mock.Anything, job).Return(nil)
	f.creds.On("Credentials", mock.Anything, tenantID).Return(validCreds(), nil)
	f.cache.On("Put", mock.Anything, job).Return(nil)

	f.gateway.On("FetchCustomers", mock.Anything, validCreds(), integration.PageRequest{Cursor: "", PageSize: 200}).
		Return(customerPage(200, "c1", true), nil)
	f.gateway.On("FetchCustomers", mock.Anything, validCreds(), integration.PageRequest{Cursor: "c1", PageSize: 200}).
		Return(customerPage(200, "c2", true), nil)
	f.gateway.On("FetchCustomers", mock.Anything, validCreds(), integration.PageRequest{Cursor: "c2", PageSize: 200}).
		Return(customerPage(47, "c3", false), nil)

	f.stagedCustomers.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)
	f.stagedCustomers.On("SetLocalCustomer", mock.Anything, tenantID, mock.Anything, mock.Anything).Return(nil)
	f.customers.On("FindByPlatformID", mock.Anything, tenantID, mock.Anything).Return(nil, shared.ErrNotFound)
	f.customers.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := f.engine.Run(context.Background(), syncdomain.Request{
		TenantID:   tenantID,
		EntityKind: syncdomain.EntityKindCustomers,
		Mode:       syncdomain.ModeFull,
		JobID:      job.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, syncdomain.StatusCompleted, job.Status)
	assert.Equal(t, int64(447), job.TotalItems)
	assert.Equal(t, int64(447), job.ProcessedItems)
	assert.Equal(t, int64(447), job.SuccessCount+job.ErrorCount)
	assert.Zero(t, job.ErrorCount)
	assert.Equal(t, "c3", job.Cursor)
	require.NotNil(t, job.CompletedAt)
}

func TestEngineIncrementalProcessesOnePage(t *testing.T) {
	f := newEngineFixture()
	tenantID := uuid.New()
	job := syncdomain.NewJob(tenantID, syncdomain.EntityKindCustomers, nil)
	watermark := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	f.jobs.On("FindByID", mock.Anything, tenantID, job.ID).Return(job, nil)
	f.jobs.On("Update", mock.Anything, job).Return(nil)
	f.creds.On("Credentials", mock.Anything, tenantID).Return(validCreds(), nil)
	f.cache.On("Put", mock.Anything, job).Return(nil)

	// the watermark is widened by the skew buffer
	f.gateway.On("FetchCustomers", mock.Anything, validCreds(), mock.MatchedBy(func(req integration.PageRequest) bool {
		return req.Filter.UpdatedAfter != nil &&
			req.Filter.UpdatedAfter.Equal(watermark.Add(-2*time.Minute))
	})).Return(customerPage(5, "c1", true), nil)

	f.stagedCustomers.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)
	f.stagedCustomers.On("SetLocalCustomer", mock.Anything, tenantID, mock.Anything, mock.Anything).Return(nil)
	f.customers.On("FindByPlatformID", mock.Anything, tenantID, mock.Anything).Return(nil, shared.ErrNotFound)
	f.customers.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := f.engine.Run(context.Background(), syncdomain.Request{
		TenantID:     tenantID,
		EntityKind:   syncdomain.EntityKindCustomers,
		Mode:         syncdomain.ModeIncremental,
		UpdatedAfter: &watermark,
		JobID:        job.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, syncdomain.StatusCompleted, job.Status)
	assert.Equal(t, int64(5), job.ProcessedItems)
	// exactly one page despite has_next being true
	f.gateway.AssertNumberOfCalls(t, "FetchCustomers", 1)
}

func TestEngineTargetedIncrementalSkipsWatermark(t *testing.T) {
	f := newEngineFixture()
	tenantID := uuid.New()
	job := syncdomain.NewJob(tenantID, syncdomain.EntityKindCustomers, nil)

	f.jobs.On("FindByID", mock.Anything, tenantID, job.ID).Return(job, nil)
	f.jobs.On("Update", mock.Anything, job).Return(nil)
	f.creds.On("Credentials", mock.Anything, tenantID).Return(validCreds(), nil)
	f.cache.On("Put", mock.Anything, job).Return(nil)

	// the named record must be fetched even if it updated before the last run
	f.gateway.On("FetchCustomers", mock.Anything, validCreds(), mock.MatchedBy(func(req integration.PageRequest) bool {
		return len(req.Filter.IDs) == 1 && req.Filter.IDs[0] == "c9" && req.Filter.UpdatedAfter == nil
	})).Return(customerPage(1, "c1", false), nil)

	f.stagedCustomers.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)
	f.stagedCustomers.On("SetLocalCustomer", mock.Anything, tenantID, mock.Anything, mock.Anything).Return(nil)
	f.customers.On("FindByPlatformID", mock.Anything, tenantID, mock.Anything).Return(nil, shared.ErrNotFound)
	f.customers.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := f.engine.Run(context.Background(), syncdomain.Request{
		TenantID:    tenantID,
		EntityKind:  syncdomain.EntityKindCustomers,
		Mode:        syncdomain.ModeIncremental,
		PlatformIDs: []string{"c9"},
		JobID:       job.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, syncdomain.StatusCompleted, job.Status)
	f.jobs.AssertNotCalled(t, "LatestCompleted", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngineNonRetryableFailureFailsJob(t *testing.T) {
	f := newEngineFixture()
	tenantID := uuid.New()
	job := syncdomain.NewJob(tenantID, syncdomain.EntityKindCustomers, nil)

	f.jobs.On("FindByID", mock.Anything, tenantID, job.ID).Return(job, nil)
	f.jobs.On("Update", mock.Anything, job).Return(nil)
	f.creds.On("Credentials", mock.Anything, tenantID).Return(validCreds(), nil)
	f.cache.On("Put", mock.Anything, job).Return(nil)
	f.gateway.On("FetchCustomers", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, integration.ErrPlatformAuthFailed)

	err := f.engine.Run(context.Background(), syncdomain.Request{
		TenantID:   tenantID,
		EntityKind: syncdomain.EntityKindCustomers,
		Mode:       syncdomain.ModeFull,
		JobID:      job.ID,
	})

	assert.ErrorIs(t, err, integration.ErrPlatformAuthFailed)
	assert.Equal(t, syncdomain.StatusFailed, job.Status)
	assert.NotEmpty(t, job.ErrorMessage)
}

func TestEngineStopsWhenCancelledBetweenPages(t *testing.T) {
	f := newEngineFixture()
	tenantID := uuid.New()
	job := syncdomain.NewJob(tenantID, syncdomain.EntityKindCustomers, nil)

	cancelled := *job
	cancelled.Status = syncdomain.StatusCancelled

	// open + first poll see the live job; the poll after page one sees the
	// cancellation
	f.jobs.On("FindByID", mock.Anything, tenantID, job.ID).Return(job, nil).Twice()
	f.jobs.On("FindByID", mock.Anything, tenantID, job.ID).Return(&cancelled, nil)
	f.jobs.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.creds.On("Credentials", mock.Anything, tenantID).Return(validCreds(), nil)
	f.cache.On("Put", mock.Anything, mock.Anything).Return(nil)

	f.gateway.On("FetchCustomers", mock.Anything, mock.Anything, mock.Anything).
		Return(customerPage(10, "c1", true), nil)
	f.stagedCustomers.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)
	f.stagedCustomers.On("SetLocalCustomer", mock.Anything, tenantID, mock.Anything, mock.Anything).Return(nil)
	f.customers.On("FindByPlatformID", mock.Anything, tenantID, mock.Anything).Return(nil, shared.ErrNotFound)
	f.customers.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := f.engine.Run(context.Background(), syncdomain.Request{
		TenantID:   tenantID,
		EntityKind: syncdomain.EntityKindCustomers,
		Mode:       syncdomain.ModeFull,
		JobID:      job.ID,
	})

	require.NoError(t, err)
	f.gateway.AssertNumberOfCalls(t, "FetchCustomers", 1)
	assert.Equal(t, syncdomain.StatusCancelled, job.Status)
}

func TestEngineRecordErrorsArePersisted(t *testing.T) {
	f := newEngineFixture()
	tenantID := uuid.New()
	job := syncdomain.NewJob(tenantID, syncdomain.EntityKindCustomers, nil)

	f.jobs.On("FindByID", mock.Anything, tenantID, job.ID).Return(job, nil)
	f.jobs.On("Update", mock.Anything, job).Return(nil)
	f.creds.On("Credentials", mock.Anything, tenantID).Return(validCreds(), nil)
	f.cache.On("Put", mock.Anything, job).Return(nil)

	f.gateway.On("FetchCustomers", mock.Anything, mock.Anything, mock.Anything).
		Return(customerPage(2, "c1", false), nil)
	f.stagedCustomers.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)
	f.stagedCustomers.On("SetLocalCustomer", mock.Anything, tenantID, mock.Anything, mock.Anything).Return(nil)

	// first record trips a domain error, second succeeds
	f.customers.On("FindByPlatformID", mock.Anything, tenantID, "c1-c0").
		Return(nil, shared.NewDomainError("CONFLICT", "ambiguous match"))
	f.customers.On("FindByPlatformID", mock.Anything, tenantID, "c1-c1").
		Return(nil, shared.ErrNotFound)
	f.customers.On("Create", mock.Anything, mock.Anything).Return(nil)

	f.jobErrors.On("CreateBatch", mock.Anything, mock.MatchedBy(func(errs []*syncdomain.JobError) bool {
		return len(errs) == 1 && errs[0].PlatformID == "c1-c0" && errs[0].JobID == job.ID
	})).Return(nil)

	err := f.engine.Run(context.Background(), syncdomain.Request{
		TenantID:   tenantID,
		EntityKind: syncdomain.EntityKindCustomers,
		Mode:       syncdomain.ModeFull,
		JobID:      job.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), job.ProcessedItems)
	assert.Equal(t, int64(1), job.ErrorCount)
	assert.Equal(t, int64(1), job.SuccessCount)
	f.jobErrors.AssertExpectations(t)
}
