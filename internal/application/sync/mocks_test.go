package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/integration"
	"github.com/storesync/backend/internal/domain/partner"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
	"github.com/storesync/backend/internal/domain/tagging"
	"github.com/storesync/backend/internal/domain/trade"
)

// MockStorefrontGateway is a mock implementation of StorefrontGateway
type MockStorefrontGateway struct {
	mock.Mock
}

func (m *MockStorefrontGateway) FetchProducts(ctx context.Context, creds integration.Credentials, req integration.PageRequest) (*integration.ProductPage, error) {
	args := m.Called(ctx, creds, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ProductPage), args.Error(1)
}

func (m *MockStorefrontGateway) FetchOrders(ctx context.Context, creds integration.Credentials, req integration.PageRequest) (*integration.OrderPage, error) {
	args := m.Called(ctx, creds, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.OrderPage), args.Error(1)
}

func (m *MockStorefrontGateway) FetchCustomers(ctx context.Context, creds integration.Credentials, req integration.PageRequest) (*integration.CustomerPage, error) {
	args := m.Called(ctx, creds, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.CustomerPage), args.Error(1)
}

// MockCredentialsProvider is a mock implementation of CredentialsProvider
type MockCredentialsProvider struct {
	mock.Mock
}

func (m *MockCredentialsProvider) Credentials(ctx context.Context, tenantID uuid.UUID) (integration.Credentials, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(integration.Credentials), args.Error(1)
}

// MockJobRepository is a mock implementation of sync.JobRepository
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) Create(ctx context.Context, job *syncdomain.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) Update(ctx context.Context, job *syncdomain.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) FindByID(ctx context.Context, tenantID, jobID uuid.UUID) (*syncdomain.Job, error) {
	args := m.Called(ctx, tenantID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncdomain.Job), args.Error(1)
}

func (m *MockJobRepository) FindActive(ctx context.Context, tenantID uuid.UUID, kind syncdomain.EntityKind) (*syncdomain.Job, error) {
	args := m.Called(ctx, tenantID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncdomain.Job), args.Error(1)
}

func (m *MockJobRepository) List(ctx context.Context, tenantID uuid.UUID, filter syncdomain.JobFilter) ([]syncdomain.Job, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]syncdomain.Job), args.Get(1).(int64), args.Error(2)
}

func (m *MockJobRepository) LatestCompleted(ctx context.Context, tenantID uuid.UUID, kind syncdomain.EntityKind) (*syncdomain.Job, error) {
	args := m.Called(ctx, tenantID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncdomain.Job), args.Error(1)
}

// MockJobErrorRepository is a mock implementation of sync.JobErrorRepository
type MockJobErrorRepository struct {
	mock.Mock
}

func (m *MockJobErrorRepository) CreateBatch(ctx context.Context, errs []*syncdomain.JobError) error {
	args := m.Called(ctx, errs)
	return args.Error(0)
}

func (m *MockJobErrorRepository) ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]syncdomain.JobError, int64, error) {
	args := m.Called(ctx, jobID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]syncdomain.JobError), args.Get(1).(int64), args.Error(2)
}

// MockStagedProductRepository is a mock implementation of StagedProductRepository
type MockStagedProductRepository struct {
	mock.Mock
}

func (m *MockStagedProductRepository) UpsertBatch(ctx context.Context, rows []*integration.StagedProduct) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockStagedProductRepository) UpsertVariantBatch(ctx context.Context, rows []*integration.StagedVariant) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockStagedProductRepository) FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]integration.StagedProduct, error) {
	args := m.Called(ctx, tenantID, platformIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.StagedProduct), args.Error(1)
}

func (m *MockStagedProductRepository) FindVariantsByPlatformProductIDs(ctx context.Context, tenantID uuid.UUID, platformProductIDs []string) ([]integration.StagedVariant, error) {
	args := m.Called(ctx, tenantID, platformProductIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.StagedVariant), args.Error(1)
}

func (m *MockStagedProductRepository) SetLocalProduct(ctx context.Context, tenantID uuid.UUID, platformProductID string, localProductID uuid.UUID) error {
	args := m.Called(ctx, tenantID, platformProductID, localProductID)
	return args.Error(0)
}

func (m *MockStagedProductRepository) SetLocalVariant(ctx context.Context, tenantID uuid.UUID, platformVariantID string, localVariantID uuid.UUID) error {
	args := m.Called(ctx, tenantID, platformVariantID, localVariantID)
	return args.Error(0)
}

func (m *MockStagedProductRepository) MarkWebhook(ctx context.Context, tenantID uuid.UUID, platformProductID string, at time.Time) error {
	args := m.Called(ctx, tenantID, platformProductID, at)
	return args.Error(0)
}

func (m *MockStagedProductRepository) Deactivate(ctx context.Context, tenantID uuid.UUID, platformProductID string) error {
	args := m.Called(ctx, tenantID, platformProductID)
	return args.Error(0)
}

// MockStagedOrderRepository is a mock implementation of StagedOrderRepository
type MockStagedOrderRepository struct {
	mock.Mock
}

func (m *MockStagedOrderRepository) UpsertBatch(ctx context.Context, rows []*integration.StagedOrder) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockStagedOrderRepository) FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]integration.StagedOrder, error) {
	args := m.Called(ctx, tenantID, platformIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.StagedOrder), args.Error(1)
}

func (m *MockStagedOrderRepository) SetLocalOrder(ctx context.Context, tenantID uuid.UUID, platformOrderID string, localOrderID uuid.UUID) error {
	args := m.Called(ctx, tenantID, platformOrderID, localOrderID)
	return args.Error(0)
}

func (m *MockStagedOrderRepository) MarkWebhook(ctx context.Context, tenantID uuid.UUID, platformOrderID string, at time.Time) error {
	args := m.Called(ctx, tenantID, platformOrderID, at)
	return args.Error(0)
}

func (m *MockStagedOrderRepository) Deactivate(ctx context.Context, tenantID uuid.UUID, platformOrderID string) error {
	args := m.Called(ctx, tenantID, platformOrderID)
	return args.Error(0)
}

// MockStagedCustomerRepository is a mock implementation of StagedCustomerRepository
type MockStagedCustomerRepository struct {
	mock.Mock
}

func (m *MockStagedCustomerRepository) UpsertBatch(ctx context.Context, rows []*integration.StagedCustomer) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockStagedCustomerRepository) FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]integration.StagedCustomer, error) {
	args := m.Called(ctx, tenantID, platformIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.StagedCustomer), args.Error(1)
}

func (m *MockStagedCustomerRepository) SetLocalCustomer(ctx context.Context, tenantID uuid.UUID, platformCustomerID string, localCustomerID uuid.UUID) error {
	args := m.Called(ctx, tenantID, platformCustomerID, localCustomerID)
	return args.Error(0)
}

func (m *MockStagedCustomerRepository) MarkWebhook(ctx context.Context, tenantID uuid.UUID, platformCustomerID string, at time.Time) error {
	args := m.Called(ctx, tenantID, platformCustomerID, at)
	return args.Error(0)
}

func (m *MockStagedCustomerRepository) Deactivate(ctx context.Context, tenantID uuid.UUID, platformCustomerID string) error {
	args := m.Called(ctx, tenantID, platformCustomerID)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) CreateBatch(ctx context.Context, products []*catalog.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, platformIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByPlatformID(ctx context.Context, tenantID uuid.UUID, platformID string) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, platformID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

// MockVariantRepository is a mock implementation of catalog.VariantRepository
type MockVariantRepository struct {
	mock.Mock
}

func (m *MockVariantRepository) Create(ctx context.Context, variant *catalog.Variant) error {
	args := m.Called(ctx, variant)
	return args.Error(0)
}

func (m *MockVariantRepository) CreateBatch(ctx context.Context, variants []*catalog.Variant) error {
	args := m.Called(ctx, variants)
	return args.Error(0)
}

func (m *MockVariantRepository) Update(ctx context.Context, variant *catalog.Variant) error {
	args := m.Called(ctx, variant)
	return args.Error(0)
}

func (m *MockVariantRepository) FindByProductID(ctx context.Context, tenantID, productID uuid.UUID) ([]catalog.Variant, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Variant), args.Error(1)
}

func (m *MockVariantRepository) FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]catalog.Variant, error) {
	args := m.Called(ctx, tenantID, platformIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Variant), args.Error(1)
}

// MockProductLinkRepository is a mock implementation of ProductLinkRepository
type MockProductLinkRepository struct {
	mock.Mock
}

func (m *MockProductLinkRepository) UpsertBatch(ctx context.Context, links []*integration.ProductLink) error {
	args := m.Called(ctx, links)
	return args.Error(0)
}

func (m *MockProductLinkRepository) FindByPlatformVariant(ctx context.Context, tenantID uuid.UUID, platformProductID, platformVariantID string) (*integration.ProductLink, error) {
	args := m.Called(ctx, tenantID, platformProductID, platformVariantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ProductLink), args.Error(1)
}

func (m *MockProductLinkRepository) FindByPlatformProductIDs(ctx context.Context, tenantID uuid.UUID, platformProductIDs []string) ([]integration.ProductLink, error) {
	args := m.Called(ctx, tenantID, platformProductIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ProductLink), args.Error(1)
}

// MockOrderRepository is a mock implementation of trade.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByPlatformID(ctx context.Context, tenantID uuid.UUID, platformID string) (*trade.Order, error) {
	args := m.Called(ctx, tenantID, platformID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]trade.Order, error) {
	args := m.Called(ctx, tenantID, platformIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Order), args.Error(1)
}

// MockOrderItemRepository is a mock implementation of trade.OrderItemRepository
type MockOrderItemRepository struct {
	mock.Mock
}

func (m *MockOrderItemRepository) ReplaceForOrder(ctx context.Context, orderID uuid.UUID, items []*trade.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *MockOrderItemRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]trade.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.OrderItem), args.Error(1)
}

// MockOrderNoteRepository is a mock implementation of trade.OrderNoteRepository
type MockOrderNoteRepository struct {
	mock.Mock
}

func (m *MockOrderNoteRepository) DeleteSyncedForOrders(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) error {
	args := m.Called(ctx, tenantID, orderIDs)
	return args.Error(0)
}

func (m *MockOrderNoteRepository) CreateBatch(ctx context.Context, notes []*trade.OrderNote) error {
	args := m.Called(ctx, notes)
	return args.Error(0)
}

func (m *MockOrderNoteRepository) FindByOrderID(ctx context.Context, tenantID, orderID uuid.UUID) ([]trade.OrderNote, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.OrderNote), args.Error(1)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByPlatformID(ctx context.Context, tenantID uuid.UUID, platformID string) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, platformID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

// MockTagRepository is a mock implementation of tagging.TagRepository
type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) FindByNames(ctx context.Context, tenantID uuid.UUID, names []string) ([]tagging.Tag, error) {
	args := m.Called(ctx, tenantID, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tagging.Tag), args.Error(1)
}

func (m *MockTagRepository) CreateBatch(ctx context.Context, tags []*tagging.Tag) error {
	args := m.Called(ctx, tags)
	return args.Error(0)
}

func (m *MockTagRepository) UpsertTaggables(ctx context.Context, taggables []*tagging.Taggable) error {
	args := m.Called(ctx, taggables)
	return args.Error(0)
}

func (m *MockTagRepository) RecomputeUsageCounts(ctx context.Context, tenantID uuid.UUID, tagIDs []uuid.UUID) error {
	args := m.Called(ctx, tenantID, tagIDs)
	return args.Error(0)
}

// MockStatusCache is a mock implementation of StatusCache
type MockStatusCache struct {
	mock.Mock
}

func (m *MockStatusCache) Put(ctx context.Context, job *syncdomain.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockStatusCache) Get(ctx context.Context, jobID uuid.UUID) (*StatusProjection, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StatusProjection), args.Error(1)
}

// MockQueue is a mock implementation of Queue
type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) Enqueue(req syncdomain.Request) error {
	args := m.Called(req)
	return args.Error(0)
}
