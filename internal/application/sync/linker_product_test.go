package sync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/integration"
)

func newProductLinkerFixture() (*ProductLinker, *MockProductRepository, *MockVariantRepository, *MockStagedProductRepository, *MockProductLinkRepository) {
	products := new(MockProductRepository)
	variants := new(MockVariantRepository)
	staging := new(MockStagedProductRepository)
	links := new(MockProductLinkRepository)
	linker := NewProductLinker(products, variants, staging, links, zap.NewNop())
	return linker, products, variants, staging, links
}

func stagedProductFixture(tenantID uuid.UUID, platformID, title string) *integration.StagedProduct {
	sp, _, _ := TransformProduct(tenantID, &integration.PlatformProduct{
		ID:     platformID,
		Title:  title,
		Status: "ACTIVE",
	}, time.Now())
	return sp
}

func TestProductLinkerCreatesNewProduct(t *testing.T) {
	linker, products, _, staging, links := newProductLinkerFixture()
	tenantID := uuid.New()
	staged := []*integration.StagedProduct{stagedProductFixture(tenantID, "p1", "Ceramic Mug")}

	products.On("FindByPlatformIDs", mock.Anything, tenantID, []string{"p1"}).Return([]catalog.Product{}, nil)
	products.On("CreateBatch", mock.Anything, mock.MatchedBy(func(ps []*catalog.Product) bool {
		return len(ps) == 1 && ps[0].Title == "Ceramic Mug" && *ps[0].PlatformProductID == "p1"
	})).Return(nil)
	staging.On("SetLocalProduct", mock.Anything, tenantID, "p1", mock.Anything).Return(nil)

	res, err := linker.Link(context.Background(), tenantID, staged, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Processed)
	assert.Equal(t, int64(1), res.Succeeded)
	assert.Zero(t, res.Failed)
	products.AssertExpectations(t)
	staging.AssertExpectations(t)
	links.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
}

func TestProductLinkerSkipsUnchangedProduct(t *testing.T) {
	linker, products, _, _, _ := newProductLinkerFixture()
	tenantID := uuid.New()
	staged := []*integration.StagedProduct{stagedProductFixture(tenantID, "p1", "Ceramic Mug")}

	existing, err := catalog.NewProduct(tenantID, "Ceramic Mug")
	require.NoError(t, err)
	applyProduct(existing, staged[0])

	products.On("FindByPlatformIDs", mock.Anything, tenantID, []string{"p1"}).Return([]catalog.Product{*existing}, nil)

	res, linkErr := linker.Link(context.Background(), tenantID, staged, nil)

	require.NoError(t, linkErr)
	assert.Equal(t, int64(1), res.Processed)
	assert.Equal(t, int64(1), res.Succeeded)
	assert.Equal(t, int64(1), res.Skipped)
	// unchanged record means no writes at all
	products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	products.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestProductLinkerUpdatesChangedProduct(t *testing.T) {
	linker, products, _, _, _ := newProductLinkerFixture()
	tenantID := uuid.New()
	staged := []*integration.StagedProduct{stagedProductFixture(tenantID, "p1", "Ceramic Mug v2")}

	existing, err := catalog.NewProduct(tenantID, "Ceramic Mug")
	require.NoError(t, err)
	id := "p1"
	existing.PlatformProductID = &id

	products.On("FindByPlatformIDs", mock.Anything, tenantID, []string{"p1"}).Return([]catalog.Product{*existing}, nil)
	products.On("Update", mock.Anything, mock.MatchedBy(func(p *catalog.Product) bool {
		return p.Title == "Ceramic Mug v2"
	})).Return(nil)

	res, linkErr := linker.Link(context.Background(), tenantID, staged, nil)

	require.NoError(t, linkErr)
	assert.Equal(t, int64(1), res.Succeeded)
	assert.Zero(t, res.Skipped)
	products.AssertExpectations(t)
}

func TestProductLinkerResolvesVariantsAndLinks(t *testing.T) {
	linker, products, variants, staging, links := newProductLinkerFixture()
	tenantID := uuid.New()

	sp, svs, _ := TransformProduct(tenantID, &integration.PlatformProduct{
		ID:     "p1",
		Title:  "Tee",
		Status: "ACTIVE",
		Variants: []integration.PlatformVariant{
			{ID: "v1", ProductID: "p1", Title: "Small", Price: "19.00", Position: 1,
				SelectedOptions: []integration.PlatformSelectedOption{{Name: "Size", Value: "Small"}}},
		},
	}, time.Now())

	products.On("FindByPlatformIDs", mock.Anything, tenantID, []string{"p1"}).Return([]catalog.Product{}, nil)
	products.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	staging.On("SetLocalProduct", mock.Anything, tenantID, "p1", mock.Anything).Return(nil)
	variants.On("FindByPlatformIDs", mock.Anything, tenantID, []string{"v1"}).Return([]catalog.Variant{}, nil)
	variants.On("CreateBatch", mock.Anything, mock.MatchedBy(func(vs []*catalog.Variant) bool {
		return len(vs) == 1 && vs[0].Option1 == "Small" && vs[0].Price.String() == "19"
	})).Return(nil)
	staging.On("SetLocalVariant", mock.Anything, tenantID, "v1", mock.Anything).Return(nil)
	links.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(ls []*integration.ProductLink) bool {
		return len(ls) == 1 && ls[0].PlatformProductID == "p1" &&
			ls[0].PlatformVariantID == "v1" && ls[0].Label == "Tee / Small"
	})).Return(nil)

	res, err := linker.Link(context.Background(), tenantID, []*integration.StagedProduct{sp}, svs)

	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Succeeded)
	links.AssertExpectations(t)
	variants.AssertExpectations(t)
}

func TestProductLinkerPersistenceErrorIsFatal(t *testing.T) {
	linker, products, _, _, _ := newProductLinkerFixture()
	tenantID := uuid.New()
	staged := []*integration.StagedProduct{stagedProductFixture(tenantID, "p1", "Mug")}

	products.On("FindByPlatformIDs", mock.Anything, tenantID, []string{"p1"}).Return([]catalog.Product{}, nil)
	products.On("CreateBatch", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := linker.Link(context.Background(), tenantID, staged, nil)
	assert.ErrorIs(t, err, assert.AnError)
}
