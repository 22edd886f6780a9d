package sync

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/integration"
)

// ProductLinker derives internal products and variants from a page of staged
// rows. Writes are idempotent: re-running the same page converges to the
// same internal state.
type ProductLinker struct {
	products catalog.ProductRepository
	variants catalog.VariantRepository
	staging  integration.StagedProductRepository
	links    integration.ProductLinkRepository
	logger   *zap.Logger
}

// NewProductLinker creates a new ProductLinker
func NewProductLinker(
	products catalog.ProductRepository,
	variants catalog.VariantRepository,
	staging integration.StagedProductRepository,
	links integration.ProductLinkRepository,
	logger *zap.Logger,
) *ProductLinker {
	return &ProductLinker{
		products: products,
		variants: variants,
		staging:  staging,
		links:    links,
		logger:   logger,
	}
}

// Link derives or refreshes internal products for the given staged page.
// The batch is partitioned by a field-level dirty check so unchanged
// records produce zero internal writes on repeated incremental syncs.
func (l *ProductLinker) Link(ctx context.Context, tenantID uuid.UUID, staged []*integration.StagedProduct, stagedVariants []*integration.StagedVariant) (Result, error) {
	var res Result
	if len(staged) == 0 {
		return res, nil
	}

	platformIDs := make([]string, 0, len(staged))
	for _, sp := range staged {
		platformIDs = append(platformIDs, sp.PlatformProductID)
	}

	existing, err := l.products.FindByPlatformIDs(ctx, tenantID, platformIDs)
	if err != nil {
		return res, err
	}
	byPlatformID := make(map[string]*catalog.Product, len(existing))
	for i := range existing {
		p := &existing[i]
		if p.PlatformProductID != nil {
			byPlatformID[*p.PlatformProductID] = p
		}
	}

	// Partition into inserts and updates; unchanged rows are skipped.
	var toInsert []*catalog.Product
	insertSource := make(map[*catalog.Product]*integration.StagedProduct)
	resolved := make(map[string]uuid.UUID, len(staged))

	for _, sp := range staged {
		current, ok := byPlatformID[sp.PlatformProductID]
		if !ok {
			product, buildErr := buildProduct(tenantID, sp)
			if buildErr != nil {
				res.fail(sp.PlatformProductID, "link_product", buildErr)
				continue
			}
			toInsert = append(toInsert, product)
			insertSource[product] = sp
			continue
		}
		if !productDirty(current, sp) {
			resolved[sp.PlatformProductID] = current.ID
			res.skip()
			continue
		}
		applyProduct(current, sp)
		if updErr := l.products.Update(ctx, current); updErr != nil {
			return res, updErr
		}
		resolved[sp.PlatformProductID] = current.ID
		res.success()
	}

	if len(toInsert) > 0 {
		if err := l.products.CreateBatch(ctx, toInsert); err != nil {
			return res, err
		}
		for _, product := range toInsert {
			sp := insertSource[product]
			resolved[sp.PlatformProductID] = product.ID
			if err := l.staging.SetLocalProduct(ctx, tenantID, sp.PlatformProductID, product.ID); err != nil {
				return res, err
			}
			res.success()
		}
	}

	links, err := l.linkVariants(ctx, tenantID, staged, stagedVariants, resolved, &res)
	if err != nil {
		return res, err
	}
	if len(links) > 0 {
		if err := l.links.UpsertBatch(ctx, links); err != nil {
			return res, err
		}
	}
	return res, nil
}

// linkVariants resolves the page's variants against their freshly resolved
// parents and builds the cross-reference links for every touched pair.
func (l *ProductLinker) linkVariants(ctx context.Context, tenantID uuid.UUID, staged []*integration.StagedProduct, stagedVariants []*integration.StagedVariant, resolved map[string]uuid.UUID, res *Result) ([]*integration.ProductLink, error) {
	if len(stagedVariants) == 0 {
		return nil, nil
	}

	variantIDs := make([]string, 0, len(stagedVariants))
	for _, sv := range stagedVariants {
		variantIDs = append(variantIDs, sv.PlatformVariantID)
	}
	existing, err := l.variants.FindByPlatformIDs(ctx, tenantID, variantIDs)
	if err != nil {
		return nil, err
	}
	byPlatformID := make(map[string]*catalog.Variant, len(existing))
	for i := range existing {
		v := &existing[i]
		if v.PlatformVariantID != nil {
			byPlatformID[*v.PlatformVariantID] = v
		}
	}

	titleByProduct := make(map[string]string, len(staged))
	for _, sp := range staged {
		titleByProduct[sp.PlatformProductID] = sp.Title
	}

	var links []*integration.ProductLink
	var toInsert []*catalog.Variant
	insertSource := make(map[*catalog.Variant]*integration.StagedVariant)

	for _, sv := range stagedVariants {
		productID, ok := resolved[sv.PlatformProductID]
		if !ok {
			// Parent failed to link; the variant cannot resolve this run.
			l.logger.Warn("variant parent unresolved",
				zap.String("tenant_id", tenantID.String()),
				zap.String("platform_variant_id", sv.PlatformVariantID),
				zap.String("platform_product_id", sv.PlatformProductID))
			continue
		}

		current, exists := byPlatformID[sv.PlatformVariantID]
		if !exists {
			variant, buildErr := buildVariant(tenantID, productID, sv)
			if buildErr != nil {
				res.fail(sv.PlatformVariantID, "link_variant", buildErr)
				continue
			}
			toInsert = append(toInsert, variant)
			insertSource[variant] = sv
			continue
		}

		if variantDirty(current, sv) {
			if applyErr := applyVariant(current, sv); applyErr != nil {
				res.fail(sv.PlatformVariantID, "link_variant", applyErr)
				continue
			}
			current.ProductID = productID
			if updErr := l.variants.Update(ctx, current); updErr != nil {
				return nil, updErr
			}
		}
		links = append(links, variantLink(tenantID, sv, productID, current.ID, titleByProduct[sv.PlatformProductID], current))
	}

	if len(toInsert) > 0 {
		if err := l.variants.CreateBatch(ctx, toInsert); err != nil {
			return nil, err
		}
		for _, variant := range toInsert {
			sv := insertSource[variant]
			if err := l.staging.SetLocalVariant(ctx, tenantID, sv.PlatformVariantID, variant.ID); err != nil {
				return nil, err
			}
			links = append(links, variantLink(tenantID, sv, variant.ProductID, variant.ID, titleByProduct[sv.PlatformProductID], variant))
		}
	}
	return links, nil
}

func variantLink(tenantID uuid.UUID, sv *integration.StagedVariant, productID, variantID uuid.UUID, productTitle string, v *catalog.Variant) *integration.ProductLink {
	link := integration.NewProductLink(tenantID, sv.PlatformProductID, sv.PlatformVariantID, productID)
	link.LocalVariantID = &variantID
	link.Label = linkLabel(productTitle, v)
	return link
}

func linkLabel(productTitle string, v *catalog.Variant) string {
	parts := []string{productTitle}
	for _, opt := range []string{v.Option1, v.Option2, v.Option3} {
		if opt != "" {
			parts = append(parts, opt)
		}
	}
	return strings.Join(parts, " / ")
}

// ---------------------------------------------------------------------------
// Field mapping and dirty checks
// ---------------------------------------------------------------------------

func buildProduct(tenantID uuid.UUID, sp *integration.StagedProduct) (*catalog.Product, error) {
	product, err := catalog.NewProduct(tenantID, sp.Title)
	if err != nil {
		return nil, err
	}
	applyProduct(product, sp)
	return product, nil
}

func applyProduct(p *catalog.Product, sp *integration.StagedProduct) {
	p.Title = sp.Title
	p.Description = sp.Description
	p.Vendor = sp.Vendor
	p.ProductType = sp.ProductType
	p.Handle = sp.Handle
	p.Status = mapProductStatus(sp.Status)
	p.Active = sp.Active
	id := sp.PlatformProductID
	p.PlatformProductID = &id
	p.Touch()
}

// productDirty compares every mapped field; an unchanged record is skipped
// entirely, which keeps repeated incremental syncs nearly write-free.
func productDirty(p *catalog.Product, sp *integration.StagedProduct) bool {
	return p.Title != sp.Title ||
		p.Description != sp.Description ||
		p.Vendor != sp.Vendor ||
		p.ProductType != sp.ProductType ||
		p.Handle != sp.Handle ||
		p.Status != mapProductStatus(sp.Status) ||
		p.Active != sp.Active
}

func mapProductStatus(s string) catalog.ProductStatus {
	switch strings.ToLower(s) {
	case "archived":
		return catalog.ProductStatusArchived
	case "draft":
		return catalog.ProductStatusDraft
	default:
		return catalog.ProductStatusActive
	}
}

func buildVariant(tenantID, productID uuid.UUID, sv *integration.StagedVariant) (*catalog.Variant, error) {
	variant := catalog.NewVariant(tenantID, productID)
	if err := applyVariant(variant, sv); err != nil {
		return nil, err
	}
	return variant, nil
}

func applyVariant(v *catalog.Variant, sv *integration.StagedVariant) error {
	price, err := decimal.NewFromString(sv.Price)
	if err != nil {
		return err
	}
	compareAt := decimal.Zero
	if strings.TrimSpace(sv.CompareAtPrice) != "" {
		if compareAt, err = decimal.NewFromString(sv.CompareAtPrice); err != nil {
			return err
		}
	}
	id := sv.PlatformVariantID
	v.PlatformVariantID = &id
	v.Title = sv.Title
	v.SKU = sv.SKU
	v.Barcode = sv.Barcode
	v.Price = price
	v.CompareAtPrice = compareAt
	v.Position = sv.Position
	v.InventoryQuantity = sv.InventoryQuantity
	v.Option1 = sv.Option1
	v.Option2 = sv.Option2
	v.Option3 = sv.Option3
	v.Active = sv.Active
	v.Touch()
	return nil
}

func variantDirty(v *catalog.Variant, sv *integration.StagedVariant) bool {
	price, err := decimal.NewFromString(sv.Price)
	if err != nil {
		return true
	}
	return v.Title != sv.Title ||
		v.SKU != sv.SKU ||
		v.Barcode != sv.Barcode ||
		!v.Price.Equal(price) ||
		v.Position != sv.Position ||
		v.InventoryQuantity != sv.InventoryQuantity ||
		v.Option1 != sv.Option1 ||
		v.Option2 != sv.Option2 ||
		v.Option3 != sv.Option3 ||
		v.Active != sv.Active
}
