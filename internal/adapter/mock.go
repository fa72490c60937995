package adapter

import (
	"context"

	"storefront-widgets/internal/model"
)

// Mock implements Platform for testing.
// Each method can be configured via function fields; unset read methods
// report not found and unset content methods succeed with empty IDs.
type Mock struct {
	GetProductFunc              func(ctx context.Context, productID string) (*model.CatalogProduct, error)
	GetVariantFunc              func(ctx context.Context, productID, variantID string) (*model.CatalogVariant, error)
	ListQuantityBreaksFunc      func(ctx context.Context, productID string) ([]model.QuantityBreakRule, error)
	ListProductsFunc            func(ctx context.Context, q model.ProductQuery) ([]model.CatalogProduct, error)
	ListPriceListsFunc          func(ctx context.Context) ([]model.PriceList, error)
	ListPriceListRecordsFunc    func(ctx context.Context, priceListID int, productID string) ([]model.PriceListRecord, error)
	GetCustomerFunc             func(ctx context.Context, customerID string) (*model.Customer, error)
	GetCustomerGroupFunc        func(ctx context.Context, groupID int) (*model.CustomerGroup, error)
	GetGuestCustomerGroupIDFunc func(ctx context.Context) (*int, error)
	EnsureWidgetTemplateFunc    func(ctx context.Context, name, html string) (string, error)
	CreateWidgetFunc            func(ctx context.Context, req *WidgetRequest) (string, error)
	UpdateWidgetFunc            func(ctx context.Context, widgetUUID string, req *WidgetRequest) error
	DeleteWidgetFunc            func(ctx context.Context, widgetUUID string) error
	CreatePlacementFunc         func(ctx context.Context, req *PlacementRequest) (string, error)
	EnsureScriptFunc            func(ctx context.Context, req *ScriptRequest) (string, error)
}

func (m *Mock) GetProduct(ctx context.Context, productID string) (*model.CatalogProduct, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, productID)
	}
	return nil, model.NewNotFoundError("product")
}

func (m *Mock) GetVariant(ctx context.Context, productID, variantID string) (*model.CatalogVariant, error) {
	if m.GetVariantFunc != nil {
		return m.GetVariantFunc(ctx, productID, variantID)
	}
	return nil, model.NewNotFoundError("variant")
}

func (m *Mock) ListQuantityBreaks(ctx context.Context, productID string) ([]model.QuantityBreakRule, error) {
	if m.ListQuantityBreaksFunc != nil {
		return m.ListQuantityBreaksFunc(ctx, productID)
	}
	return nil, nil
}

func (m *Mock) ListProducts(ctx context.Context, q model.ProductQuery) ([]model.CatalogProduct, error) {
	if m.ListProductsFunc != nil {
		return m.ListProductsFunc(ctx, q)
	}
	return nil, nil
}

func (m *Mock) ListPriceLists(ctx context.Context) ([]model.PriceList, error) {
	if m.ListPriceListsFunc != nil {
		return m.ListPriceListsFunc(ctx)
	}
	return nil, nil
}

func (m *Mock) ListPriceListRecords(ctx context.Context, priceListID int, productID string) ([]model.PriceListRecord, error) {
	if m.ListPriceListRecordsFunc != nil {
		return m.ListPriceListRecordsFunc(ctx, priceListID, productID)
	}
	return nil, nil
}

func (m *Mock) GetCustomer(ctx context.Context, customerID string) (*model.Customer, error) {
	if m.GetCustomerFunc != nil {
		return m.GetCustomerFunc(ctx, customerID)
	}
	return nil, model.NewNotFoundError("customer")
}

func (m *Mock) GetCustomerGroup(ctx context.Context, groupID int) (*model.CustomerGroup, error) {
	if m.GetCustomerGroupFunc != nil {
		return m.GetCustomerGroupFunc(ctx, groupID)
	}
	return nil, model.NewNotFoundError("customer group")
}

func (m *Mock) GetGuestCustomerGroupID(ctx context.Context) (*int, error) {
	if m.GetGuestCustomerGroupIDFunc != nil {
		return m.GetGuestCustomerGroupIDFunc(ctx)
	}
	return nil, nil
}

func (m *Mock) EnsureWidgetTemplate(ctx context.Context, name, html string) (string, error) {
	if m.EnsureWidgetTemplateFunc != nil {
		return m.EnsureWidgetTemplateFunc(ctx, name, html)
	}
	return "", nil
}

func (m *Mock) CreateWidget(ctx context.Context, req *WidgetRequest) (string, error) {
	if m.CreateWidgetFunc != nil {
		return m.CreateWidgetFunc(ctx, req)
	}
	return "", nil
}

func (m *Mock) UpdateWidget(ctx context.Context, widgetUUID string, req *WidgetRequest) error {
	if m.UpdateWidgetFunc != nil {
		return m.UpdateWidgetFunc(ctx, widgetUUID, req)
	}
	return nil
}

func (m *Mock) DeleteWidget(ctx context.Context, widgetUUID string) error {
	if m.DeleteWidgetFunc != nil {
		return m.DeleteWidgetFunc(ctx, widgetUUID)
	}
	return nil
}

func (m *Mock) CreatePlacement(ctx context.Context, req *PlacementRequest) (string, error) {
	if m.CreatePlacementFunc != nil {
		return m.CreatePlacementFunc(ctx, req)
	}
	return "", nil
}

func (m *Mock) EnsureScript(ctx context.Context, req *ScriptRequest) (string, error) {
	if m.EnsureScriptFunc != nil {
		return m.EnsureScriptFunc(ctx, req)
	}
	return "", nil
}

// Verify Mock implements Platform interface at compile time.
var _ Platform = (*Mock)(nil)
