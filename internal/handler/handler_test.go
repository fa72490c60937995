package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-widgets/internal/adapter"
	"storefront-widgets/internal/customer"
	"storefront-widgets/internal/model"
	"storefront-widgets/internal/pricing"
	"storefront-widgets/internal/store"
	"storefront-widgets/internal/storefront"
	"storefront-widgets/internal/widgets"
)

func testHandler(mock *adapter.Mock) (*Handler, *http.ServeMux) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	prices := pricing.NewResolver(mock, logger)
	svc := widgets.NewService(store.NewMemoryRepository(), mock, widgets.Options{
		StoreHash:    "abc123",
		TemplateName: "Product Table",
		ProxyBaseURL: "https://proxy.example.com",
		Pricer:       prices,
	}, logger)
	h := New(prices, customer.NewResolver(mock, logger), svc, logger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return h, mux
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// pricedCatalog is a mock with product "111" at $100 and a 5-10 unit break at $90.
func pricedCatalog() *adapter.Mock {
	return &adapter.Mock{
		GetProductFunc: func(_ context.Context, id string) (*model.CatalogProduct, error) {
			if id != "111" {
				return nil, model.NewNotFoundError("product")
			}
			return &model.CatalogProduct{
				ID:              "111",
				Name:            "Widget",
				BasePrice:       dec("100"),
				CalculatedPrice: dec("100"),
				Currency:        "USD",
			}, nil
		},
		ListQuantityBreaksFunc: func(context.Context, string) ([]model.QuantityBreakRule, error) {
			return []model.QuantityBreakRule{
				{MinQuantity: 5, MaxQuantity: 10, Mode: model.DiscountAbsolute, Amount: dec("90")},
			}, nil
		},
	}
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Error.Code
}

func TestHandleHealth(t *testing.T) {
	_, mux := testHandler(&adapter.Mock{})

	for _, path := range []string{"/health", "/healthz"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp healthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "ok", resp.Status)
	}
}

func TestHandlePricing(t *testing.T) {
	_, mux := testHandler(pricedCatalog())

	req := httptest.NewRequest("GET", "/api/storefront/pricing?productId=111&quantity=5&userGroup=Retail&customerTags=vip,%20net30", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "private, max-age=30", w.Header().Get("Cache-Control"))

	var quote model.PriceQuote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, "111", quote.ProductID)
	assert.Equal(t, "retail", quote.CustomerGroup)
	assert.Equal(t, []string{"net30", "vip"}, quote.CustomerTags)
	assert.Equal(t, 5, quote.Quantity)
	assert.True(t, quote.FinalPrice.Equal(dec("90")), "final price %s", quote.FinalPrice)
	require.Len(t, quote.QuantityBreaks, 1)
}

func TestHandlePricing_CustomerGroupWinsOverUserGroup(t *testing.T) {
	_, mux := testHandler(pricedCatalog())

	req := httptest.NewRequest("GET", "/api/storefront/pricing?productId=111&customerGroup=wholesale&userGroup=retail", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var quote model.PriceQuote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, "wholesale", quote.CustomerGroup)
	assert.Equal(t, 1, quote.Quantity)
}

func TestHandlePricing_Errors(t *testing.T) {
	deniedCatalog := func() *adapter.Mock {
		m := pricedCatalog()
		m.GetProductFunc = func(context.Context, string) (*model.CatalogProduct, error) {
			return nil, fmt.Errorf("getting product 111: %w", model.NewUnauthorizedError("BigCommerce access denied"))
		}
		return m
	}
	throttledCatalog := func() *adapter.Mock {
		m := pricedCatalog()
		m.GetProductFunc = func(context.Context, string) (*model.CatalogProduct, error) {
			return nil, model.NewRateLimitError("BigCommerce")
		}
		return m
	}

	tests := []struct {
		name       string
		mock       func() *adapter.Mock
		query      string
		wantStatus int
		wantCode   string
	}{
		{"missing product", pricedCatalog, "", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown product", pricedCatalog, "?productId=999", http.StatusNotFound, "NOT_FOUND"},
		{"platform credentials rejected", deniedCatalog, "?productId=111", http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"platform rate limited", throttledCatalog, "?productId=111", http.StatusBadGateway, "UPSTREAM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mux := testHandler(tt.mock())

			req := httptest.NewRequest("GET", "/api/storefront/pricing"+tt.query, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w.Body.Bytes()))
			assert.NotContains(t, w.Body.String(), "access denied")
			assert.Empty(t, w.Header().Get("Cache-Control"))
		})
	}
}

func TestHandleCustomerContext(t *testing.T) {
	groupID := 4
	mock := &adapter.Mock{
		GetCustomerFunc: func(_ context.Context, id string) (*model.Customer, error) {
			if id != "42" {
				return nil, model.NewNotFoundError("customer")
			}
			return &model.Customer{ID: "42", Email: "a@example.com", FirstName: "Ada", GroupID: &groupID, Tags: []string{"vip"}}, nil
		},
		GetCustomerGroupFunc: func(_ context.Context, id int) (*model.CustomerGroup, error) {
			return &model.CustomerGroup{ID: id, Name: "Wholesale"}, nil
		},
	}
	_, mux := testHandler(mock)

	tests := []struct {
		name      string
		target    string
		header    *storefront.WidgetContext
		wantGroup string
		wantLogin bool
	}{
		{"query customer", "/api/storefront/customer-context?customerId=42", nil, "wholesale", true},
		{"guest", "/api/storefront/customer-context", nil, "guest", false},
		{"unknown customer", "/api/storefront/customer-context?customerId=7", nil, "guest", false},
		{"widget context customer", "/api/storefront/customer-context", &storefront.WidgetContext{CustomerID: "42"}, "wholesale", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != nil {
				req = req.WithContext(storefront.WithContext(req.Context(), tt.header))
			}
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "private, max-age=60", w.Header().Get("Cache-Control"))

			var cc model.CustomerContext
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cc))
			assert.Equal(t, tt.wantGroup, cc.CustomerGroup)
			assert.Equal(t, tt.wantLogin, cc.IsLoggedIn)
			assert.Equal(t, tt.wantLogin, cc.CustomerID != nil)
		})
	}
}

func TestAdminTableLifecycle(t *testing.T) {
	_, mux := testHandler(&adapter.Mock{})

	// Create
	body := `{"name":"Bulk order","source":{"type":"manual","productIds":["111"]}}`
	req := httptest.NewRequest("POST", "/api/admin/tables", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created model.ProductTable
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.StatusDraft, created.Status)
	assert.NotContains(t, w.Body.String(), "syncError")

	// Update
	req = httptest.NewRequest("PUT", "/api/admin/tables/"+created.ID, bytes.NewBufferString(`{"pageSize":10}`))
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated model.ProductTable
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, 10, updated.PageSize)
	assert.Equal(t, "Bulk order", updated.Name)

	// List
	req = httptest.NewRequest("GET", "/api/admin/tables", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var list tablesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.ProductTables, 1)

	// Delete, then Get
	req = httptest.NewRequest("DELETE", "/api/admin/tables/"+created.ID, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest("GET", "/api/admin/tables/"+created.ID, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w.Body.Bytes()))
}

func TestAdminCreateTable_Invalid(t *testing.T) {
	_, mux := testHandler(&adapter.Mock{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"name":`},
		{"missing name", `{"columns":["name"]}`},
		{"unknown column", `{"name":"T","columns":["colour"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/admin/tables", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w.Body.Bytes()))
		})
	}
}

func TestAdminCreateTable_SyncErrorStillSaves(t *testing.T) {
	mock := &adapter.Mock{
		EnsureWidgetTemplateFunc: func(context.Context, string, string) (string, error) {
			return "", model.NewUnauthorizedError("BigCommerce access denied")
		},
	}
	_, mux := testHandler(mock)

	req := httptest.NewRequest("POST", "/api/admin/tables", bytes.NewBufferString(`{"name":"T","status":"published"}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		ID        string     `json:"productTableId"`
		SyncError *errorBody `json:"syncError"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	require.NotNil(t, resp.SyncError)
	assert.Equal(t, "UNAUTHORIZED", resp.SyncError.Code)
}

func TestAdminWidgetMigrate(t *testing.T) {
	_, mux := testHandler(&adapter.Mock{})

	req := httptest.NewRequest("POST", "/api/admin/widgets",
		bytes.NewBufferString(`{"name":"Legacy","settings":{"categoryIds":["18"],"pageSize":50}}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var widget model.WidgetInstance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &widget))
	assert.Equal(t, widgets.DefaultWidgetType, widget.WidgetType)

	req = httptest.NewRequest("POST", "/api/admin/widgets/"+widget.ID+"/migrate", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var table model.ProductTable
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &table))
	assert.Equal(t, "Legacy", table.Name)
	assert.Equal(t, model.SourceCategory, table.Source.Type)
	assert.Equal(t, 50, table.PageSize)

	req = httptest.NewRequest("GET", "/api/admin/widgets/"+widget.ID, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminUpdateWidget(t *testing.T) {
	_, mux := testHandler(&adapter.Mock{})

	req := httptest.NewRequest("POST", "/api/admin/widgets", bytes.NewBufferString(`{"name":"Legacy"}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var widget model.WidgetInstance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &widget))

	req = httptest.NewRequest("PUT", "/api/admin/widgets/"+widget.ID, bytes.NewBufferString(`{"name":"Renamed"}`))
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &widget))
	assert.Equal(t, "Renamed", widget.Name)

	req = httptest.NewRequest("GET", "/api/admin/widgets", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	var list widgetsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Widgets, 1)

	req = httptest.NewRequest("DELETE", "/api/admin/widgets/"+widget.ID, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAdminInstall(t *testing.T) {
	mock := &adapter.Mock{
		EnsureWidgetTemplateFunc: func(context.Context, string, string) (string, error) { return "tpl-9", nil },
	}
	_, mux := testHandler(mock)

	req := httptest.NewRequest("POST", "/api/admin/install", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var res widgets.InstallResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "tpl-9", res.TemplateUUID)
	assert.Empty(t, res.ScriptUUID)
}

func TestStorefrontTable(t *testing.T) {
	mock := pricedCatalog()
	mock.ListProductsFunc = func(_ context.Context, q model.ProductQuery) ([]model.CatalogProduct, error) {
		return []model.CatalogProduct{
			{ID: "111", Name: "Widget", CalculatedPrice: dec("100"), InventoryLevel: 3},
		}, nil
	}
	_, mux := testHandler(mock)

	create := func(body string) string {
		req := httptest.NewRequest("POST", "/api/admin/tables", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var table model.ProductTable
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &table))
		return table.ID
	}
	published := create(`{"name":"Public","status":"published"}`)
	draft := create(`{"name":"Draft"}`)
	members := create(`{"name":"Members","status":"published","targeting":{"hideFromGuests":true}}`)

	req := httptest.NewRequest("GET", "/api/storefront/tables/"+published, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Table    model.ProductTable    `json:"productTable"`
		Customer model.CustomerContext `json:"customer"`
		Rows     []model.ProductRow    `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, published, resp.Table.ID)
	assert.Equal(t, "guest", resp.Customer.CustomerGroup)
	require.Len(t, resp.Rows, 1)
	assert.True(t, resp.Rows[0].InStock)

	for _, id := range []string{draft, members, "pt_missing"} {
		req := httptest.NewRequest("GET", "/api/storefront/tables/"+id, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, id)
	}
}

func TestHandleProducts(t *testing.T) {
	var got model.ProductQuery
	mock := &adapter.Mock{
		ListProductsFunc: func(_ context.Context, q model.ProductQuery) ([]model.CatalogProduct, error) {
			got = q
			return []model.CatalogProduct{{ID: "1", Name: "A", CalculatedPrice: dec("5")}}, nil
		},
	}
	_, mux := testHandler(mock)

	req := httptest.NewRequest("GET", "/api/storefront/products?ids=1,%202,,&categoryIds=18&limit=abc", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"1", "2"}, got.ProductIDs)
	assert.Equal(t, []string{"18"}, got.CategoryIDs)
	assert.Equal(t, widgets.DefaultPageSize, got.Limit)

	var resp productsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, 1, resp.Products[0].MinQuantity)
}

func TestWriteError_UnknownErrorIsInternal(t *testing.T) {
	h, _ := testHandler(&adapter.Mock{})

	w := httptest.NewRecorder()
	h.writeError(w, io.ErrUnexpectedEOF)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, w.Body.Bytes()))
	assert.NotContains(t, w.Body.String(), "unexpected EOF")
}
