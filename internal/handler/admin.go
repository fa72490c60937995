package handler

import (
	"errors"
	"net/http"

	"storefront-widgets/internal/model"
)

// Admin responses carry the saved record. When the record was saved but the
// storefront widget could not be synced, syncError says why; the admin UI
// retries by re-saving.

type tableResponse struct {
	*model.ProductTable
	SyncError *errorBody `json:"syncError,omitempty"`
}

type widgetResponse struct {
	*model.WidgetInstance
	SyncError *errorBody `json:"syncError,omitempty"`
}

type tablesResponse struct {
	ProductTables []model.ProductTable `json:"productTables"`
}

type widgetsResponse struct {
	Widgets []model.WidgetInstance `json:"widgets"`
}

// POST /api/admin/tables
func (h *Handler) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var in model.ProductTable
	if err := decodeJSON(r, &in); err != nil {
		h.writeError(w, err)
		return
	}

	table, err := h.widgets.CreateTable(r.Context(), in)
	if table == nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tableResponse{ProductTable: table, SyncError: h.syncError(err)})
}

// GET /api/admin/tables
func (h *Handler) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.widgets.ListTables(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tablesResponse{ProductTables: tables})
}

// GET /api/admin/tables/{id}
func (h *Handler) handleGetTable(w http.ResponseWriter, r *http.Request) {
	table, err := h.widgets.GetTable(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tableResponse{ProductTable: table})
}

// PUT /api/admin/tables/{id}
// Partial update: omitted fields keep their stored values.
func (h *Handler) handleUpdateTable(w http.ResponseWriter, r *http.Request) {
	var patch model.ProductTablePatch
	if err := decodeJSON(r, &patch); err != nil {
		h.writeError(w, err)
		return
	}

	table, err := h.widgets.UpdateTable(r.Context(), r.PathValue("id"), patch)
	if table == nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tableResponse{ProductTable: table, SyncError: h.syncError(err)})
}

// DELETE /api/admin/tables/{id}
func (h *Handler) handleDeleteTable(w http.ResponseWriter, r *http.Request) {
	if err := h.widgets.DeleteTable(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/admin/widgets
func (h *Handler) handleCreateWidget(w http.ResponseWriter, r *http.Request) {
	var in model.WidgetInstance
	if err := decodeJSON(r, &in); err != nil {
		h.writeError(w, err)
		return
	}

	widget, err := h.widgets.CreateWidget(r.Context(), in)
	if widget == nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, widgetResponse{WidgetInstance: widget, SyncError: h.syncError(err)})
}

// GET /api/admin/widgets
func (h *Handler) handleListWidgets(w http.ResponseWriter, r *http.Request) {
	list, err := h.widgets.ListWidgets(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, widgetsResponse{Widgets: list})
}

// GET /api/admin/widgets/{id}
func (h *Handler) handleGetWidget(w http.ResponseWriter, r *http.Request) {
	widget, err := h.widgets.GetWidget(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, widgetResponse{WidgetInstance: widget})
}

// PUT /api/admin/widgets/{id}
func (h *Handler) handleUpdateWidget(w http.ResponseWriter, r *http.Request) {
	var patch model.WidgetInstancePatch
	if err := decodeJSON(r, &patch); err != nil {
		h.writeError(w, err)
		return
	}

	widget, err := h.widgets.UpdateWidget(r.Context(), r.PathValue("id"), patch)
	if widget == nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, widgetResponse{WidgetInstance: widget, SyncError: h.syncError(err)})
}

// DELETE /api/admin/widgets/{id}
func (h *Handler) handleDeleteWidget(w http.ResponseWriter, r *http.Request) {
	if err := h.widgets.DeleteWidget(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/admin/widgets/{id}/migrate
// Converts a legacy widget into a product table.
func (h *Handler) handleMigrateWidget(w http.ResponseWriter, r *http.Request) {
	table, err := h.widgets.MigrateWidget(r.Context(), r.PathValue("id"))
	if table == nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tableResponse{ProductTable: table, SyncError: h.syncError(err)})
}

// POST /api/admin/install
func (h *Handler) handleInstall(w http.ResponseWriter, r *http.Request) {
	res, err := h.widgets.Install(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// syncError reports a storefront sync failure that followed a successful save.
func (h *Handler) syncError(err error) *errorBody {
	if err == nil {
		return nil
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		h.logger.Error("widget sync failed", "error", err.Error())
		return &errorBody{Code: "INTERNAL_ERROR", Message: "an internal error occurred"}
	}
	h.logger.Warn("widget sync failed", "code", apiErr.Code, "error", err.Error())
	return &errorBody{Code: apiErr.Code, Message: apiErr.Message}
}
