package widgets

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"storefront-widgets/internal/adapter"
	"storefront-widgets/internal/model"
)

// widgetTemplate is the storefront markup for the product table widget.
// {{productTableId}} and friends are Handlebars placeholders filled by the
// platform from the widget configuration; the loader script mounts on the div.
var widgetTemplate = template.Must(template.New("widget").Delims("[[", "]]").Parse(
	`<div class="sw-product-table" data-proxy-url="[[.ProxyBaseURL]]" data-table-id="{{productTableId}}" data-widget-id="{{widgetId}}"></div>`,
))

// TemplateHTML renders the widget template markup for this service.
func (s *Service) TemplateHTML() string {
	var b strings.Builder
	_ = widgetTemplate.Execute(&b, struct{ ProxyBaseURL string }{strings.TrimSuffix(s.opts.ProxyBaseURL, "/")})
	return b.String()
}

// syncTable brings the storefront widget in line with the table's publish
// state: published tables get a widget (and placement when a region is
// set), drafts lose theirs.
func (s *Service) syncTable(ctx context.Context, t *model.ProductTable) error {
	if t.Status != model.StatusPublished {
		if t.WidgetUUID != "" {
			s.removeWidget(ctx, t.WidgetUUID, t.ID)
			t.WidgetUUID, t.PlacementUUID = "", ""
		}
		return nil
	}

	req := &adapter.WidgetRequest{
		Name: "Product Table: " + t.Name,
		Configuration: map[string]any{
			"productTableId": t.ID,
			"widgetId":       "",
		},
	}
	uuid, placementUUID, err := s.publish(ctx, t.WidgetUUID, t.Placement, req)
	if uuid != "" {
		t.WidgetUUID = uuid
	}
	if placementUUID != "" {
		t.PlacementUUID = placementUUID
	}
	return err
}

// syncWidget is syncTable for legacy widget instances; Enabled stands in
// for the publish state.
func (s *Service) syncWidget(ctx context.Context, w *model.WidgetInstance) error {
	if !w.Enabled {
		if w.WidgetUUID != "" {
			s.removeWidget(ctx, w.WidgetUUID, w.ID)
			w.WidgetUUID = ""
		}
		return nil
	}

	req := &adapter.WidgetRequest{
		Name: "Widget: " + w.Name,
		Configuration: map[string]any{
			"productTableId": "",
			"widgetId":       w.ID,
		},
	}
	uuid, _, err := s.publish(ctx, w.WidgetUUID, w.Placement, req)
	if uuid != "" {
		w.WidgetUUID = uuid
	}
	return err
}

// publish updates an existing widget, or creates one from the template and
// places it. It returns the widget UUID and, for new widgets, the placement.
func (s *Service) publish(ctx context.Context, widgetUUID string, p model.Placement, req *adapter.WidgetRequest) (string, string, error) {
	templateUUID, err := s.upstream.EnsureWidgetTemplate(ctx, s.opts.TemplateName, s.TemplateHTML())
	if err != nil {
		return "", "", upstreamError("ensuring widget template", err)
	}
	req.TemplateUUID = templateUUID

	if widgetUUID != "" {
		if err := s.upstream.UpdateWidget(ctx, widgetUUID, req); err != nil {
			if !model.IsNotFound(err) {
				return "", "", upstreamError("updating widget", err)
			}
			// Deleted upstream behind our back; recreate below.
			s.logger.WarnContext(ctx, "storefront widget missing, recreating",
				slog.String("widget_uuid", widgetUUID))
		} else {
			return widgetUUID, "", nil
		}
	}

	newUUID, err := s.upstream.CreateWidget(ctx, req)
	if err != nil {
		return "", "", upstreamError("creating widget", err)
	}
	if p.RegionName == "" {
		return newUUID, "", nil
	}

	placementUUID, err := s.upstream.CreatePlacement(ctx, &adapter.PlacementRequest{
		WidgetUUID:   newUUID,
		TemplateFile: p.TemplateFile,
		RegionName:   p.RegionName,
		EntityID:     p.EntityID,
		SortOrder:    p.SortOrder,
	})
	if err != nil {
		// Keep the widget; an unplaced widget can still be placed in Page Builder.
		return newUUID, "", upstreamError("creating placement", err)
	}
	return newUUID, placementUUID, nil
}

// removeWidget deletes a storefront widget. Failures are logged, never
// returned: a stale widget renders nothing once its record is gone.
func (s *Service) removeWidget(ctx context.Context, widgetUUID, recordID string) {
	if widgetUUID == "" {
		return
	}
	if err := s.upstream.DeleteWidget(ctx, widgetUUID); err != nil && !model.IsNotFound(err) {
		s.logger.WarnContext(ctx, "deleting storefront widget failed",
			slog.String("widget_uuid", widgetUUID),
			slog.String("record_id", recordID),
			slog.String("error", err.Error()))
	}
}

// upstreamError keeps platform APIErrors intact and wraps anything else.
func upstreamError(action string, err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return err
	}
	return model.NewUpstreamError("BigCommerce", fmt.Errorf("%s: %w", action, err))
}
