package bigcommerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"storefront-widgets/internal/adapter"
)

// EnsureWidgetTemplate returns the UUID of the widget template called name,
// creating it, or refreshing its markup when it has drifted.
func (c *Client) EnsureWidgetTemplate(ctx context.Context, name, html string) (string, error) {
	templates, err := listAll[bcWidgetTemplate](ctx, c, "/v3/content/widget-templates", nil, 0)
	if err != nil {
		return "", fmt.Errorf("listing widget templates: %w", err)
	}

	for _, t := range templates {
		if t.Name != name {
			continue
		}
		if t.Template != html {
			body := bcWidgetTemplate{Name: name, Template: html}
			if err := c.call(ctx, http.MethodPut, "/v3/content/widget-templates/"+url.PathEscape(t.UUID), nil, body, nil); err != nil {
				return "", fmt.Errorf("updating widget template %s: %w", t.UUID, err)
			}
		}
		return t.UUID, nil
	}

	var env envelope[bcWidgetTemplate]
	body := bcWidgetTemplate{Name: name, Template: html}
	if err := c.call(ctx, http.MethodPost, "/v3/content/widget-templates", nil, body, &env); err != nil {
		return "", fmt.Errorf("creating widget template: %w", err)
	}
	return env.Data.UUID, nil
}

// CreateWidget creates a widget instance and returns its UUID.
func (c *Client) CreateWidget(ctx context.Context, req *adapter.WidgetRequest) (string, error) {
	var env envelope[bcWidget]
	if err := c.call(ctx, http.MethodPost, "/v3/content/widgets", nil, toWidget(req), &env); err != nil {
		return "", fmt.Errorf("creating widget: %w", err)
	}
	return env.Data.UUID, nil
}

// UpdateWidget replaces a widget's name and configuration.
func (c *Client) UpdateWidget(ctx context.Context, widgetUUID string, req *adapter.WidgetRequest) error {
	if err := c.call(ctx, http.MethodPut, "/v3/content/widgets/"+url.PathEscape(widgetUUID), nil, toWidget(req), nil); err != nil {
		return fmt.Errorf("updating widget %s: %w", widgetUUID, err)
	}
	return nil
}

// DeleteWidget removes a widget and, upstream, its placements.
func (c *Client) DeleteWidget(ctx context.Context, widgetUUID string) error {
	if err := c.call(ctx, http.MethodDelete, "/v3/content/widgets/"+url.PathEscape(widgetUUID), nil, nil, nil); err != nil {
		return fmt.Errorf("deleting widget %s: %w", widgetUUID, err)
	}
	return nil
}

// CreatePlacement places a widget in a theme region.
func (c *Client) CreatePlacement(ctx context.Context, req *adapter.PlacementRequest) (string, error) {
	body := bcPlacement{
		WidgetUUID:   req.WidgetUUID,
		TemplateFile: req.TemplateFile,
		Region:       req.RegionName,
		EntityID:     req.EntityID,
		SortOrder:    req.SortOrder,
		Status:       "active",
	}
	var env envelope[bcPlacement]
	if err := c.call(ctx, http.MethodPost, "/v3/content/placements", nil, body, &env); err != nil {
		return "", fmt.Errorf("creating placement: %w", err)
	}
	return env.Data.UUID, nil
}

// EnsureScript returns the UUID of the script called req.Name, creating it
// when missing.
func (c *Client) EnsureScript(ctx context.Context, req *adapter.ScriptRequest) (string, error) {
	scripts, err := listAll[bcScript](ctx, c, "/v3/content/scripts", nil, 0)
	if err != nil {
		return "", fmt.Errorf("listing scripts: %w", err)
	}
	for _, s := range scripts {
		if s.Name == req.Name {
			return s.UUID, nil
		}
	}

	body := bcScript{
		Name:            req.Name,
		Description:     req.Description,
		Src:             req.Src,
		AuthClientID:    c.cfg.ClientID,
		LoadMethod:      "defer",
		Location:        withDefault(req.Location, "footer"),
		Visibility:      withDefault(req.Visibility, "storefront"),
		Kind:            "src",
		ConsentCategory: "essential",
	}
	var env envelope[bcScript]
	if err := c.call(ctx, http.MethodPost, "/v3/content/scripts", nil, body, &env); err != nil {
		return "", fmt.Errorf("creating script: %w", err)
	}
	return env.Data.UUID, nil
}

func toWidget(req *adapter.WidgetRequest) bcWidget {
	cfg := req.Configuration
	if cfg == nil {
		cfg = map[string]any{}
	}
	return bcWidget{
		Name:                req.Name,
		WidgetTemplateUUID:  req.TemplateUUID,
		WidgetConfiguration: cfg,
	}
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
