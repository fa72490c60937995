package widgets

import (
	"context"
	"log/slog"

	"storefront-widgets/internal/adapter"
)

// LoaderScriptName identifies the loader script upstream; Install looks it
// up by this name so repeated installs do not duplicate the tag.
const LoaderScriptName = "Storefront Widgets Loader"

// InstallResult reports the upstream objects Install ensured.
type InstallResult struct {
	ScriptUUID   string `json:"scriptUuid,omitempty"`
	TemplateUUID string `json:"templateUuid"`
}

// Install ensures the loader script (when configured) and the widget
// template exist upstream. It is safe to call repeatedly.
func (s *Service) Install(ctx context.Context) (*InstallResult, error) {
	var res InstallResult

	if s.opts.LoaderScriptURL != "" {
		scriptUUID, err := s.upstream.EnsureScript(ctx, &adapter.ScriptRequest{
			Name:        LoaderScriptName,
			Description: "Mounts product table widgets on the storefront",
			Src:         s.opts.LoaderScriptURL,
			Location:    "footer",
			Visibility:  "storefront",
		})
		if err != nil {
			return nil, upstreamError("ensuring loader script", err)
		}
		res.ScriptUUID = scriptUUID
	}

	templateUUID, err := s.upstream.EnsureWidgetTemplate(ctx, s.opts.TemplateName, s.TemplateHTML())
	if err != nil {
		return nil, upstreamError("ensuring widget template", err)
	}
	res.TemplateUUID = templateUUID

	s.logger.InfoContext(ctx, "storefront assets installed",
		slog.String("script_uuid", res.ScriptUUID),
		slog.String("template_uuid", res.TemplateUUID))
	return &res, nil
}
