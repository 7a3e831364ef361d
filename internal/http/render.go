package http

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type renderer struct {
	logger *slog.Logger
}

func newRenderer(logger *slog.Logger) renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return renderer{logger: logger}
}

func (rd renderer) render(ctx context.Context, w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		logger := LoggerFromContext(ctx)
		if logger == nil {
			logger = rd.logger
		}
		logger.ErrorContext(ctx, "failed to render template", "template", name, "error", err)
	}
}
