package browser

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/document-center/pkg/envelope"
	"github.com/JaimeStill/document-center/pkg/handlers"
	"github.com/JaimeStill/document-center/pkg/routes"
)

// Page is the response shape for a scraped document.
type Page struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Cached bool   `json:"cached"`
	Text   string `json:"text"`
	HTML   string `json:"html"`
}

type Handler struct {
	browser *Browser
	logger  *slog.Logger
}

func NewHandler(b *Browser, logger *slog.Logger) *Handler {
	return &Handler{
		browser: b,
		logger:  logger.With("handler", "browser"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/browser",
		Description: "Cached, robots-aware page fetches",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/scrape", Handler: h.Scrape},
		},
	}
}

func (h *Handler) Scrape(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")

	result := envelope.Capture(h.logger, "browser.scrape", func() (Page, error) {
		doc, err := h.browser.FetchAndParse(r.Context(), target)
		if err != nil {
			return Page{}, err
		}
		return Page{
			URL:    doc.URL,
			Title:  doc.Title(),
			Cached: doc.Cached,
			Text:   doc.Text(),
			HTML:   doc.HTML(),
		}, nil
	})
	handlers.RespondResult(w, result)
}
