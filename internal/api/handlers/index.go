package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// IndexPage is the data rendered into the selector page
type IndexPage struct {
	Title       string
	Regions     []string
	Selected    string
	RankingSize int
}

// Index renders the selector page.
// ?region= preselects a region; otherwise the first region is selected.
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	regions, err := h.service.Regions()
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	page := IndexPage{
		Title:       "Housing Price Dashboard",
		Regions:     regions,
		RankingSize: h.rankingSize,
	}
	if len(regions) > 0 {
		page.Selected = regions[0]
	}
	if q := r.URL.Query().Get("region"); q != "" && h.service.HasRegion(q) {
		page.Selected = q
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
