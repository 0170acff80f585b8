package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"

	"github.com/hpungsan/citrus/internal/diet"
	"github.com/hpungsan/citrus/internal/errors"
	"github.com/hpungsan/citrus/internal/logger"
	"github.com/hpungsan/citrus/internal/nutrient"
	"github.com/hpungsan/citrus/internal/ops"
	"github.com/hpungsan/citrus/internal/suggest"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "day", "suggestions", "goals"
}

// DayPageData is the template data for the day page.
type DayPageData struct {
	PageData
	Day      *ops.DayOutput
	Prev     string
	Next     string
	IsToday  bool
	Calories ops.Progress
}

// SuggestionView is one suggestion with its answer rendered to HTML.
type SuggestionView struct {
	suggest.Suggestion
	AnswerHTML template.HTML
}

// SuggestionsPageData is the template data for the suggestions page.
type SuggestionsPageData struct {
	PageData
	Today string
	Items []SuggestionView
}

// GoalsPageData is the template data for the goals page.
type GoalsPageData struct {
	PageData
	Goals *ops.GoalsOutput
	Keys  []diet.Key
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	log       *logger.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, log *logger.Logger) *Renderer {
	if log == nil {
		log = logger.Nop()
	}
	funcMap := template.FuncMap{
		"amount":     diet.Key.Format,
		"keyName":    diet.Key.Name,
		"percent":    formatPercent,
		"barWidth":   barWidth,
		"clock":      formatClock,
		"ago":        formatAgo,
		"grams":      formatGrams,
		"mealName":   func(m diet.Meal) string { return nutrient.TitleCase(string(m)) },
		"styleName":  func(s diet.Style) string { return nutrient.TitleCase(strings.ReplaceAll(string(s), "_", " ")) },
		"goalAmount": func(goals diet.Amounts, k diet.Key) string { return k.Format(goals.Get(k)) },
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"day":         "day.html",
		"suggestions": "suggestions.html",
		"goals":       "goals.html",
		"error":       "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		log:       log,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For htmx requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.log.Error("template %q not found", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.log.Error("template execution error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// asCitrusError unwraps err, treating anything unknown as internal.
func asCitrusError(err error) *errors.CitrusError {
	var cErr *errors.CitrusError
	if !stderrors.As(err, &cErr) {
		cErr = errors.NewInternal(err)
	}
	return cErr
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	cErr := asCitrusError(err)
	if cErr.Code == errors.ErrInternal {
		r.log.Error("%s %s: %v", req.Method, req.URL.Path, err)
	}

	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(cErr.Status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(cErr.Message))
		return
	}

	if strings.Contains(req.Header.Get("Accept"), "application/json") {
		renderJSONError(w, cErr)
		return
	}

	r.renderPageStatus(w, req, cErr.Status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", cErr.Status),
			Version: r.version,
		},
		StatusCode: cErr.Status,
		Message:    cErr.Message,
	})
}

// renderJSONError writes the {"error": {...}} envelope.
func renderJSONError(w http.ResponseWriter, cErr *errors.CitrusError) {
	renderJSON(w, cErr.Status, map[string]any{
		"error": map[string]any{
			"code":    string(cErr.Code),
			"message": cErr.Message,
			"status":  cErr.Status,
		},
	})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

func formatPercent(p float64) string {
	return humanize.FormatFloat("#,###.", p) + "%"
}

// barWidth clamps a percentage for use as a CSS width.
func barWidth(p float64) int {
	if p < 0 || math.IsNaN(p) {
		return 0
	}
	if p > 100 {
		return 100
	}
	return int(math.Round(p))
}

func formatGrams(g float64) string {
	return humanize.FormatFloat("#,###.#", g) + " g"
}

// formatClock formats a Unix timestamp as local "15:04".
func formatClock(unix int64) string {
	return time.Unix(unix, 0).Format("15:04")
}

// formatAgo formats a Unix timestamp relative to now ("3 hours ago").
func formatAgo(unix int64) string {
	return humanize.Time(time.Unix(unix, 0))
}
