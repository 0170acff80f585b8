package web

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/citrus/internal/db"
	"github.com/hpungsan/citrus/internal/diet"
	"github.com/hpungsan/citrus/internal/errors"
	"github.com/hpungsan/citrus/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	renderer *Renderer
	now      func() time.Time
}

func (h *Handlers) clock() time.Time {
	if h.now == nil {
		return time.Now()
	}
	return h.now()
}

// HandleDay handles GET /days/{day}: one day's log grouped by meal.
func (h *Handlers) HandleDay(w http.ResponseWriter, r *http.Request) {
	now := h.clock()
	result, err := ops.ListDay(r.Context(), h.db, ops.DayInput{Day: r.PathValue("day"), Now: now})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	t, _ := time.Parse(diet.DayLayout, result.Day)
	data := DayPageData{
		PageData: PageData{
			Title:   t.Format("Monday, 2 January 2006"),
			Version: h.renderer.version,
			Nav:     "day",
		},
		Day:     result,
		Prev:    diet.Day(t.AddDate(0, 0, -1)),
		Next:    diet.Day(t.AddDate(0, 0, 1)),
		IsToday: result.Day == diet.Day(now),
	}
	if len(result.Progress) > 0 {
		data.Calories = result.Progress[0]
	}
	h.renderer.renderPage(w, r, "day", data)
}

// HandleSuggestions handles GET /suggestions: the ranked suggestions for
// the ten days before today.
func (h *Handlers) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Suggestions(r.Context(), h.db, ops.SuggestionsInput{
		Today: r.URL.Query().Get("today"),
		Now:   h.clock(),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	items := make([]SuggestionView, len(result.Suggestions))
	for i, s := range result.Suggestions {
		items[i] = SuggestionView{Suggestion: s, AnswerHTML: renderMarkdown(s.Answer)}
	}
	h.renderer.renderPage(w, r, "suggestions", SuggestionsPageData{
		PageData: PageData{
			Title:   "Suggestions",
			Version: h.renderer.version,
			Nav:     "suggestions",
		},
		Today: result.Today,
		Items: items,
	})
}

// HandleGoals handles GET /goals.
func (h *Handlers) HandleGoals(w http.ResponseWriter, r *http.Request) {
	result, err := ops.GetGoals(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderer.renderPage(w, r, "goals", GoalsPageData{
		PageData: PageData{
			Title:   "Goals",
			Version: h.renderer.version,
			Nav:     "goals",
		},
		Goals: result,
		Keys:  diet.Keys,
	})
}

// HandleDeleteEntry handles DELETE /entries/{id}: permanently delete a log entry.
func (h *Handlers) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if strings.TrimSpace(id) == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("entry ID is required"))
		return
	}

	entry, err := db.GetEntry(r.Context(), h.db, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	result, err := ops.DeleteEntry(r.Context(), h.db, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	dayURL := "/days/" + entry.Day

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dayURL)
		w.WriteHeader(http.StatusOK)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, dayURL, http.StatusSeeOther)
}

// HandleAPIDay handles GET /api/days/{day}.
func (h *Handlers) HandleAPIDay(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListDay(r.Context(), h.db, ops.DayInput{Day: r.PathValue("day"), Now: h.clock()})
	if err != nil {
		renderJSONError(w, asCitrusError(err))
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleAPISuggestions handles GET /api/suggestions.
func (h *Handlers) HandleAPISuggestions(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Suggestions(r.Context(), h.db, ops.SuggestionsInput{
		Today: r.URL.Query().Get("today"),
		Now:   h.clock(),
	})
	if err != nil {
		renderJSONError(w, asCitrusError(err))
		return
	}
	renderJSON(w, http.StatusOK, result)
}
