package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/citrus/internal/db"
	"github.com/hpungsan/citrus/internal/errors"
	"github.com/hpungsan/citrus/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	svc *ops.Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, svc *ops.Service) *Handlers {
	return &Handlers{db: db, svc: svc}
}

// Request types for each tool

// FoodSearchRequest represents the arguments for food_search.
type FoodSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// FoodLookupEANRequest represents the arguments for food_lookup_ean.
type FoodLookupEANRequest struct {
	EAN string `json:"ean"`
	XML bool   `json:"xml,omitempty"`
}

// FoodEstimateRequest represents the arguments for food_estimate.
type FoodEstimateRequest struct {
	Text string `json:"text"`
}

// LogAddRequest represents the arguments for log_add.
type LogAddRequest struct {
	EAN   string  `json:"ean,omitempty"`
	XML   bool    `json:"xml,omitempty"`
	Query string  `json:"query,omitempty"`
	Text  string  `json:"text,omitempty"`
	Name  string  `json:"name,omitempty"`
	Grams float64 `json:"grams,omitempty"`
	Meal  string  `json:"meal,omitempty"`
	Day   string  `json:"day,omitempty"`
}

// LogRelogRequest represents the arguments for log_relog.
type LogRelogRequest struct {
	ID    string  `json:"id"`
	Grams float64 `json:"grams,omitempty"`
	Meal  string  `json:"meal,omitempty"`
	Day   string  `json:"day,omitempty"`
}

// LogDayRequest represents the arguments for log_day.
type LogDayRequest struct {
	Day string `json:"day,omitempty"`
}

// LogDeleteRequest represents the arguments for log_delete.
type LogDeleteRequest struct {
	ID string `json:"id"`
}

// GoalsSetRequest represents the arguments for goals_set.
type GoalsSetRequest struct {
	Values map[string]float64 `json:"values"`
}

// GoalsStyleRequest represents the arguments for goals_style.
type GoalsStyleRequest struct {
	Calories float64 `json:"calories"`
	Style    string  `json:"style"`
}

// InsightsSuggestRequest represents the arguments for insights_suggest.
type InsightsSuggestRequest struct {
	Today string `json:"today,omitempty"`
}

// LogAddResult is returned by log_add. When the food could not be resolved
// Logged is false and Reason holds the error code.
type LogAddResult struct {
	Logged bool      `json:"logged"`
	Reason string    `json:"reason,omitempty"`
	ID     string    `json:"id,omitempty"`
	Entry  *db.Entry `json:"entry,omitempty"`
}

// Handler implementations

// HandleFoodSearch handles the food_search tool call.
func (h *Handlers) HandleFoodSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FoodSearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Search(ctx, h.svc, ops.SearchInput{Query: input.Query, Limit: input.Limit})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFoodLookupEAN handles the food_lookup_ean tool call.
func (h *Handlers) HandleFoodLookupEAN(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FoodLookupEANRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.LookupEAN(ctx, h.svc, ops.LookupInput{EAN: input.EAN, XML: input.XML})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFoodEstimate handles the food_estimate tool call.
func (h *Handlers) HandleFoodEstimate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FoodEstimateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Estimate(ctx, h.svc, ops.EstimateInput{Text: input.Text})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLogAdd handles the log_add tool call.
func (h *Handlers) HandleLogAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LogAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	food, err := ops.ResolveFood(ctx, h.svc, ops.FoodRef{
		EAN:   input.EAN,
		XML:   input.XML,
		Query: input.Query,
		Text:  input.Text,
	})
	if err != nil {
		return errorResult(err), nil
	}
	if !food.Found {
		return successResult(LogAddResult{Reason: food.Reason})
	}

	logged, err := ops.LogFood(ctx, h.db, ops.LogFoodInput{
		Profile: *food.Profile,
		Name:    input.Name,
		Grams:   input.Grams,
		Meal:    input.Meal,
		Day:     input.Day,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(LogAddResult{Logged: true, ID: logged.ID, Entry: logged.Entry})
}

// HandleLogRelog handles the log_relog tool call.
func (h *Handlers) HandleLogRelog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LogRelogRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Relog(ctx, h.db, ops.RelogInput{
		ID:    input.ID,
		Grams: input.Grams,
		Meal:  input.Meal,
		Day:   input.Day,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLogDay handles the log_day tool call.
func (h *Handlers) HandleLogDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LogDayRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.ListDay(ctx, h.db, ops.DayInput{Day: input.Day})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLogDelete handles the log_delete tool call.
func (h *Handlers) HandleLogDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LogDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.DeleteEntry(ctx, h.db, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGoalsGet handles the goals_get tool call.
func (h *Handlers) HandleGoalsGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.GetGoals(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGoalsSet handles the goals_set tool call.
func (h *Handlers) HandleGoalsSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GoalsSetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.SetGoals(ctx, h.db, ops.SetGoalsInput{Values: input.Values})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGoalsStyle handles the goals_style tool call.
func (h *Handlers) HandleGoalsStyle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GoalsStyleRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.ApplyDietStyle(ctx, h.db, ops.StyleInput{Calories: input.Calories, Style: input.Style})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleInsightsSuggest handles the insights_suggest tool call.
func (h *Handlers) HandleInsightsSuggest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[InsightsSuggestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Suggestions(ctx, h.db, ops.SuggestionsInput{Today: input.Today})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var cErr *errors.CitrusError
	if stderrors.As(err, &cErr) {
		errorObj := map[string]any{
			"code":    cErr.Code,
			"message": cErr.Message,
			"status":  cErr.Status,
		}
		if cErr.Code != errors.ErrInternal && cErr.Details != nil {
			errorObj["details"] = cErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
