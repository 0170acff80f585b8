package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/citrus/internal/config"
	"github.com/hpungsan/citrus/internal/db"
	"github.com/hpungsan/citrus/internal/errors"
	"github.com/hpungsan/citrus/internal/logger"
	"github.com/hpungsan/citrus/internal/normalize"
	"github.com/hpungsan/citrus/internal/ops"
)

// stubFetcher returns canned payloads.
type stubFetcher struct {
	search   string
	ean      string
	estimate string
	err      error
}

func (s stubFetcher) Search(context.Context, string, int) ([]byte, error) {
	return []byte(s.search), s.err
}

func (s stubFetcher) LookupEAN(context.Context, string) ([]byte, error) {
	return []byte(s.ean), s.err
}

func (s stubFetcher) LookupEANXML(context.Context, string) ([]byte, error) {
	return nil, errors.NewNotFound("product", "")
}

func (s stubFetcher) Estimate(context.Context, string) (string, error) {
	return s.estimate, s.err
}

var defaultStub = stubFetcher{
	search: `{"foods": [{"description": "Banana, raw", "foodMeasures": [{"gramWeight": 118, "rank": 1, "disseminationText": "1 medium"}],
		"foodNutrients": [{"nutrientId": 1008, "value": 89, "unitName": "KCAL"}, {"nutrientId": 1005, "value": 22.8, "unitName": "G"}]}]}`,
	ean:      `{"status": 1, "product": {"product_name": "Skyr", "serving_quantity": 150, "nutriments": {"energy-kcal_100g": 63, "proteins_100g": 11}}}`,
	estimate: `{"name": "Omelette", "calories": 300, "portion_grams": 150, "protein": 20}`,
}

// testSetup creates a temporary database, service and config for testing.
func testSetup(t *testing.T, f ops.Fetcher) (*sql.DB, *ops.Service, *config.Config) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	svc := &ops.Service{
		Fetcher:    f,
		Normalizer: normalize.New(normalize.Options{}),
		Log:        logger.Nop(),
	}
	return database, svc, config.DefaultConfig()
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// decodeResult unmarshals the text content of a tool result.
func decodeResult(t *testing.T, r *mcp.CallToolResult, v any) {
	t.Helper()
	if len(r.Content) == 0 {
		t.Fatal("result has no content")
	}
	text := r.Content[0].(mcp.TextContent).Text
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to unmarshal result %q: %v", text, err)
	}
}

// errorCode returns the error code of a failed result.
func errorCode(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeResult(t, r, &payload)
	return payload.Error.Code
}

func call(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	r, err := fn(context.Background(), makeRequest(args))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return r
}

func TestHandleFoodSearch(t *testing.T) {
	database, svc, _ := testSetup(t, defaultStub)
	h := NewHandlers(database, svc)

	r := call(t, h.HandleFoodSearch, map[string]any{"query": "banana"})
	if r.IsError {
		t.Fatalf("unexpected error result: %+v", r.Content)
	}
	var out struct {
		Foods []struct {
			Name                string  `json:"name"`
			DefaultServingGrams float64 `json:"default_serving_grams"`
		} `json:"foods"`
	}
	decodeResult(t, r, &out)
	if len(out.Foods) != 1 || out.Foods[0].Name != "Banana, raw" {
		t.Errorf("foods = %+v", out.Foods)
	}
	if out.Foods[0].DefaultServingGrams != 118 {
		t.Errorf("serving = %v, want 118", out.Foods[0].DefaultServingGrams)
	}

	r = call(t, h.HandleFoodSearch, map[string]any{"query": 42})
	if code := errorCode(t, r); code != "INVALID_REQUEST" {
		t.Errorf("code = %s, want INVALID_REQUEST for a non-string query", code)
	}
}

func TestHandleFoodSearch_SoftFailure(t *testing.T) {
	database, svc, _ := testSetup(t, stubFetcher{err: errors.NewNetworkUnavailable("http://food", 0, fmt.Errorf("dial tcp"))})
	h := NewHandlers(database, svc)

	r := call(t, h.HandleFoodSearch, map[string]any{"query": "banana"})
	if r.IsError {
		t.Fatal("soft failures are not tool errors")
	}
	var out ops.SearchOutput
	decodeResult(t, r, &out)
	if out.Reason != "NETWORK_UNAVAILABLE" || len(out.Foods) != 0 {
		t.Errorf("out = %+v", out)
	}
}

func TestHandleFoodLookupAndEstimate(t *testing.T) {
	database, svc, _ := testSetup(t, defaultStub)
	h := NewHandlers(database, svc)

	var out struct {
		Found   bool   `json:"found"`
		Reason  string `json:"reason"`
		Profile struct {
			Name string `json:"name"`
		} `json:"profile"`
	}
	decodeResult(t, call(t, h.HandleFoodLookupEAN, map[string]any{"ean": "5701234567890"}), &out)
	if !out.Found || out.Profile.Name != "Skyr" {
		t.Errorf("ean lookup = %+v", out)
	}

	out.Found, out.Reason = false, ""
	decodeResult(t, call(t, h.HandleFoodLookupEAN, map[string]any{"ean": "5701234567890", "xml": true}), &out)
	if out.Found || out.Reason != "NOT_FOUND" {
		t.Errorf("xml lookup = %+v, want NOT_FOUND reason", out)
	}

	decodeResult(t, call(t, h.HandleFoodEstimate, map[string]any{"text": "cheese omelette"}), &out)
	if !out.Found || out.Profile.Name != "Omelette" {
		t.Errorf("estimate = %+v", out)
	}

	if code := errorCode(t, call(t, h.HandleFoodLookupEAN, map[string]any{})); code != "INVALID_REQUEST" {
		t.Errorf("missing ean code = %s", code)
	}
}

func TestHandleLogLifecycle(t *testing.T) {
	database, svc, _ := testSetup(t, defaultStub)
	h := NewHandlers(database, svc)

	var added LogAddResult
	r := call(t, h.HandleLogAdd, map[string]any{"query": "banana", "meal": "breakfast", "day": "2026-03-11"})
	decodeResult(t, r, &added)
	if !added.Logged || added.ID == "" {
		t.Fatalf("log_add = %+v", added)
	}
	if added.Entry.PortionGrams != 118 || added.Entry.Amounts.Calories < 105 || added.Entry.Amounts.Calories > 105.1 {
		t.Errorf("entry = %v g %v kcal, want 118 g 105.02 kcal", added.Entry.PortionGrams, added.Entry.Amounts.Calories)
	}

	var relogged ops.LogFoodOutput
	decodeResult(t, call(t, h.HandleLogRelog, map[string]any{"id": added.ID, "grams": 59, "day": "2026-03-11"}), &relogged)
	if relogged.ID == "" || relogged.Entry.Meal != "breakfast" {
		t.Errorf("log_relog = %+v", relogged)
	}

	var day ops.DayOutput
	decodeResult(t, call(t, h.HandleLogDay, map[string]any{"day": "2026-03-11"}), &day)
	if day.Count != 2 || len(day.Meals[0].Entries) != 2 {
		t.Errorf("log_day count = %d, breakfast %d", day.Count, len(day.Meals[0].Entries))
	}

	var deleted ops.DeleteOutput
	decodeResult(t, call(t, h.HandleLogDelete, map[string]any{"id": added.ID}), &deleted)
	if !deleted.Deleted {
		t.Errorf("log_delete = %+v", deleted)
	}
	if code := errorCode(t, call(t, h.HandleLogDelete, map[string]any{"id": added.ID})); code != "NOT_FOUND" {
		t.Errorf("second delete code = %s, want NOT_FOUND", code)
	}
}

func TestHandleLogAdd_Unresolved(t *testing.T) {
	database, svc, _ := testSetup(t, stubFetcher{estimate: `{"name": "", "calories": 0, "portion_grams": 0}`})
	h := NewHandlers(database, svc)

	var out LogAddResult
	decodeResult(t, call(t, h.HandleLogAdd, map[string]any{"text": "a blue bicycle"}), &out)
	if out.Logged || out.Reason != "NO_FOOD_DETECTED" {
		t.Errorf("log_add = %+v", out)
	}

	r := call(t, h.HandleLogAdd, map[string]any{"text": "soup", "query": "soup"})
	if code := errorCode(t, r); code != "INVALID_REQUEST" {
		t.Errorf("ambiguous ref code = %s", code)
	}
}

func TestHandleGoals(t *testing.T) {
	database, svc, _ := testSetup(t, defaultStub)
	h := NewHandlers(database, svc)

	var goals ops.GoalsOutput
	decodeResult(t, call(t, h.HandleGoalsStyle, map[string]any{"calories": 2000, "style": "keto"}), &goals)
	if goals.Style != "keto" || goals.Goals.Carbs != 25 {
		t.Errorf("goals_style = %+v", goals)
	}

	decodeResult(t, call(t, h.HandleGoalsSet, map[string]any{"values": map[string]any{"fiber": 35}}), &goals)
	if goals.Goals.Fiber != 35 || goals.Goals.Carbs != 25 {
		t.Errorf("goals_set = %+v", goals.Goals)
	}

	decodeResult(t, call(t, h.HandleGoalsGet, nil), &goals)
	if goals.Goals.Fiber != 35 || goals.CalorieTarget != 2000 {
		t.Errorf("goals_get = %+v", goals)
	}

	if code := errorCode(t, call(t, h.HandleGoalsSet, map[string]any{"values": map[string]any{"zinc": 1}})); code != "INVALID_REQUEST" {
		t.Errorf("unknown key code = %s", code)
	}
	if code := errorCode(t, call(t, h.HandleGoalsStyle, map[string]any{"calories": 2000, "style": "fruitarian"})); code != "INVALID_REQUEST" {
		t.Errorf("unknown style code = %s", code)
	}
}

func TestHandleInsightsSuggest(t *testing.T) {
	database, svc, _ := testSetup(t, defaultStub)
	h := NewHandlers(database, svc)

	var out ops.SuggestionsOutput
	decodeResult(t, call(t, h.HandleInsightsSuggest, map[string]any{"today": "2026-03-11"}), &out)
	if out.Today != "2026-03-11" || len(out.Window) != 10 {
		t.Errorf("window = %s with %d days", out.Today, len(out.Window))
	}
	if len(out.Suggestions) != 0 {
		t.Errorf("suggestions = %d, want none for an empty log", len(out.Suggestions))
	}

	if code := errorCode(t, call(t, h.HandleInsightsSuggest, map[string]any{"today": "last week"})); code != "INVALID_REQUEST" {
		t.Errorf("bad day code = %s", code)
	}
}

func TestServerRegistration(t *testing.T) {
	database, svc, cfg := testSetup(t, defaultStub)

	tools := NewServer(database, svc, cfg, "test").ListTools()
	if len(tools) != len(toolRegistry) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry))
	}
	for _, name := range AllToolNames() {
		if _, ok := tools[name]; !ok {
			t.Errorf("tool %q not registered", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	database, svc, cfg := testSetup(t, defaultStub)

	cfg.DisabledTools = []string{"log_delete", "log_delete", "goals_set"}
	tools := NewServer(database, svc, cfg, "test").ListTools()
	if len(tools) != len(toolRegistry)-2 {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry)-2)
	}
	for _, name := range []string{"log_delete", "goals_set"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
}

func TestServerRegistration_WithDisabledTypes(t *testing.T) {
	database, svc, cfg := testSetup(t, defaultStub)

	cfg.DisabledTypes = []string{"food"}
	tools := NewServer(database, svc, cfg, "test").ListTools()
	for name := range tools {
		if GetTypeForTool(name) == "food" {
			t.Errorf("tool %q of disabled type registered", name)
		}
	}
	if _, ok := tools["log_add"]; !ok {
		t.Error("log_add should still be registered")
	}

	cfg.DisabledTypes = KnownTypes
	if n := len(NewServer(database, svc, cfg, "test").ListTools()); n != 0 {
		t.Errorf("registered tool count = %d, want 0", n)
	}
}

func TestValidateDisabled(t *testing.T) {
	if got := ValidateDisabledTools([]string{"log_add", "capsule_store"}); len(got) != 1 || got[0] != "capsule_store" {
		t.Errorf("ValidateDisabledTools = %v", got)
	}
	if got := ValidateDisabledTypes([]string{"goals", "capsule"}); len(got) != 1 || got[0] != "capsule" {
		t.Errorf("ValidateDisabledTypes = %v", got)
	}
}

func TestToolNamesHaveKnownTypes(t *testing.T) {
	known := make(map[string]bool)
	for _, typ := range KnownTypes {
		known[typ] = true
	}
	for _, name := range AllToolNames() {
		if !known[GetTypeForTool(name)] {
			t.Errorf("tool %q has unknown type %q", name, GetTypeForTool(name))
		}
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))

	var payload map[string]any
	decodeResult(t, r, &payload)
	errObj := payload["error"].(map[string]any)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	r := errorResult(fmt.Errorf("lookup: %w", errors.NewNotFound("entry", "abc")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	var payload map[string]any
	decodeResult(t, r, &payload)
	errObj := payload["error"].(map[string]any)
	if errObj["code"] != string(errors.ErrNotFound) {
		t.Errorf("code=%v, want NOT_FOUND", errObj["code"])
	}
	if _, ok := errObj["details"]; !ok {
		t.Error("expected details for NOT_FOUND")
	}
}

func TestErrorResult_PlainError(t *testing.T) {
	if code := errorCode(t, errorResult(fmt.Errorf("boom"))); code != "INTERNAL" {
		t.Errorf("code = %s, want INTERNAL", code)
	}
}
