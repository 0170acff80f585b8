package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/citrus/internal/diet"
)

var mealNames = func() []string {
	out := make([]string, len(diet.Meals))
	for i, m := range diet.Meals {
		out[i] = string(m)
	}
	return out
}()

var styleNames = func() []string {
	styles := diet.Styles()
	out := make([]string, len(styles))
	for i, s := range styles {
		out[i] = string(s)
	}
	return out
}()

const dayHelp = "Calendar day as YYYY-MM-DD, \"today\" or \"yesterday\". Defaults to today."

var foodSearchToolDef = mcp.NewTool("food_search",
	mcp.WithDescription("Search the food database by free text. Returns normalized profiles with nutrients per 100 g and a default serving size. An empty result carries a reason code."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("query", mcp.Required(), mcp.Description("Food name, at least 3 characters")),
	mcp.WithNumber("limit", mcp.Description("Maximum results (default from config, max 50)")),
)

var foodLookupEANToolDef = mcp.NewTool("food_lookup_ean",
	mcp.WithDescription("Look up a packaged product by barcode (EAN/UPC)."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("ean", mcp.Required(), mcp.Description("Barcode digits")),
	mcp.WithBoolean("xml", mcp.Description("Use the XML product endpoint")),
)

var foodEstimateToolDef = mcp.NewTool("food_estimate",
	mcp.WithDescription("Estimate the nutrition of a meal described in plain language. Estimates are approximate and never cached."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("text", mcp.Required(), mcp.Description("Meal description, e.g. \"two boiled eggs and toast\"")),
)

var logAddToolDef = mcp.NewTool("log_add",
	mcp.WithDescription("Log a portion of food. Identify the food by exactly one of ean, query (first search hit) or text (estimate)."),
	mcp.WithString("ean", mcp.Description("Barcode of a packaged product")),
	mcp.WithBoolean("xml", mcp.Description("Use the XML product endpoint for ean")),
	mcp.WithString("query", mcp.Description("Search query; the first result is logged")),
	mcp.WithString("text", mcp.Description("Meal description to estimate")),
	mcp.WithString("name", mcp.Description("Override the logged name")),
	mcp.WithNumber("grams", mcp.Description("Portion in grams; defaults to the food's serving size")),
	mcp.WithString("meal", mcp.Enum(mealNames...), mcp.Description("Meal; defaults from the time of day")),
	mcp.WithString("day", mcp.Description(dayHelp)),
)

var logRelogToolDef = mcp.NewTool("log_relog",
	mcp.WithDescription("Log a previously logged entry again, optionally with a new portion, meal or day."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entry ID")),
	mcp.WithNumber("grams", mcp.Description("Portion in grams; defaults to the original portion")),
	mcp.WithString("meal", mcp.Enum(mealNames...), mcp.Description("Meal; defaults to the original meal")),
	mcp.WithString("day", mcp.Description(dayHelp)),
)

var logDayToolDef = mcp.NewTool("log_day",
	mcp.WithDescription("Show one day's log grouped by meal, with totals and progress against goals."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("day", mcp.Description(dayHelp)),
)

var logDeleteToolDef = mcp.NewTool("log_delete",
	mcp.WithDescription("Delete a log entry permanently."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entry ID")),
)

var goalsGetToolDef = mcp.NewTool("goals_get",
	mcp.WithDescription("Show daily nutrition goals. Calories are in kcal, every other nutrient in grams."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var goalsSetToolDef = mcp.NewTool("goals_set",
	mcp.WithDescription("Override individual daily goals; other goals are kept. Calories in kcal, everything else in grams."),
	mcp.WithObject("values", mcp.Required(), mcp.Description("Map of nutrient key (e.g. \"fiber\", \"sodium\") to goal value")),
)

var goalsStyleToolDef = mcp.NewTool("goals_style",
	mcp.WithDescription("Derive all goals from a daily calorie target and a diet style."),
	mcp.WithNumber("calories", mcp.Required(), mcp.Description("Daily calorie target in kcal")),
	mcp.WithString("style", mcp.Required(), mcp.Enum(styleNames...), mcp.Description("Diet style")),
)

var insightsSuggestToolDef = mcp.NewTool("insights_suggest",
	mcp.WithDescription("Compare the previous 10 days of logged intake with goals and return up to 10 suggestions."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("today", mcp.Description("Day the window ends before. "+dayHelp)),
)
