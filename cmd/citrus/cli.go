package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cast"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/citrus/internal/diet"
	"github.com/hpungsan/citrus/internal/errors"
	"github.com/hpungsan/citrus/internal/logger"
	"github.com/hpungsan/citrus/internal/ops"
	"github.com/hpungsan/citrus/internal/suggest"
	"github.com/hpungsan/citrus/internal/web"
)

// maxGoalFileBytes bounds a goals file read from stdin.
const maxGoalFileBytes = 1 << 20

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, svc *ops.Service, log *logger.Logger) *cli.App {
	if log == nil {
		log = logger.Nop()
	}
	app := &cli.App{
		Name:    "citrus",
		Usage:   "Food log and nutrient suggestions",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "Log debug output to stderr"},
		},
		Commands: []*cli.Command{
			searchCmd(svc),
			eanCmd(svc),
			estimateCmd(svc),
			logCmd(db, svc),
			relogCmd(db),
			dayCmd(db),
			deleteCmd(db),
			goalsCmd(db),
			suggestCmd(db),
			serveCmd(db, log),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// searchCmd creates the search command.
func searchCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search foods by name",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of results"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Search(c.Context, svc, ops.SearchInput{
				Query: joinArgs(c),
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// eanCmd creates the ean command.
func eanCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "ean",
		Usage:     "Look up a packaged product by barcode",
		ArgsUsage: "<barcode>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "xml", Usage: "Request the XML representation"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.LookupEAN(c.Context, svc, ops.LookupInput{
				EAN: c.Args().First(),
				XML: c.Bool("xml"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// estimateCmd creates the estimate command.
func estimateCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "estimate",
		Usage:     "Estimate nutrients of a described meal",
		ArgsUsage: "<description>",
		Action: func(c *cli.Context) error {
			output, err := ops.Estimate(c.Context, svc, ops.EstimateInput{Text: joinArgs(c)})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// logCmd creates the log command.
func logCmd(db *sql.DB, svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "Log a portion of a food found by barcode, search or description",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ean", Aliases: []string{"e"}, Usage: "Product barcode"},
			&cli.BoolFlag{Name: "xml", Usage: "Look up the barcode as XML"},
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Search query; the first result is logged"},
			&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Free-text meal description to estimate"},
			&cli.Float64Flag{Name: "grams", Aliases: []string{"g"}, Usage: "Portion in grams (defaults to one serving)"},
			&cli.StringFlag{Name: "meal", Aliases: []string{"m"}, Usage: "breakfast|lunch|dinner|snacks"},
			&cli.StringFlag{Name: "day", Aliases: []string{"d"}, Usage: "YYYY-MM-DD, today or yesterday"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Override the logged name"},
		},
		Action: func(c *cli.Context) error {
			found, err := ops.ResolveFood(c.Context, svc, ops.FoodRef{
				EAN:   c.String("ean"),
				XML:   c.Bool("xml"),
				Query: c.String("query"),
				Text:  c.String("text"),
			})
			if err != nil {
				return outputError(err)
			}
			if !found.Found {
				return outputError(errors.NewNotFound("food", found.Reason))
			}

			output, err := ops.LogFood(c.Context, db, ops.LogFoodInput{
				Profile: *found.Profile,
				Name:    c.String("name"),
				Grams:   c.Float64("grams"),
				Meal:    c.String("meal"),
				Day:     c.String("day"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// relogCmd creates the relog command.
func relogCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "relog",
		Usage:     "Log a previous entry again",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "grams", Aliases: []string{"g"}, Usage: "Portion in grams (defaults to the original)"},
			&cli.StringFlag{Name: "meal", Aliases: []string{"m"}, Usage: "Meal (defaults to the original)"},
			&cli.StringFlag{Name: "day", Aliases: []string{"d"}, Usage: "YYYY-MM-DD, today or yesterday"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Relog(c.Context, db, ops.RelogInput{
				ID:    c.Args().First(),
				Grams: c.Float64("grams"),
				Meal:  c.String("meal"),
				Day:   c.String("day"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// dayCmd creates the day command.
func dayCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "day",
		Usage:     "Show one day's log grouped by meal",
		ArgsUsage: "[YYYY-MM-DD|today|yesterday]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "pretty", Aliases: []string{"p"}, Usage: "Human-readable output"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListDay(c.Context, db, ops.DayInput{Day: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("pretty") {
				printDay(c.App.Writer, output)
				return nil
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a log entry",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.DeleteEntry(c.Context, db, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// goalsCmd creates the goals command and its subcommands.
func goalsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "goals",
		Usage: "Show or change daily nutrient goals",
		Action: func(c *cli.Context) error {
			output, err := ops.GetGoals(c.Context, db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the stored goals",
				Action: func(c *cli.Context) error {
					output, err := ops.GetGoals(c.Context, db)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, output)
				},
			},
			{
				Name:      "set",
				Usage:     "Override individual goals in stored units (kcal, grams)",
				ArgsUsage: "<key=value>...",
				Action: func(c *cli.Context) error {
					values, err := parseAssignments(c.Args().Slice())
					if err != nil {
						return outputError(errors.NewInvalidRequest(err.Error()))
					}
					output, err := ops.SetGoals(c.Context, db, ops.SetGoalsInput{Values: values})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, output)
				},
			},
			{
				Name:  "style",
				Usage: "Derive all goals from a calorie target and a diet style",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "calories", Aliases: []string{"c"}, Required: true, Usage: "Daily calorie target"},
					&cli.StringFlag{Name: "style", Aliases: []string{"s"}, Required: true, Usage: stylesUsage()},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.ApplyDietStyle(c.Context, db, ops.StyleInput{
						Calories: c.Float64("calories"),
						Style:    c.String("style"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, output)
				},
			},
			{
				Name:      "import",
				Usage:     "Replace goals from a YAML file (- for stdin)",
				ArgsUsage: "<path>",
				Action: func(c *cli.Context) error {
					r, closeFn, err := openInput(c.Args().First())
					if err != nil {
						return outputError(err)
					}
					defer closeFn()
					output, err := ops.ImportGoals(c.Context, db, r)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, output)
				},
			},
			{
				Name:      "export",
				Usage:     "Write goals as YAML to a file (default stdout)",
				ArgsUsage: "[path]",
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" || path == "-" {
						if err := ops.ExportGoals(c.Context, db, c.App.Writer); err != nil {
							return outputError(err)
						}
						return nil
					}
					f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
					if err != nil {
						return outputError(errors.NewInvalidRequest(fmt.Sprintf("cannot write %s: %v", path, err)))
					}
					if err := ops.ExportGoals(c.Context, db, f); err != nil {
						f.Close()
						return outputError(err)
					}
					if err := f.Close(); err != nil {
						return outputError(errors.NewInternal(err))
					}
					return outputJSON(c.App.Writer, map[string]string{"path": path})
				},
			},
		},
	}
}

// suggestCmd creates the suggest command.
func suggestCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "suggest",
		Usage: "Suggest changes based on the previous ten days",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "today", Usage: "Day the window ends before (default today)"},
			&cli.BoolFlag{Name: "pretty", Aliases: []string{"p"}, Usage: "Human-readable output"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Suggestions(c.Context, db, ops.SuggestionsInput{Today: c.String("today")})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("pretty") {
				printSuggestions(c.App.Writer, output)
				return nil
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, log *logger.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to listen on"},
			&cli.IntFlag{Name: "port", Value: 8411, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(db, log, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			fmt.Fprintf(os.Stderr, "citrus web UI on http://%s\n", srv.Addr)
			if err := web.Run(srv, log); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if cErr, ok := err.(*errors.CitrusError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", cErr.Code, cErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// joinArgs joins positional arguments so queries need no quoting.
func joinArgs(c *cli.Context) string {
	return strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
}

// parseAssignments parses "key=value" arguments into goal values.
func parseAssignments(args []string) (map[string]float64, error) {
	out := make(map[string]float64, len(args))
	for _, a := range args {
		key, raw, ok := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", a)
		}
		v, err := cast.ToFloat64E(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q", key, raw)
		}
		out[key] = v
	}
	return out, nil
}

func stylesUsage() string {
	names := make([]string, 0, len(diet.Styles()))
	for _, s := range diet.Styles() {
		names = append(names, string(s))
	}
	return "Diet style: " + strings.Join(names, "|")
}

// openInput opens path for reading; "-" or empty reads stdin.
func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		if !stdinHasData() {
			return nil, nil, errors.NewInvalidRequest("goals must be piped via stdin or given as a path")
		}
		return io.LimitReader(os.Stdin, maxGoalFileBytes), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.NewInvalidRequest(fmt.Sprintf("cannot read %s: %v", path, err))
	}
	return io.LimitReader(f, maxGoalFileBytes), func() { f.Close() }, nil
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

var (
	heading = color.New(color.Bold)
	muted   = color.New(color.Faint)
	over    = color.New(color.FgRed, color.Bold)
	under   = color.New(color.FgYellow, color.Bold)
	good    = color.New(color.FgGreen)
)

// printDay writes a day's log for a terminal.
func printDay(w io.Writer, d *ops.DayOutput) {
	heading.Fprintf(w, "%s\n", d.Day)
	for _, m := range d.Meals {
		heading.Fprintf(w, "\n%s", strings.ToUpper(string(m.Meal)))
		muted.Fprintf(w, "  %s\n", diet.Calories.Format(m.Totals.Calories))
		if len(m.Entries) == 0 {
			muted.Fprintln(w, "  nothing logged")
			continue
		}
		for _, e := range m.Entries {
			fmt.Fprintf(w, "  %-32s %8s g  %10s  ", e.Name, humanize.FormatFloat("#,###.#", e.PortionGrams), diet.Calories.Format(e.Amounts.Calories))
			muted.Fprintf(w, "%s  %s\n", humanize.Time(time.Unix(e.LoggedAt, 0)), e.ID)
		}
	}

	heading.Fprintln(w, "\nPROGRESS")
	for _, p := range d.Progress {
		c := good
		switch {
		case p.Goal <= 0:
			c = muted
		case p.Percent > 110:
			c = over
		case p.Percent < 50:
			c = under
		}
		fmt.Fprintf(w, "  %-22s %12s / %-12s ", p.Key.Name(), p.Key.Format(p.Value), p.Key.Format(p.Goal))
		c.Fprintf(w, "%s%%\n", humanize.FormatFloat("#,###.", p.Percent))
	}
}

// printSuggestions writes suggestions for a terminal.
func printSuggestions(w io.Writer, s *ops.SuggestionsOutput) {
	if len(s.Suggestions) == 0 {
		muted.Fprintf(w, "No suggestions for the ten days before %s.\n", s.Today)
		return
	}
	for i, sg := range s.Suggestions {
		if i > 0 {
			fmt.Fprintln(w)
		}
		c := under
		if sg.Direction == suggest.TooHigh {
			c = over
		}
		c.Fprintf(w, "%s\n", sg.Title)
		fmt.Fprintf(w, "%s\n", sg.Description)
		muted.Fprintf(w, "target %s to %s\n", sg.Key.Format(sg.SafeBand.Lower), sg.Key.Format(sg.SafeBand.Upper))
		for _, p := range sg.Graph {
			fmt.Fprintf(w, "  %s  %s\n", p.Date, sg.Key.Format(p.Value))
		}
		fmt.Fprintf(w, "\n%s\n", sg.Answer)
	}
}
