package db

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/hpungsan/citrus/internal/diet"
	"github.com/hpungsan/citrus/internal/errors"
)

// Entry is one logged portion of food. Amounts are absolute for the portion
// and follow the stored convention (kcal for calories, grams otherwise).
type Entry struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Meal         diet.Meal    `json:"meal"`
	Day          string       `json:"day"`
	LoggedAt     int64        `json:"logged_at"`
	PortionGrams float64      `json:"portion_grams"`
	Amounts      diet.Amounts `json:"amounts"`
}

// amountColumns maps stored keys to food_logs columns, in schema order.
var amountColumns = []struct {
	key diet.Key
	col string
}{
	{diet.Calories, "calories"},
	{diet.Carbs, "carbs"},
	{diet.Protein, "protein"},
	{diet.Fat, "fat"},
	{diet.Fiber, "fiber"},
	{diet.Sugar, "sugar"},
	{diet.SaturatedFat, "saturated_fat"},
	{diet.MonounsaturatedFat, "mono_fat"},
	{diet.PolyunsaturatedFat, "poly_fat"},
	{diet.Cholesterol, "cholesterol"},
	{diet.Sodium, "sodium"},
	{diet.Potassium, "potassium"},
	{diet.Calcium, "calcium"},
	{diet.Iron, "iron"},
	{diet.VitaminA, "vitamin_a"},
	{diet.VitaminC, "vitamin_c"},
}

var (
	amountCols = func() string {
		cols := make([]string, len(amountColumns))
		for i, c := range amountColumns {
			cols[i] = c.col
		}
		return strings.Join(cols, ", ")
	}()

	sumCols = func() string {
		cols := make([]string, len(amountColumns))
		for i, c := range amountColumns {
			cols[i] = "COALESCE(SUM(" + c.col + "), 0.0)"
		}
		return strings.Join(cols, ", ")
	}()

	entryCols = "id, name, meal, day, logged_at, portion_grams, " + amountCols
)

// InsertEntry stores a new log entry.
func InsertEntry(ctx context.Context, db *sql.DB, e *Entry) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", 6+len(amountColumns)), ", ")
	query := "INSERT INTO food_logs (" + entryCols + ") VALUES (" + placeholders + ")"

	args := []any{e.ID, e.Name, string(e.Meal), e.Day, e.LoggedAt, e.PortionGrams}
	for _, c := range amountColumns {
		args = append(args, e.Amounts.Get(c.key))
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetEntry retrieves an entry by its ULID.
func GetEntry(ctx context.Context, db *sql.DB, id string) (*Entry, error) {
	row := db.QueryRowContext(ctx, "SELECT "+entryCols+" FROM food_logs WHERE id = ?", id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("entry", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return e, nil
}

// ListEntriesForDay returns a day's entries in the order they were logged.
func ListEntriesForDay(ctx context.Context, db *sql.DB, day string) ([]Entry, error) {
	query := "SELECT " + entryCols + " FROM food_logs WHERE day = ? ORDER BY logged_at, id"
	rows, err := db.QueryContext(ctx, query, day)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return entries, nil
}

// DeleteEntry removes an entry permanently.
func DeleteEntry(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx, "DELETE FROM food_logs WHERE id = ?", id)
	if err != nil {
		return errors.NewInternal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("entry", id)
	}
	return nil
}

// DayTotals sums every entry of a day. A day with no entries is all zeros.
func DayTotals(ctx context.Context, db *sql.DB, day string) (diet.Amounts, error) {
	row := db.QueryRowContext(ctx, "SELECT "+sumCols+" FROM food_logs WHERE day = ?", day)

	vals := make([]float64, len(amountColumns))
	dest := make([]any, len(vals))
	for i := range vals {
		dest[i] = &vals[i]
	}
	if err := row.Scan(dest...); err != nil {
		return diet.Amounts{}, errors.NewInternal(err)
	}

	var out diet.Amounts
	for i, c := range amountColumns {
		out.Set(c.key, vals[i])
	}
	return out, nil
}

// GetGoals returns the stored goal set. Keys never saved keep their defaults.
func GetGoals(ctx context.Context, db *sql.DB) (diet.Amounts, error) {
	goals := diet.DefaultGoals()

	rows, err := db.QueryContext(ctx, "SELECT key, value FROM goals")
	if err != nil {
		return diet.Amounts{}, errors.NewInternal(err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value float64
		if err := rows.Scan(&key, &value); err != nil {
			return diet.Amounts{}, errors.NewInternal(err)
		}
		// Rows for keys this build doesn't know are left alone.
		if k, err := diet.ParseKey(key); err == nil {
			goals.Set(k, value)
		}
	}
	if err := rows.Err(); err != nil {
		return diet.Amounts{}, errors.NewInternal(err)
	}
	return goals, nil
}

// SaveGoals replaces the whole goal set in one transaction.
func SaveGoals(ctx context.Context, db *sql.DB, goals diet.Amounts) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO goals (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer stmt.Close()

	for _, k := range diet.Keys {
		if _, err := stmt.ExecContext(ctx, string(k), goals.Get(k)); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Setting keys.
const (
	SettingDietStyle     = "diet_style"
	SettingCalorieTarget = "calorie_target"
)

// GetSetting returns a setting value. ok is false when it was never set.
func GetSetting(ctx context.Context, db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewInternal(err)
	}
	return value, true, nil
}

// SetSetting stores a setting value.
func SetSetting(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetCalorieTarget reads the calorie_target setting; ok is false when unset
// or unparsable.
func GetCalorieTarget(ctx context.Context, db *sql.DB) (float64, bool, error) {
	s, ok, err := GetSetting(ctx, db, SettingCalorieTarget)
	if err != nil || !ok {
		return 0, false, err
	}
	v, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		return 0, false, nil
	}
	return v, true, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var e Entry
	var meal string
	vals := make([]float64, len(amountColumns))
	dest := []any{&e.ID, &e.Name, &meal, &e.Day, &e.LoggedAt, &e.PortionGrams}
	for i := range vals {
		dest = append(dest, &vals[i])
	}
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	e.Meal = diet.Meal(meal)
	for i, c := range amountColumns {
		e.Amounts.Set(c.key, vals[i])
	}
	return &e, nil
}
