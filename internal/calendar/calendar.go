// Package calendar renders an inline-keyboard month view and decodes its
// button callbacks. The string token encoding lives only here; callers
// work with the structured Selection type.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/postforge/bot/internal/telegram"
)

const callbackPrefix = "cal"

// Callback actions
const (
	actionIgnore = "IGNORE"
	actionDay    = "DAY"
	actionPrev   = "PREV"
	actionNext   = "NEXT"
)

// Selection kinds
const (
	SelectionIgnore = "ignore"
	SelectionDay    = "day"
	SelectionNav    = "nav"
)

// Selection is the decoded result of one calendar button press. For
// SelectionDay, Date is set; for SelectionNav, Year/Month name the view
// to re-render.
type Selection struct {
	Kind  string
	Date  time.Time
	Year  int
	Month time.Month
}

// IsCalendarCallback reports whether a callback payload belongs to this
// widget.
func IsCalendarCallback(data string) bool {
	return strings.HasPrefix(data, callbackPrefix+"_")
}

// Render builds the month view for year/month: a title row, a weekday
// row, the day grid (Monday first, blanks for out-of-month cells) and a
// prev/next navigation row.
func Render(year int, month time.Month) telegram.InlineKeyboardMarkup {
	ignore := callbackPrefix + "_" + actionIgnore

	var rows [][]telegram.InlineKeyboardButton

	rows = append(rows, []telegram.InlineKeyboardButton{
		{Text: fmt.Sprintf("%s %d", month.String(), year), CallbackData: ignore},
	})

	weekdays := []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}
	header := make([]telegram.InlineKeyboardButton, 0, len(weekdays))
	for _, day := range weekdays {
		header = append(header, telegram.InlineKeyboardButton{Text: day, CallbackData: ignore})
	}
	rows = append(rows, header)

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// Weekday with Monday as 0.
	lead := (int(first.Weekday()) + 6) % 7
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	week := make([]telegram.InlineKeyboardButton, 0, 7)
	for i := 0; i < lead; i++ {
		week = append(week, telegram.InlineKeyboardButton{Text: " ", CallbackData: ignore})
	}
	for day := 1; day <= daysInMonth; day++ {
		week = append(week, telegram.InlineKeyboardButton{
			Text:         strconv.Itoa(day),
			CallbackData: fmt.Sprintf("%s_%s_%d_%d_%d", callbackPrefix, actionDay, year, int(month), day),
		})
		if len(week) == 7 {
			rows = append(rows, week)
			week = make([]telegram.InlineKeyboardButton, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, telegram.InlineKeyboardButton{Text: " ", CallbackData: ignore})
		}
		rows = append(rows, week)
	}

	prevYear, prevMonth := addMonth(year, month, -1)
	nextYear, nextMonth := addMonth(year, month, 1)
	rows = append(rows, []telegram.InlineKeyboardButton{
		{Text: "<<", CallbackData: fmt.Sprintf("%s_%s_%d_%d", callbackPrefix, actionPrev, prevYear, int(prevMonth))},
		{Text: " ", CallbackData: ignore},
		{Text: ">>", CallbackData: fmt.Sprintf("%s_%s_%d_%d", callbackPrefix, actionNext, nextYear, int(nextMonth))},
	})

	return telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func addMonth(year int, month time.Month, delta int) (int, time.Month) {
	m := int(month) + delta
	if m < 1 {
		return year - 1, time.December
	}
	if m > 12 {
		return year + 1, time.January
	}
	return year, time.Month(m)
}

// ParseSelection decodes a callback payload produced by Render. Tokens
// from other widgets yield an error.
func ParseSelection(data string) (Selection, error) {
	parts := strings.Split(data, "_")
	if parts[0] != callbackPrefix || len(parts) < 2 {
		return Selection{}, fmt.Errorf("not a calendar callback: %q", data)
	}

	switch parts[1] {
	case actionIgnore:
		return Selection{Kind: SelectionIgnore}, nil

	case actionDay:
		if len(parts) != 5 {
			return Selection{}, fmt.Errorf("malformed day callback: %q", data)
		}
		year, errY := strconv.Atoi(parts[2])
		month, errM := strconv.Atoi(parts[3])
		day, errD := strconv.Atoi(parts[4])
		if errY != nil || errM != nil || errD != nil || month < 1 || month > 12 {
			return Selection{}, fmt.Errorf("malformed day callback: %q", data)
		}
		return Selection{
			Kind: SelectionDay,
			Date: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
		}, nil

	case actionPrev, actionNext:
		if len(parts) != 4 {
			return Selection{}, fmt.Errorf("malformed nav callback: %q", data)
		}
		year, errY := strconv.Atoi(parts[2])
		month, errM := strconv.Atoi(parts[3])
		if errY != nil || errM != nil || month < 1 || month > 12 {
			return Selection{}, fmt.Errorf("malformed nav callback: %q", data)
		}
		return Selection{Kind: SelectionNav, Year: year, Month: time.Month(month)}, nil
	}

	return Selection{}, fmt.Errorf("unknown calendar action: %q", data)
}
