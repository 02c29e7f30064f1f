package calendar

import (
	"fmt"
	"testing"
	"time"
)

func TestRenderGrid(t *testing.T) {
	// August 2026: starts on a Saturday, 31 days.
	kb := Render(2026, time.August)
	rows := kb.InlineKeyboard

	if len(rows) < 4 {
		t.Fatalf("expected at least 4 rows, got %d", len(rows))
	}
	if rows[0][0].Text != "August 2026" {
		t.Errorf("title = %q, want %q", rows[0][0].Text, "August 2026")
	}
	if len(rows[1]) != 7 || rows[1][0].Text != "Mo" || rows[1][6].Text != "Su" {
		t.Errorf("weekday row wrong: %v", rows[1])
	}

	// Every week row must have exactly 7 cells.
	dayRows := rows[2 : len(rows)-1]
	for i, week := range dayRows {
		if len(week) != 7 {
			t.Errorf("week %d has %d cells, want 7", i, len(week))
		}
	}

	// 2026-08-01 is a Saturday: five leading blanks, day 1 in cell 5.
	if dayRows[0][5].Text != "1" {
		t.Errorf("first day cell = %q, want %q", dayRows[0][5].Text, "1")
	}
	if dayRows[0][4].CallbackData != "cal_IGNORE" {
		t.Errorf("blank cell callback = %q, want cal_IGNORE", dayRows[0][4].CallbackData)
	}
	if want := "cal_DAY_2026_8_1"; dayRows[0][5].CallbackData != want {
		t.Errorf("day callback = %q, want %q", dayRows[0][5].CallbackData, want)
	}

	nav := rows[len(rows)-1]
	if nav[0].CallbackData != "cal_PREV_2026_7" {
		t.Errorf("prev callback = %q, want cal_PREV_2026_7", nav[0].CallbackData)
	}
	if nav[2].CallbackData != "cal_NEXT_2026_9" {
		t.Errorf("next callback = %q, want cal_NEXT_2026_9", nav[2].CallbackData)
	}
}

func TestRenderYearRollover(t *testing.T) {
	kb := Render(2026, time.January)
	nav := kb.InlineKeyboard[len(kb.InlineKeyboard)-1]
	if nav[0].CallbackData != "cal_PREV_2025_12" {
		t.Errorf("prev callback = %q, want cal_PREV_2025_12", nav[0].CallbackData)
	}

	kb = Render(2026, time.December)
	nav = kb.InlineKeyboard[len(kb.InlineKeyboard)-1]
	if nav[2].CallbackData != "cal_NEXT_2027_1" {
		t.Errorf("next callback = %q, want cal_NEXT_2027_1", nav[2].CallbackData)
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		data    string
		want    Selection
		wantErr bool
	}{
		{"cal_IGNORE", Selection{Kind: SelectionIgnore}, false},
		{"cal_DAY_2026_8_31", Selection{Kind: SelectionDay, Date: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)}, false},
		{"cal_PREV_2026_7", Selection{Kind: SelectionNav, Year: 2026, Month: time.July}, false},
		{"cal_NEXT_2026_9", Selection{Kind: SelectionNav, Year: 2026, Month: time.September}, false},
		{"cal_DAY_2026_8", Selection{}, true},
		{"cal_DAY_x_8_1", Selection{}, true},
		{"cal_NEXT_2026_13", Selection{}, true},
		{"cal_FOO_1_2", Selection{}, true},
		{"theme_done", Selection{}, true},
		{"", Selection{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, err := ParseSelection(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSelection(%q) expected error, got %+v", tt.data, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSelection(%q): %v", tt.data, err)
			}
			if got.Kind != tt.want.Kind || !got.Date.Equal(tt.want.Date) ||
				got.Year != tt.want.Year || got.Month != tt.want.Month {
				t.Errorf("ParseSelection(%q) = %+v, want %+v", tt.data, got, tt.want)
			}
		})
	}
}

// Navigating away and back must land on the original view.
func TestNavigationRoundTrip(t *testing.T) {
	views := []struct {
		year  int
		month time.Month
	}{
		{2026, time.August},
		{2026, time.January},
		{2026, time.December},
	}

	for _, v := range views {
		t.Run(fmt.Sprintf("%d-%d", v.year, v.month), func(t *testing.T) {
			kb := Render(v.year, v.month)
			nav := kb.InlineKeyboard[len(kb.InlineKeyboard)-1]

			prev, err := ParseSelection(nav[0].CallbackData)
			if err != nil {
				t.Fatal(err)
			}
			back := Render(prev.Year, prev.Month)
			backNav := back.InlineKeyboard[len(back.InlineKeyboard)-1]
			ret, err := ParseSelection(backNav[2].CallbackData)
			if err != nil {
				t.Fatal(err)
			}
			if ret.Year != v.year || ret.Month != v.month {
				t.Errorf("prev-then-next landed on %d-%d, want %d-%d", ret.Year, ret.Month, v.year, v.month)
			}

			next, err := ParseSelection(nav[2].CallbackData)
			if err != nil {
				t.Fatal(err)
			}
			fwd := Render(next.Year, next.Month)
			fwdNav := fwd.InlineKeyboard[len(fwd.InlineKeyboard)-1]
			ret, err = ParseSelection(fwdNav[0].CallbackData)
			if err != nil {
				t.Fatal(err)
			}
			if ret.Year != v.year || ret.Month != v.month {
				t.Errorf("next-then-prev landed on %d-%d, want %d-%d", ret.Year, ret.Month, v.year, v.month)
			}
		})
	}
}
