package estimate

import "testing"

func TestFormatMinutes(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "about 1 min"},
		{-3, "about 1 min"},
		{1, "about 1 min"},
		{25, "about 25 min"},
		{59, "about 59 min"},
		{60, "about 1 h"},
		{65, "about 1 h 5 min"},
		{150, "about 2 h 30 min"},
	}
	for _, c := range cases {
		if got := FormatMinutes(c.minutes); got != c.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", c.minutes, got, c.want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "¥0.00"},
		{21, "¥21.00"},
		{13.456, "¥13.46"},
	}
	for _, c := range cases {
		if got := FormatCurrency(c.amount); got != c.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", c.amount, got, c.want)
		}
	}
}
