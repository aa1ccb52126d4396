package models

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hinge", "hinge"},
		{"Steel Bracket", "steel-bracket"},
		{"  Oak  Table  ", "oak-table"},
		{"Çelik Menteşe", "elik-mentee"},
		{"Bolt (M8)", "bolt-m8"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
