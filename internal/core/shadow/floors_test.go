package shadow

import "testing"

func TestParseFloorCount(t *testing.T) {
	cases := []struct {
		constru string
		want    int
	}{
		{"I", 1},
		{"III", 3},
		{"IV", 4},
		{"IX", 9},
		{"XII", 12},
		{"-I+IV", 4},      // one basement, four floors above grade
		{"-II+VII", 7},
		{"II+III", 3},     // mixed volumes: tallest wins
		{"B+IV", 4},
		{"", 1},           // missing encoding
		{"SUELO", 1},      // no numeral at all
		{"garaje", 1},
		{"-I", 1},         // basement only: still one occluding floor
		{"IIII", 4},       // cadastre uses additive forms occasionally
	}
	for _, c := range cases {
		if got := ParseFloorCount(c.constru); got != c.want {
			t.Errorf("ParseFloorCount(%q) = %d, want %d", c.constru, got, c.want)
		}
	}
}

func TestParseRoman(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"I", 1, true},
		{"IV", 4, true},
		{"IX", 9, true},
		{"XIV", 14, true},
		{"XXXIX", 39, true},
	}
	for _, c := range cases {
		got, ok := parseRoman([]rune(c.in))
		if got != c.want || ok != c.ok {
			t.Errorf("parseRoman(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}
