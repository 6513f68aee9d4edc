package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		{"", 10, 10},
		{"42", 0, 42},
		{"-13", 1, -13},
		{"x", 5, 5},
		{" 42", 7, 7}, // no trim
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestLimitParam(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		max  int
		want int
	}{
		{"", 200, 500, 200},
		{"50", 200, 500, 50},
		{"9999", 200, 500, 500}, // clamped to max
		{"0", 200, 500, 200},    // non-positive -> default
		{"-5", 200, 500, 200},
		{"junk", 200, 500, 200},
	}

	for _, tc := range cases {
		if got := LimitParam(tc.s, tc.def, tc.max); got != tc.want {
			t.Fatalf("LimitParam(%q, %d, %d) = %d; want %d", tc.s, tc.def, tc.max, got, tc.want)
		}
	}
}
