package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out Amount
		ok  bool
	}{
		{"1", 1, true},
		{"150000", 150000, true},
		{"150.000", 150000, true},
		{"1.000.000", 1000000, true},
		{"1,000,000", 1000000, true},
		{"Rp 25.000", 25000, true},
		{"rp25000", 25000, true},
		{"99,50", 100, true}, // half-up rounding
		{"99,49", 99, true},
		{"1,234.56", 1235, true},
		{" 2500 ", 2500, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"0,4", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1234.567", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %d", tc.in, got)
		}
	}
}

func TestFormatRupiah(t *testing.T) {
	cases := map[Amount]string{
		0:        "Rp 0",
		1500:     "Rp 1.500",
		1000000:  "Rp 1.000.000",
		-210000:  "-Rp 210.000",
	}
	for in, want := range cases {
		if got := FormatRupiah(in); got != want {
			t.Fatalf("FormatRupiah(%d) = %q, want %q", in, got, want)
		}
	}
}
