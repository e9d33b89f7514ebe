package money

import "testing"

func TestParseMinor(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		err   error
	}{
		{"100", 10000, nil},
		{"100.5", 10050, nil},
		{"100.50", 10050, nil},
		{"0.01", 1, nil},
		{"-50.25", -5025, nil},
		{" 12.34 ", 1234, nil},
		{"", 0, ErrInvalidAmount},
		{"abc", 0, ErrInvalidAmount},
		{"1.234", 0, ErrTooManyDecimals},
		{"92233720368547758.07", 9223372036854775807, nil},
		{"92233720368547758.08", 0, ErrInvalidAmount},
		{"184467440737095517", 0, ErrInvalidAmount},
		{"-92233720368547758.08", -9223372036854775808, nil},
		{"-92233720368547758.09", 0, ErrInvalidAmount},
	}
	for _, tc := range tests {
		got, err := ParseMinor(tc.input)
		if err != tc.err {
			t.Fatalf("ParseMinor(%q): expected error %v, got %v", tc.input, tc.err, err)
		}
		if err == nil && got != tc.want {
			t.Fatalf("ParseMinor(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestFormatMinor(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{10000, "100.00"},
		{1, "0.01"},
		{-5025, "-50.25"},
		{-50, "-0.50"},
		{0, "0.00"},
	}
	for _, tc := range tests {
		if got := FormatMinor(tc.input); got != tc.want {
			t.Fatalf("FormatMinor(%d) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
