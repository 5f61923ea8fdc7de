package version

import "testing"

func TestNewerThan(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"1.0.1", "1.0.0", true},
		{"1.0.0", "1.0.1", false},
		{"1.0.0", "1.0.0", false},
		{"2.0", "1.9.9", true},
		{"1.10.0", "1.9.0", true},
		{"1.0.0.1", "1.0.0", true},
		{"garbage", "1.0.0", false},
	}
	for _, tc := range cases {
		if got := newerThan(tc.a, tc.b); got != tc.want {
			t.Errorf("newerThan(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
