// File path: internal/pov/status_test.go
package pov

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusProcessing, StatusTitlesGenerated, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},
		{StatusTitlesGenerated, StatusCompleted, true},
		{StatusTitlesGenerated, StatusFailed, true},
		{StatusTitlesGenerated, StatusProcessing, false},
		{StatusCompleted, StatusCompleted, true},
		{StatusCompleted, StatusFailed, true},
		{StatusCompleted, StatusTitlesGenerated, false},
		{StatusFailed, StatusCompleted, true},
		{StatusFailed, StatusProcessing, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}
