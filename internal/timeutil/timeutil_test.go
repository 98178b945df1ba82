package timeutil

import (
	"testing"
	"time"
)

func TestStartOfWeek(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "monday maps to itself",
			in:   time.Date(2024, time.June, 10, 15, 30, 0, 0, time.UTC),
			want: time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "wednesday maps back to monday",
			in:   time.Date(2024, time.June, 12, 8, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday belongs to the preceding monday",
			in:   time.Date(2024, time.June, 16, 23, 59, 0, 0, time.UTC),
			want: time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := StartOfWeek(tc.in)
			if !got.Equal(tc.want) {
				t.Errorf("expected %v, but got: %v", tc.want, got)
			}
		})
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, time.June, 12, 0, 0, 1, 0, time.UTC)
	b := time.Date(2024, time.June, 12, 23, 59, 59, 0, time.UTC)

	if !SameDay(a, b) {
		t.Error("expected times on the same calendar day to match")
	}

	if SameDay(a, b.AddDate(0, 0, 1)) {
		t.Error("expected times on different days not to match")
	}
}

func TestSecsToMinsAndSecs(t *testing.T) {
	m, s := SecsToMinsAndSecs(905)
	if m != 15 || s != 5 {
		t.Errorf("expected 15:05, but got: %02d:%02d", m, s)
	}
}
