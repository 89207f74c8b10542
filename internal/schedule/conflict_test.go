package schedule

import (
	"testing"
	"time"

	"studybuddy/internal/domain"
)

func slot(id, start, end string) Slot {
	s, _ := ParseClock(start)
	e, _ := ParseClock(end)
	return Slot{ID: id, Start: s, End: e}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Slot
		want bool
	}{
		{"identical", slot("a", "10:00", "11:00"), slot("b", "10:00", "11:00"), true},
		{"partial overlap", slot("a", "10:00", "11:00"), slot("b", "10:30", "11:30"), true},
		{"contained", slot("a", "09:00", "12:00"), slot("b", "10:00", "11:00"), true},
		{"touching end", slot("a", "10:00", "11:00"), slot("b", "11:00", "12:00"), false},
		{"touching start", slot("a", "11:00", "12:00"), slot("b", "10:00", "11:00"), false},
		{"disjoint", slot("a", "08:00", "09:00"), slot("b", "13:00", "14:00"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.a, tc.b); got != tc.want {
				t.Fatalf("Overlaps(a,b) = %v, want %v", got, tc.want)
			}
			if got := Overlaps(tc.b, tc.a); got != tc.want {
				t.Fatalf("Overlaps(b,a) = %v, want %v (must be symmetric)", got, tc.want)
			}
		})
	}
}

func TestHasConflict_ExcludesSelf(t *testing.T) {
	existing := []Slot{slot("r1", "10:00", "11:00"), slot("r2", "12:00", "13:00")}

	if !HasConflict(existing, slot("", "10:30", "11:30")) {
		t.Fatal("expected conflict for new overlapping slot")
	}
	if HasConflict(existing, slot("r1", "10:15", "10:45")) {
		t.Fatal("update of r1 must not conflict with itself")
	}
	if !HasConflict(existing, slot("r1", "12:30", "13:30")) {
		t.Fatal("moving r1 over r2 must conflict")
	}
	if HasConflict(existing, slot("", "11:00", "12:00")) {
		t.Fatal("slot touching both neighbours must not conflict")
	}
}

func TestParseClock(t *testing.T) {
	for _, in := range []string{"9:00", "24:00", "10:60", "1000", "ab:cd", "10:0", " 10:00"} {
		if _, err := ParseClock(in); err == nil {
			t.Errorf("ParseClock(%q) expected error", in)
		}
	}
	c, err := ParseClock("08:05")
	if err != nil || c != 8*60+5 {
		t.Fatalf("ParseClock(08:05) = %v, %v", c, err)
	}
	if c.String() != "08:05" {
		t.Fatalf("String() = %s", c.String())
	}
}

func TestCheckWindow(t *testing.T) {
	cases := []struct {
		start, end string
		want       domain.Code
	}{
		{"10:00", "11:00", ""},
		{"08:00", "22:00", ""},
		{"11:00", "11:00", domain.CodeInvalidTime},
		{"12:00", "11:00", domain.CodeInvalidTime},
		{"07:59", "09:00", domain.CodeOutsideOpeningHours},
		{"21:00", "22:01", domain.CodeOutsideOpeningHours},
	}
	for _, tc := range cases {
		err := CheckWindow(slot("", tc.start, tc.end))
		if got := domain.CodeOf(err); got != tc.want {
			t.Errorf("CheckWindow(%s-%s) = %q, want %q", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestNotBefore(t *testing.T) {
	now := time.Date(2030, 5, 10, 23, 59, 0, 0, time.UTC)
	cases := map[string]bool{
		"2030-05-09": false,
		"2030-05-10": true,
		"2030-05-11": true,
	}
	for date, want := range cases {
		got, err := NotBefore(date, now)
		if err != nil {
			t.Fatalf("NotBefore(%s): %v", date, err)
		}
		if got != want {
			t.Errorf("NotBefore(%s) = %v, want %v", date, got, want)
		}
	}
	if _, err := NotBefore("10/05/2030", now); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestParseInstant(t *testing.T) {
	for _, in := range []string{"2030-01-02T10:00:00Z", "2030-01-02T10:00", "2030-01-02"} {
		if _, err := ParseInstant(in); err != nil {
			t.Errorf("ParseInstant(%q): %v", in, err)
		}
	}
	if _, err := ParseInstant("tomorrow"); err == nil {
		t.Error("expected error")
	}
}
