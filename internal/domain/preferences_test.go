package domain

import (
	"errors"
	"testing"
)

func TestQuietHoursContains(t *testing.T) {
	tests := []struct {
		name string
		q    QuietHours
		at   ClockTime
		want bool
	}{
		{"normal inside", QuietHours{ClockTime{12, 0}, ClockTime{14, 0}}, ClockTime{13, 0}, true},
		{"normal start inclusive", QuietHours{ClockTime{12, 0}, ClockTime{14, 0}}, ClockTime{12, 0}, true},
		{"normal end exclusive", QuietHours{ClockTime{12, 0}, ClockTime{14, 0}}, ClockTime{14, 0}, false},
		{"normal outside", QuietHours{ClockTime{12, 0}, ClockTime{14, 0}}, ClockTime{9, 0}, false},
		{"wrap evening", QuietHours{ClockTime{22, 0}, ClockTime{6, 0}}, ClockTime{23, 0}, true},
		{"wrap morning", QuietHours{ClockTime{22, 0}, ClockTime{6, 0}}, ClockTime{5, 59}, true},
		{"wrap end exclusive", QuietHours{ClockTime{22, 0}, ClockTime{6, 0}}, ClockTime{6, 0}, false},
		{"wrap midday outside", QuietHours{ClockTime{22, 0}, ClockTime{6, 0}}, ClockTime{12, 0}, false},
		{"degenerate never contains", QuietHours{ClockTime{0, 0}, ClockTime{0, 0}}, ClockTime{0, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Contains(tt.at); got != tt.want {
				t.Fatalf("Contains(%s) in %s–%s: want %v, got %v", tt.at, tt.q.Start, tt.q.End, tt.want, got)
			}
		})
	}
}

func TestValidateDegenerateQuietHours(t *testing.T) {
	p := DefaultPreferences("u1", "UTC")
	p.QuietHours = &QuietHours{Start: ClockTime{0, 0}, End: ClockTime{0, 0}}
	err := p.Validate()
	if !errors.Is(err, ErrInvalidQuietHours) {
		t.Fatalf("want ErrInvalidQuietHours, got %v", err)
	}
}

func TestValidateEnabledWithoutTime(t *testing.T) {
	p := DefaultPreferences("u1", "UTC")
	delete(p.PreferredTimes, CategoryMeal)
	err := p.Validate()
	if !errors.Is(err, ErrInvalidPreferences) {
		t.Fatalf("want ErrInvalidPreferences, got %v", err)
	}
}

func TestValidateUnknownTimezone(t *testing.T) {
	p := DefaultPreferences("u1", "Mars/Olympus_Mons")
	err := p.Validate()
	if !errors.Is(err, ErrInvalidPreferences) {
		t.Fatalf("want ErrInvalidPreferences, got %v", err)
	}
}

func TestValidateUnknownCategory(t *testing.T) {
	p := DefaultPreferences("u1", "UTC")
	p.Enabled[Category("naps")] = true
	err := p.Validate()
	if !errors.Is(err, ErrInvalidPreferences) {
		t.Fatalf("want ErrInvalidPreferences, got %v", err)
	}
}

func TestValidateDefaultsOK(t *testing.T) {
	p := DefaultPreferences("u1", "Europe/Moscow")
	if err := p.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := DefaultPreferences("u1", "UTC")
	p.QuietHours = &QuietHours{Start: ClockTime{22, 0}, End: ClockTime{6, 0}}
	cp := p.Clone()
	cp.Enabled[CategoryMeal] = false
	cp.PreferredTimes[CategoryMeal] = ClockTime{1, 0}
	cp.QuietHours.Start = ClockTime{21, 0}
	if !p.Enabled[CategoryMeal] {
		t.Fatal("clone aliased Enabled map")
	}
	if p.PreferredTimes[CategoryMeal] != (ClockTime{8, 0}) {
		t.Fatal("clone aliased PreferredTimes map")
	}
	if p.QuietHours.Start != (ClockTime{22, 0}) {
		t.Fatal("clone aliased QuietHours")
	}
}

func TestParseClock(t *testing.T) {
	if _, err := ParseClock("24:00"); err == nil {
		t.Fatal("24:00 should be rejected")
	}
	if _, err := ParseClock("8"); err == nil {
		t.Fatal("missing minutes should be rejected")
	}
	got, err := ParseClock("08:30")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != (ClockTime{8, 30}) {
		t.Fatalf("want 08:30, got %s", got)
	}
	if got.String() != "08:30" {
		t.Fatalf("round trip: got %s", got.String())
	}
}
