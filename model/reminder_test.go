package model

import (
	"testing"
	"time"
)

// 2026-03-04 is a Wednesday.
var baseTime = time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)

func TestRelativeExpiration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		spec string
		want time.Duration
	}{
		{name: "one day", spec: "1-0-0", want: 24 * time.Hour},
		{name: "days hours minutes", spec: "4-2-30", want: 4*24*time.Hour + 2*time.Hour + 30*time.Minute},
		{name: "minutes only", spec: "0-0-45", want: 45 * time.Minute},
		{name: "zero offset", spec: "0-0-0", want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewTimedReminder("r", "c", false, DateFormatRelative, tt.spec, baseTime)
			if err != nil {
				t.Fatalf("NewTimedReminder(%q) error: %v", tt.spec, err)
			}
			want := baseTime.Add(tt.want).Unix()
			if r.Expiration != want {
				t.Fatalf("Expiration = %d, want %d", r.Expiration, want)
			}
		})
	}
}

func TestWeeklyExpiration(t *testing.T) {
	t.Parallel()

	t.Run("upcoming this week", func(t *testing.T) {
		// Friday at hour 18 (stored as 17:00) is still ahead of Wednesday noon.
		r, err := NewTimedReminder("r", "c", true, DateFormatWeekly, "fr-18", baseTime)
		if err != nil {
			t.Fatalf("NewTimedReminder error: %v", err)
		}
		want := time.Date(2026, time.March, 6, 17, 0, 0, 0, time.UTC).Unix()
		if r.Expiration != want {
			t.Fatalf("Expiration = %d, want %d", r.Expiration, want)
		}
	})

	t.Run("already passed rolls forward seven days", func(t *testing.T) {
		// Monday at hour 10 (stored 09:00) passed two days ago.
		r, err := NewTimedReminder("r", "c", true, DateFormatWeekly, "mo-10", baseTime)
		if err != nil {
			t.Fatalf("NewTimedReminder error: %v", err)
		}
		thisMonday := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
		want := thisMonday.AddDate(0, 0, 7).Unix()
		if r.Expiration != want {
			t.Fatalf("Expiration = %d, want %d", r.Expiration, want)
		}
		if r.Expiration-thisMonday.Unix() != int64(7*24*time.Hour/time.Second) {
			t.Fatalf("rollforward is not exactly seven days")
		}
		if r.Expiration-baseTime.Unix() >= int64(8*24*time.Hour/time.Second) {
			t.Fatalf("expiration is eight or more days away")
		}
	})

	t.Run("exact boundary counts as passed", func(t *testing.T) {
		// At exactly the stored fire moment the occurrence is treated as
		// passed and the reminder rolls a full week forward.
		now := time.Date(2026, time.March, 4, 11, 0, 0, 0, time.UTC)
		r, err := NewTimedReminder("r", "c", true, DateFormatWeekly, "we-12", now)
		if err != nil {
			t.Fatalf("NewTimedReminder error: %v", err)
		}
		want := now.AddDate(0, 0, 7).Unix()
		if r.Expiration != want {
			t.Fatalf("Expiration = %d, want %d (exactly seven days out)", r.Expiration, want)
		}
	})

	t.Run("hour zero clamps instead of going negative", func(t *testing.T) {
		r, err := NewTimedReminder("r", "c", true, DateFormatWeekly, "su-0", baseTime)
		if err != nil {
			t.Fatalf("NewTimedReminder error: %v", err)
		}
		fireTime := time.Unix(r.Expiration, 0).UTC()
		if fireTime.Hour() != 0 {
			t.Fatalf("fire hour = %d, want 0", fireTime.Hour())
		}
		if fireTime.Weekday() != time.Sunday {
			t.Fatalf("fire weekday = %v, want Sunday", fireTime.Weekday())
		}
	})
}

func TestAbsoluteExpiration(t *testing.T) {
	t.Parallel()
	r, err := NewTimedReminder("r", "c", false, DateFormatAbsolute, "12-24-18", baseTime)
	if err != nil {
		t.Fatalf("NewTimedReminder error: %v", err)
	}
	want := time.Date(2026, time.December, 24, 17, 0, 0, 0, time.UTC).Unix()
	if r.Expiration != want {
		t.Fatalf("Expiration = %d, want %d", r.Expiration, want)
	}
}

func TestAbsoluteNeverRepeats(t *testing.T) {
	t.Parallel()
	for _, requested := range []bool{true, false} {
		r, err := NewTimedReminder("r", "c", requested, DateFormatAbsolute, "6-15-9", baseTime)
		if err != nil {
			t.Fatalf("NewTimedReminder error: %v", err)
		}
		if r.Repeat {
			t.Fatalf("absolute reminder has Repeat=true (requested %t)", requested)
		}
	}
}

func TestMalformedSpecsRejected(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		format string
		spec   string
	}{
		{name: "relative too few tokens", format: DateFormatRelative, spec: "1-2"},
		{name: "relative too many tokens", format: DateFormatRelative, spec: "1-2-3-4"},
		{name: "relative non-numeric", format: DateFormatRelative, spec: "1-x-0"},
		{name: "relative negative", format: DateFormatRelative, spec: "-1-0-0"},
		{name: "weekly unknown weekday", format: DateFormatWeekly, spec: "xx-10"},
		{name: "weekly non-numeric hour", format: DateFormatWeekly, spec: "mo-ten"},
		{name: "weekly hour out of range", format: DateFormatWeekly, spec: "mo-24"},
		{name: "weekly missing hour", format: DateFormatWeekly, spec: "mo"},
		{name: "absolute month out of range", format: DateFormatAbsolute, spec: "13-1-0"},
		{name: "absolute day out of range", format: DateFormatAbsolute, spec: "12-32-0"},
		{name: "absolute non-numeric", format: DateFormatAbsolute, spec: "12-x-0"},
		{name: "unknown format", format: "cron", spec: "* * * * *"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTimedReminder("r", "c", false, tt.format, tt.spec, baseTime); err == nil {
				t.Fatalf("NewTimedReminder(%s, %q) succeeded, want error", tt.format, tt.spec)
			}
		})
	}
}

func TestHasExpiredRecently(t *testing.T) {
	t.Parallel()
	r := &TimedReminder{Expiration: baseTime.Unix()}

	tests := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{name: "one second early", offset: -time.Second, want: false},
		{name: "exactly due", offset: 0, want: true},
		{name: "just inside the window", offset: 10*time.Hour - time.Second, want: true},
		{name: "exactly at the window edge", offset: 10 * time.Hour, want: false},
		{name: "long overdue", offset: 48 * time.Hour, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := r.HasExpiredRecently(baseTime.Add(tt.offset)); got != tt.want {
				t.Fatalf("HasExpiredRecently(exp%+v) = %t, want %t", tt.offset, got, tt.want)
			}
		})
	}
}

func TestRecomputeIsFromNowNotAdditive(t *testing.T) {
	t.Parallel()
	r, err := NewTimedReminder("r", "c", true, DateFormatRelative, "0-1-0", baseTime)
	if err != nil {
		t.Fatalf("NewTimedReminder error: %v", err)
	}
	first := r.Expiration

	// Recomputing ten minutes later must be based on the new "now",
	// not stacked on top of the previous expiration.
	later := baseTime.Add(10 * time.Minute)
	if err := r.UpdateExpiration(later); err != nil {
		t.Fatalf("UpdateExpiration error: %v", err)
	}
	if r.Expiration != later.Add(time.Hour).Unix() {
		t.Fatalf("Expiration = %d, want now+1h = %d", r.Expiration, later.Add(time.Hour).Unix())
	}
	if r.Expiration-first != int64(10*time.Minute/time.Second) {
		t.Fatalf("second recompute drifted by %d seconds, want 600", r.Expiration-first)
	}
}
