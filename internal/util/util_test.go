package util

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "admin", "test-secret")
	if err != nil {
		t.Fatal(err)
	}

	userID, role, err := ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatal(err)
	}
	if userID != 42 || role != "admin" {
		t.Errorf("got user %d role %q, want 42 admin", userID, role)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(42, "user", "secret-a")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := ParseJWT(token, "secret-b"); err == nil {
		t.Error("token signed with another secret was accepted")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword("hunter2", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestEndDateFromDuration(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		duration string
		want     time.Time
		wantOK   bool
	}{
		{"6 months", time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC), true},
		{"1 year", time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"2 weeks", time.Date(2026, 1, 29, 0, 0, 0, 0, time.UTC), true},
		{"10 days", time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC), true},
		{"  3 Months ", time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), true},
		{"soon", time.Time{}, false},
		{"", time.Time{}, false},
		{"-3 days", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := EndDateFromDuration(start, tc.duration)
		if ok != tc.wantOK {
			t.Errorf("EndDateFromDuration(%q) ok=%v, want %v", tc.duration, ok, tc.wantOK)
			continue
		}
		if ok && !got.Equal(tc.want) {
			t.Errorf("EndDateFromDuration(%q) = %v, want %v", tc.duration, got, tc.want)
		}
	}
}
