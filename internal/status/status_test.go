package status

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want Status
	}{
		{"", ""},
		{"   ", ""},
		{"active", Active},
		{"Active", Active},
		{"ACTIVE", Active},
		{"Not Started", NotStarted},
		{"not_started", NotStarted},
		{"NOT__STARTED", NotStarted},
		{"not started ", NotStarted},
		{"  In Progress", InProgress},
		{"in-progress", InProgress},
		{"on-hold", OnHold},
		{"on hold", OnHold},
		{"completed", Completed},
		{"foo_bar baz", "foo-bar-baz"},
		{"_leading", "leading"},
		{"trailing_", "trailing"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"", "Active", "Not Started", "not_started", "IN  PROGRESS", "weird__  mix", "already-normal"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(string(once))
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestIsCompleted(t *testing.T) {
	if !Normalize("Completed").IsCompleted() {
		t.Error("Completed should be completed")
	}
	if !Normalize("complete").IsCompleted() {
		t.Error("legacy 'complete' should count as completed")
	}
	if Normalize("in_progress").IsCompleted() {
		t.Error("in-progress should not be completed")
	}
}
