package riskscan

import "testing"

func TestNormalizeRepo(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"", "", false},
		{"   ", "", false},
		{"owner/name", "owner/name", true},
		{" owner/name ", "owner/name", true},
		{"NV-Global/MarketData", "NV-Global/MarketData", true},
		{"https://github.com/owner/name", "owner/name", true},
		{"https://github.com/owner/name.git", "owner/name", true},
		{"https://github.com/owner/name/", "owner/name", true},
		{"HTTPS://GITHUB.COM/Owner/Name", "Owner/Name", true},
		{"http://github.com/owner/name", "owner/name", true},
		{"https://gitlab.com/owner/name", "", false},
		{"not a repo", "", false},
		{"owner", "", false},
		{"owner/name/extra", "", false},
		{"owner /name", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeRepo(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("NormalizeRepo(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}
