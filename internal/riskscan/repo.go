package riskscan

import (
	"regexp"
	"strings"
)

var (
	repoURLPattern   = regexp.MustCompile(`(?i)^https?://github\.com/([^/\s]+)/([^/\s]+?)(?:\.git|/)?$`)
	repoPlainPattern = regexp.MustCompile(`^[^/\s]+/[^/\s]+$`)
)

// NormalizeRepo canonicalizes a project's repository reference to
// "owner/name". It accepts a bare owner/name pair or a full GitHub HTTPS URL
// with an optional trailing ".git" or "/". Anything else is invalid and
// returns ok=false, which the scanner treats differently from "no reference
// at all".
func NormalizeRepo(raw string) (repo string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if m := repoURLPattern.FindStringSubmatch(raw); m != nil {
		return m[1] + "/" + m[2], true
	}
	if repoPlainPattern.MatchString(raw) {
		return raw, true
	}
	return "", false
}
