package checker

import (
	"fmt"
	"strings"
)

// maxBodyBytes caps how much of a response body a web_content check will
// read. Targets can be arbitrarily large pages.
const maxBodyBytes = 10 * 1024

// EvaluateContent applies the keyword rules of a web_content check to a
// fetched body. Error keywords win over valid keywords: the presence of
// any error keyword fails the check even when every valid keyword is
// also present. Empty keyword lists are vacuous.
func EvaluateContent(body, resultError, resultValid string) (bool, string) {
	for _, kw := range splitKeywords(resultError) {
		if strings.Contains(body, kw) {
			return false, fmt.Sprintf("error text found: %q", kw)
		}
	}

	for _, kw := range splitKeywords(resultValid) {
		if !strings.Contains(body, kw) {
			return false, fmt.Sprintf("expected text missing: %q", kw)
		}
	}

	return true, ""
}

func splitKeywords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	kws := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kws = append(kws, p)
		}
	}
	return kws
}
