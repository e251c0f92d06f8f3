package definition

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	hintPolicyOnce sync.Once
	hintPolicy     *bluemonday.Policy
)

// sanitizeHint strips markup from definition-supplied help text. Hints flow
// straight into whatever surface hosts the form, so they are treated as
// untrusted input.
func sanitizeHint(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	hintPolicyOnce.Do(func() {
		hintPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(hintPolicy.Sanitize(trimmed))
}
