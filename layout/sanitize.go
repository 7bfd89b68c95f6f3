package layout

import (
	"html"
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// tagRe matches anything that can open an HTML tag, comment or declaration.
var tagRe = regexp.MustCompile(`<[a-zA-Z/!?]`)

// SanitizeText strips markup from user supplied text. Text with no tags,
// including line breaks, placeholder tokens and angle brackets such as
// "<5 días>", passes through unchanged.
func SanitizeText(raw string) string {
	if !tagRe.MatchString(raw) {
		return raw
	}
	return html.UnescapeString(textSanitizer().Sanitize(raw))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
