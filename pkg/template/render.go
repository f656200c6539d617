package template

import (
	"regexp"
	"strings"
)

// placeholderRe matches {{key}} placeholders, tolerating inner whitespace.
var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// Render substitutes {{key}} placeholders in the template's subject and body.
// Unresolved placeholders are left verbatim rather than treated as errors so
// that template authors can preview partially-filled templates; the missing
// variable names are returned for the caller to log.
func Render(tpl Template, vars map[string]string) (subject, body string, missing []string) {
	seen := make(map[string]bool)

	sub := func(s string) string {
		return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
			key := strings.TrimSpace(placeholderRe.FindStringSubmatch(match)[1])
			if val, ok := vars[key]; ok {
				return val
			}
			if !seen[key] {
				seen[key] = true
				missing = append(missing, key)
			}
			return match
		})
	}

	return sub(tpl.Subject), sub(tpl.Body), missing
}

// Placeholders returns the distinct placeholder names referenced by the
// template's subject and body, in order of first appearance.
func Placeholders(tpl Template) []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range []string{tpl.Subject, tpl.Body} {
		for _, m := range placeholderRe.FindAllStringSubmatch(s, -1) {
			key := strings.TrimSpace(m[1])
			if !seen[key] {
				seen[key] = true
				names = append(names, key)
			}
		}
	}
	return names
}
