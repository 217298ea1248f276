package chat

import "strings"

// searchDirectives are the phrases that route free-typed input through the
// search collaborator. Longest phrase first so "search the web" is not
// matched as plain "search" with "the web" left in the query.
var searchDirectives = []string{"search the web", "search", "find", "lookup"}

// parseSearchDirective reports whether text is a search-style input and
// returns the query with the directive phrase stripped. An empty query with
// ok=true means the directive carried no usable query text.
func parseSearchDirective(text string) (query string, ok bool) {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	for _, directive := range searchDirectives {
		if lower == directive {
			return "", true
		}
		if strings.HasPrefix(lower, directive+" ") {
			return strings.TrimSpace(trimmed[len(directive):]), true
		}
	}
	return "", false
}
