package catalog

import "strings"

// Filter returns the movies whose title or genre contains query,
// ignoring case. An empty query returns movies unchanged.
func Filter(movies []Movie, query string) []Movie {
	if query == "" {
		return movies
	}

	q := strings.ToLower(query)
	matched := make([]Movie, 0, len(movies))
	for _, m := range movies {
		if strings.Contains(strings.ToLower(m.Title), q) ||
			strings.Contains(strings.ToLower(m.Genre), q) {
			matched = append(matched, m)
		}
	}
	return matched
}
