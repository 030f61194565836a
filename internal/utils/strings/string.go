package strings

import "fmt"

func Pluralize(singular, plural string, count int) string {
	if count == 1 {
		return singular
	}
	return plural
}

// Count renders "1 error", "2 errors" and the like.
func Count(count int, singular, plural string) string {
	return fmt.Sprintf("%d %s", count, Pluralize(singular, plural, count))
}
