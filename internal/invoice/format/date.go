package format

import "time"

const longDateLayout = "January 2, 2006"

// LongDate renders the document date style, e.g. March 10, 2026.
func LongDate(t time.Time) string {
	return t.UTC().Format(longDateLayout)
}
