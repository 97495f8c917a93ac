package format

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var nonAlnumRe = regexp.MustCompile(`[^a-zA-Z0-9]`)

// DocumentFilename derives the exported file name from an invoice number;
// every non-alphanumeric character becomes a dash.
func DocumentFilename(invoiceNumber, ext string) string {
	base := nonAlnumRe.ReplaceAllString(strings.TrimSpace(invoiceNumber), "-")
	if base == "" {
		base = "invoice"
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "pdf"
	}
	return base + "." + ext
}

// TruncateDescription shortens s to at most limit characters, replacing the
// tail with "..." when it does not fit.
func TruncateDescription(s string, limit int) string {
	if limit <= 3 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}

// ProvisionalNumber numbers an unsaved draft from the last six digits of
// the unix millisecond clock.
func ProvisionalNumber(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return "INV-" + ms
}
