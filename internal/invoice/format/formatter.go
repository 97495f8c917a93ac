package format

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultInvoiceNumberTemplate yields numbers such as INV-2026-007.
const DefaultInvoiceNumberTemplate = "INV-{YYYY}-{SEQ3}"

var (
	ErrEmptyTemplate   = errors.New("invoice number template is empty")
	ErrInvalidSequence = errors.New("invoice sequence must be positive")

	numberTokenRe = regexp.MustCompile(`\{([A-Z]+)(\d*)\}`)
)

// FormatInvoiceNumber renders template for issuedAt and a per-year
// sequence. Tokens: {YYYY} {YY} {MM} {DD} {SEQ} and {SEQn}, which pads the
// sequence to n digits. Wider sequences are printed in full.
func FormatInvoiceNumber(template string, issuedAt time.Time, seq int64) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", ErrEmptyTemplate
	}
	if seq <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidSequence, seq)
	}

	issuedAt = issuedAt.UTC()
	var unknown string
	out := numberTokenRe.ReplaceAllStringFunc(template, func(token string) string {
		m := numberTokenRe.FindStringSubmatch(token)
		name, width := m[1], m[2]
		switch {
		case name == "SEQ" && width == "":
			return strconv.FormatInt(seq, 10)
		case name == "SEQ":
			n, _ := strconv.Atoi(width)
			return fmt.Sprintf("%0*d", n, seq)
		case width != "":
		case name == "YYYY":
			return issuedAt.Format("2006")
		case name == "YY":
			return issuedAt.Format("06")
		case name == "MM":
			return issuedAt.Format("01")
		case name == "DD":
			return issuedAt.Format("02")
		}
		if unknown == "" {
			unknown = token
		}
		return token
	})

	if unknown != "" {
		return "", fmt.Errorf("unknown token %s in invoice number template %q", unknown, template)
	}
	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("unbalanced braces in invoice number template %q", template)
	}
	return out, nil
}
