package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// uniqueViolations holds driver messages for unique index conflicts that
// reach us untranslated: postgres 23505, mysql 1062 and sqlite 2067.
var uniqueViolations = []string{
	"duplicate key value violates unique constraint",
	"Error 1062",
	"UNIQUE constraint failed",
}

// IsDuplicateKeyErr reports whether err is a unique index conflict, such
// as a second client registered with the same email.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, marker := range uniqueViolations {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
