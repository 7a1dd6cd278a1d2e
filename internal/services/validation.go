package services

import (
	"regexp"
	"unicode/utf8"

	apperrors "task-marketplace.com/task-marketplace/internal/errors"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

func requireText(field, value string, max int) error {
	if value == "" {
		return apperrors.Validation("%s is required", field)
	}
	if runeCount(value) > max {
		return apperrors.Validation("%s must be at most %d characters", field, max)
	}
	return nil
}

func runeCount(s string) int {
	return utf8.RuneCountInString(s)
}
