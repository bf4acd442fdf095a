// Package contact defines the phone book record and the rules a record
// must satisfy before it is written.
package contact

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when no contact carries the requested id.
	ErrNotFound = errors.New("contact not found")

	// ErrInvalidArgument is returned for input that fails validation.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Contact is a single phone book entry. Field order matters: it is the key
// order of the persisted JSON objects.
type Contact struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Field returns the text form of a named field and whether the name is known.
func (c Contact) Field(name string) (string, bool) {
	switch name {
	case FieldID:
		return strconv.Itoa(c.ID), true
	case FieldName:
		return c.Name, true
	case FieldNumber:
		return c.Number, true
	}
	return "", false
}

const (
	FieldID     = "id"
	FieldName   = "name"
	FieldNumber = "number"
)

// Fields lists every field name a Contact exposes, in persisted order.
var Fields = []string{FieldID, FieldName, FieldNumber}

// IsDigits reports whether s is non-empty and made only of ASCII decimal digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidateNew checks the name and number of a contact about to be created.
// Both values are expected to be trimmed already.
func ValidateNew(name, number string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
	}
	if !IsDigits(number) {
		return fmt.Errorf("%w: number is required and must contain only digits", ErrInvalidArgument)
	}
	return nil
}

// ValidateNumberChange checks a replacement number. An empty value means
// "keep the current number" and is accepted.
func ValidateNumberChange(number string) error {
	if number != "" && !IsDigits(number) {
		return fmt.Errorf("%w: number must contain only digits", ErrInvalidArgument)
	}
	return nil
}

// ParseID converts user input into a contact id.
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: id must be a number, got %q", ErrInvalidArgument, s)
	}
	return id, nil
}

// NextID returns the id a new contact appended to contacts should receive.
// Gaps left by deletions are never refilled.
func NextID(contacts []Contact) int {
	max := 0
	for _, c := range contacts {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}
