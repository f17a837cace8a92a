package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors
var (
	ErrInvalidGroupName = errors.New("invalid group name")
	ErrInvalidMemberID  = errors.New("invalid member id")
	ErrAmountTooLarge   = errors.New("amount exceeds maximum allowed")
)

// Validation constants
const (
	MaxGroupNameLength = 255
	MaxMemberIDLength  = 128
	// MaxAmount caps a single expense or settlement at ten million currency
	// units, in cents.
	MaxAmount Cents = 1_000_000_000
)

// ValidateGroupName validates a group display name.
func ValidateGroupName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidGroupName)
	}
	if len(name) > MaxGroupNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidGroupName, MaxGroupNameLength)
	}

	return nil
}

// ValidateMemberID validates a member identifier.
func ValidateMemberID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidMemberID)
	}
	if len(id) > MaxMemberIDLength {
		return fmt.Errorf("%w: id exceeds %d characters", ErrInvalidMemberID, MaxMemberIDLength)
	}

	return nil
}

// ValidateAmount validates an expense or settlement amount.
func ValidateAmount(amount Cents) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > MaxAmount {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidatePagination clamps pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
