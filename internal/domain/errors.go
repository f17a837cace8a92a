package domain

import "errors"

var (
	// Split errors
	ErrInvalidSplit       = errors.New("invalid split")
	ErrUnknownSplitPolicy = errors.New("unknown split policy")

	// Expense errors
	ErrExpenseNotFound = errors.New("expense not found")
	ErrInvalidAmount   = errors.New("amount must be positive")

	// Settlement errors
	ErrSettlementNotFound   = errors.New("settlement not found")
	ErrSettlementNotPending = errors.New("settlement is not pending")
	ErrSameUser             = errors.New("cannot settle with yourself")

	// Group errors
	ErrGroupNotFound  = errors.New("group not found")
	ErrNotGroupMember = errors.New("user is not a member of the group")
	ErrMemberExists   = errors.New("user is already a member of the group")
)
