package journal

import (
	"context"
	"fmt"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/pkg/logger"
)

// Service persists journal rows. Inserts are synchronous: a call returns only
// after every row is written. Transactions are managed by the caller.
type Service struct {
	repo Repository
}

// NewService creates a new journal service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Post validates and inserts the rows of one operation.
func (s *Service) Post(ctx context.Context, operationID id.ID, entries []entity.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	for i, e := range entries {
		if e.OperationID != operationID {
			return apperror.NewValidation(fmt.Sprintf("journal row %d: belongs to another operation", i+1))
		}
		if id.IsNil(e.AccountID) {
			return apperror.NewValidation(fmt.Sprintf("journal row %d: account is required", i+1))
		}
		if e.Debit.IsNegative() || e.Credit.IsNegative() {
			return apperror.NewValidation(fmt.Sprintf("journal row %d: amounts must not be negative", i+1))
		}
		if e.Debit.IsZero() == e.Credit.IsZero() {
			return apperror.NewValidation(fmt.Sprintf("journal row %d: exactly one of debit and credit must be set", i+1))
		}
	}

	if !IsBalanced(entries) {
		debit, credit := Totals(entries)
		return apperror.NewBusinessRule(apperror.CodeDiscrepancy,
			fmt.Sprintf("journal is not balanced: debit %s, credit %s", debit.StringFixed(2), credit.StringFixed(2)))
	}

	if err := s.repo.CreateEntries(ctx, entries); err != nil {
		return fmt.Errorf("create journal entries: %w", err)
	}

	logger.Debug(ctx, "posted journal entries",
		"count", len(entries),
		"operation_id", operationID,
	)
	return nil
}

// Reverse deletes every row of an operation.
func (s *Service) Reverse(ctx context.Context, organizationID, operationID id.ID) error {
	if err := s.repo.DeleteByOperation(ctx, organizationID, operationID); err != nil {
		return fmt.Errorf("delete journal entries: %w", err)
	}
	logger.Debug(ctx, "reversed journal entries", "operation_id", operationID)
	return nil
}

// Repost reverses then posts. Run it inside a transaction so the two steps
// commit together.
func (s *Service) Repost(ctx context.Context, organizationID, operationID id.ID, entries []entity.JournalEntry) error {
	if err := s.Reverse(ctx, organizationID, operationID); err != nil {
		return err
	}
	return s.Post(ctx, operationID, entries)
}

// Entries returns the rows of an operation.
func (s *Service) Entries(ctx context.Context, organizationID, operationID id.ID) ([]entity.JournalEntry, error) {
	return s.repo.ListByOperation(ctx, organizationID, operationID)
}
