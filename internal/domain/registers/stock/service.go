package stock

import (
	"context"
	"fmt"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/pkg/logger"
)

// Movement actions.
const (
	ActionSale     = "Sale"
	ActionReturn   = "Sales Return"
	ActionDelivery = "Delivery"
)

// Service provides business operations for the stock ledger.
// Transactions are managed by the caller (posting engine).
type Service struct {
	repo Repository
}

// NewService creates a new stock ledger service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// CurrentStock returns debit minus credit per item, derived from the movement
// history. Items without movements report zero.
func (s *Service) CurrentStock(ctx context.Context, organizationID id.ID, itemIDs []id.ID) (map[id.ID]types.Quantity, error) {
	itemIDs = id.Unique(itemIDs)
	totals, err := s.repo.SumByItems(ctx, organizationID, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("sum movements: %w", err)
	}

	out := make(map[id.ID]types.Quantity, len(itemIDs))
	for _, itemID := range itemIDs {
		out[itemID] = totals[itemID].Balance()
	}
	return out, nil
}

// PostMovements appends the movements of one operation.
func (s *Service) PostMovements(ctx context.Context, operationID id.ID, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	for i, m := range movements {
		if m.OperationID != operationID {
			return apperror.NewValidation(fmt.Sprintf("movement %d: belongs to another operation", i+1))
		}
		if m.DebitQuantity < 0 || m.CreditQuantity < 0 {
			return apperror.NewValidation(fmt.Sprintf("movement %d: quantity must be positive", i+1))
		}
		if (m.DebitQuantity > 0) == (m.CreditQuantity > 0) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: exactly one of debit and credit quantity must be set", i+1))
		}
		if id.IsNil(m.ItemID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: item is required", i+1))
		}
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Debug(ctx, "posted stock movements",
		"count", len(movements),
		"operation_id", operationID,
	)
	return nil
}

// ReverseMovements removes every movement of an operation.
func (s *Service) ReverseMovements(ctx context.Context, organizationID, operationID id.ID) error {
	if err := s.repo.DeleteByOperation(ctx, organizationID, operationID); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	logger.Debug(ctx, "reversed stock movements", "operation_id", operationID)
	return nil
}

// Movements returns the movements of an operation.
func (s *Service) Movements(ctx context.Context, organizationID, operationID id.ID) ([]entity.StockMovement, error) {
	return s.repo.ListByOperation(ctx, organizationID, operationID)
}

// CheckAvailability fails with InsufficientStock for the first item whose net
// outgoing quantity exceeds current stock. Must run after the operation's old
// movements were reversed so they are not counted twice.
func (s *Service) CheckAvailability(ctx context.Context, organizationID id.ID, movements []entity.StockMovement) error {
	required := make(map[id.ID]types.Quantity)
	var order []id.ID
	for _, m := range movements {
		if _, ok := required[m.ItemID]; !ok {
			order = append(order, m.ItemID)
		}
		required[m.ItemID] += m.CreditQuantity - m.DebitQuantity
	}

	current, err := s.CurrentStock(ctx, organizationID, order)
	if err != nil {
		return err
	}

	for _, itemID := range order {
		need := required[itemID]
		if need <= 0 {
			continue
		}
		if available := current[itemID]; need > available {
			return apperror.NewInsufficientStock(itemID.String(), need.String(), available.String())
		}
	}
	return nil
}

// NewMovement builds one movement of src. Positive qty with out=true is a
// credit (stock-out), otherwise a debit (stock-in).
func NewMovement(src entity.MovementSource, action string, item ItemPrice, qty types.Quantity, out bool) entity.StockMovement {
	m := entity.StockMovement{
		MovementBase:  entity.NewMovementBase(src, action),
		ItemID:        item.ItemID,
		SalePrice:     item.SalePrice,
		PurchasePrice: item.PurchasePrice,
	}
	if out {
		m.CreditQuantity = qty
	} else {
		m.DebitQuantity = qty
	}
	return m
}

// ItemPrice carries the item prices recorded on a movement.
type ItemPrice struct {
	ItemID        id.ID
	SalePrice     types.Money
	PurchasePrice types.Money
}
