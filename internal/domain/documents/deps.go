package documents

import (
	"context"
	"fmt"

	"salesledger/internal/core/apperror"
	appctx "salesledger/internal/core/context"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/numerator"
	"salesledger/internal/domain"
	"salesledger/internal/domain/audit"
	"salesledger/internal/domain/posting"
	"salesledger/internal/domain/refdata"
	"salesledger/pkg/logger"
)

// Repository is the storage contract shared by every document type.
// Update fails with ConcurrentModification when the stored version differs
// and bumps the version of doc on success.
type Repository[T any] interface {
	Create(ctx context.Context, doc T) error
	Get(ctx context.Context, organizationID, docID id.ID) (T, error)
	Update(ctx context.Context, doc T) error
	Delete(ctx context.Context, organizationID, docID id.ID) error
	List(ctx context.Context, organizationID id.ID, filter domain.ListFilter) (domain.ListResult[T], error)
}

// Recorder receives document outcomes. Optional.
type Recorder interface {
	DocumentWritten(docType entity.DocumentType, action string)
	DocumentRejected(docType entity.DocumentType, code string)
}

// Deps are the collaborators every orchestrator needs.
type Deps struct {
	Engine   *posting.Engine
	Numbers  numerator.Generator
	RefData  refdata.Gateway
	Trail    *audit.Trail
	Recorder Recorder
}

// Organization returns the caller's organization.
func Organization(ctx context.Context) (id.ID, error) {
	orgID := appctx.GetOrganizationID(ctx)
	if id.IsNil(orgID) {
		return id.Nil(), apperror.NewUnauthorized("caller organization is required")
	}
	return orgID, nil
}

// Number allocates the next number of docType. Call inside the transaction
// that persists the document.
func (d Deps) Number(ctx context.Context, organizationID id.ID, docType entity.DocumentType) (string, error) {
	number, err := d.Numbers.Next(ctx, organizationID, docType)
	if err != nil {
		return "", fmt.Errorf("allocate number: %w", err)
	}
	return number, nil
}

// Audit records a snapshot of doc after action.
func (d Deps) Audit(ctx context.Context, docType entity.DocumentType, docID id.ID, action audit.Action, doc any) error {
	return d.Trail.Record(ctx, string(docType), docID, action, doc)
}

// Done logs and records the outcome of a write and returns err unchanged.
func (d Deps) Done(ctx context.Context, docType entity.DocumentType, action audit.Action, docID id.ID, number string, err error) error {
	if err != nil {
		if d.Recorder != nil {
			code := apperror.CodeInternal
			if appErr, ok := apperror.AsAppError(err); ok {
				code = appErr.Code
			}
			d.Recorder.DocumentRejected(docType, code)
		}
		return err
	}

	if d.Recorder != nil {
		d.Recorder.DocumentWritten(docType, string(action))
	}
	logger.Info(ctx, fmt.Sprintf("%s %sd", docType, action), "id", docID, "number", number)
	return nil
}
