package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "salesledger/internal/core/context"
	"salesledger/internal/core/id"
)

// Action is the audited operation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// CompressionAlgo is the algorithm applied to a stored snapshot.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the snapshot size above which it is compressed.
const DefaultCompressThreshold = 10 * 1024

// Entry is one audit record.
type Entry struct {
	ID                 id.ID           `db:"id" json:"id"`
	OrganizationID     id.ID           `db:"organization_id" json:"organizationId"`
	EntityType         string          `db:"entity_type" json:"entityType"`
	EntityID           id.ID           `db:"entity_id" json:"entityId"`
	Action             Action          `db:"action" json:"action"`
	UserID             string          `db:"user_id" json:"userId"`
	UserName           string          `db:"user_name" json:"userName"`
	Snapshot           json.RawMessage `db:"snapshot" json:"snapshot,omitempty"`
	SnapshotCompressed []byte          `db:"snapshot_compressed" json:"-"`
	CompressionAlgo    CompressionAlgo `db:"compression_algo" json:"compressionAlgo"`
	CreatedAt          time.Time       `db:"created_at" json:"createdAt"`
}

// Repository stores audit entries.
type Repository interface {
	Insert(ctx context.Context, entry Entry) error
	ListByEntity(ctx context.Context, organizationID id.ID, entityType string, entityID id.ID, limit int) ([]Entry, error)
}

// Trail records document snapshots. It runs inside the caller's transaction,
// so an audit failure rolls the change back.
type Trail struct {
	repo              Repository
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewTrail creates an audit trail.
func NewTrail(repo Repository) (*Trail, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Trail{
		repo:              repo,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}, nil
}

// WithCompressThreshold overrides the compression threshold in bytes.
func (t *Trail) WithCompressThreshold(n int) *Trail {
	t.compressThreshold = n
	return t
}

// Record stores a snapshot of a document after action. A nil Trail is a no-op.
func (t *Trail) Record(ctx context.Context, entityType string, entityID id.ID, action Action, snapshot any) error {
	if t == nil {
		return nil
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	entry := Entry{
		ID:              id.New(),
		EntityType:      entityType,
		EntityID:        entityID,
		Action:          action,
		Snapshot:        data,
		CompressionAlgo: CompressionNone,
		CreatedAt:       time.Now().UTC(),
	}
	if caller := appctx.GetCaller(ctx); caller != nil {
		entry.OrganizationID = caller.OrganizationID
		entry.UserID = caller.UserID
		entry.UserName = caller.UserName
	}

	if len(data) > t.compressThreshold {
		entry.SnapshotCompressed = t.encoder.EncodeAll(data, nil)
		entry.Snapshot = nil
		entry.CompressionAlgo = CompressionZstd
	}

	if err := t.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// History returns the newest entries of an entity with snapshots decompressed.
func (t *Trail) History(ctx context.Context, organizationID id.ID, entityType string, entityID id.ID, limit int) ([]Entry, error) {
	entries, err := t.repo.ListByEntity(ctx, organizationID, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}

	for i := range entries {
		e := &entries[i]
		if e.CompressionAlgo != CompressionZstd || len(e.SnapshotCompressed) == 0 {
			continue
		}
		decompressed, err := t.decoder.DecodeAll(e.SnapshotCompressed, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress snapshot: %w", err)
		}
		e.Snapshot = decompressed
		e.SnapshotCompressed = nil
	}
	return entries, nil
}
