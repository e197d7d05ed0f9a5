package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"depot/internal/core/id"
	"depot/internal/domain/inventory"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

var _ inventory.Journal = (*LotJournal)(nil)

// journalRow is one sys_lot_journal row.
type journalRow struct {
	ID              id.ID           `db:"id"`
	InventoryIDs    []id.ID         `db:"inventory_ids"`
	Payload         []byte          `db:"payload"`
	CompressionAlgo CompressionAlgo `db:"compression_algo"`
	CreatedAt       time.Time       `db:"created_at"`
}

type journalPayload struct {
	Before []inventory.Lot `json:"before"`
	After  []inventory.Lot `json:"after"`
}

// LotJournal keeps zstd-compressed before/after snapshots of every applied
// lot change set.
type LotJournal struct {
	txManager *TxManager
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
}

// NewLotJournal creates a new journal.
func NewLotJournal(txManager *TxManager) (*LotJournal, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &LotJournal{
		txManager: txManager,
		encoder:   encoder,
		decoder:   decoder,
	}, nil
}

// Record writes one entry in the current transaction.
func (j *LotJournal) Record(ctx context.Context, before, after []inventory.Lot) error {
	raw, err := json.Marshal(journalPayload{Before: before, After: after})
	if err != nil {
		return fmt.Errorf("marshal journal payload: %w", err)
	}

	seen := map[id.ID]bool{}
	var ids []id.ID
	for _, l := range after {
		if !seen[l.ID] {
			seen[l.ID] = true
			ids = append(ids, l.ID)
		}
	}

	_, err = j.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_lot_journal (id, inventory_ids, payload, compression_algo, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id.New(), ids, j.encoder.EncodeAll(raw, nil), CompressionZstd, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// History implements inventory.Journal.
func (j *LotJournal) History(ctx context.Context, inventoryID id.ID, limit int) ([]inventory.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.txManager.GetQuerier(ctx).Query(ctx, `
		SELECT id, inventory_ids, payload, compression_algo, created_at
		FROM sys_lot_journal
		WHERE $1 = ANY(inventory_ids)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, inventoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []inventory.JournalEntry
	for rows.Next() {
		var r journalRow
		if err := rows.Scan(&r.ID, &r.InventoryIDs, &r.Payload, &r.CompressionAlgo, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entry, err := j.decode(r)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (j *LotJournal) decode(r journalRow) (inventory.JournalEntry, error) {
	raw := r.Payload
	if r.CompressionAlgo == CompressionZstd {
		decompressed, err := j.decoder.DecodeAll(r.Payload, nil)
		if err != nil {
			return inventory.JournalEntry{}, fmt.Errorf("decompress journal entry %s: %w", r.ID, err)
		}
		raw = decompressed
	}

	var p journalPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return inventory.JournalEntry{}, fmt.Errorf("unmarshal journal entry %s: %w", r.ID, err)
	}
	return inventory.JournalEntry{
		ID:        r.ID,
		Before:    p.Before,
		After:     p.After,
		CreatedAt: r.CreatedAt,
	}, nil
}
