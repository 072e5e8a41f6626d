package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("record not found")

// Collection is a generic document repository over a two-column table
// (id TEXT PRIMARY KEY, doc TEXT NOT NULL). All three stores in this
// application are instances of it, differing only in record shape.
type Collection[T any] struct {
	db    *sql.DB
	table string
	getID func(*T) string
	setID func(*T, string)
}

func NewCollection[T any](db *sql.DB, table string, getID func(*T) string, setID func(*T, string)) *Collection[T] {
	return &Collection[T]{db: db, table: table, getID: getID, setID: setID}
}

// Find returns every record matching the predicate. A nil predicate
// matches everything. Result order is not guaranteed.
func (c *Collection[T]) Find(ctx context.Context, match func(*T) bool) ([]T, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT doc FROM `+c.table)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.table, err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.table, err)
		}
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decode %s doc: %w", c.table, err)
		}
		if match == nil || match(&item) {
			items = append(items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", c.table, err)
	}
	return items, nil
}

func (c *Collection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var raw []byte
	err := c.db.QueryRowContext(ctx, `SELECT doc FROM `+c.table+` WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query %s by id: %w", c.table, err)
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("decode %s doc: %w", c.table, err)
	}
	return &item, nil
}

// InsertOne persists a single record, assigning a generated id when the
// record does not carry one.
func (c *Collection[T]) InsertOne(ctx context.Context, rec *T) error {
	if c.getID(rec) == "" {
		c.setID(rec, uuid.NewString())
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s doc: %w", c.table, err)
	}
	if _, err := c.db.ExecContext(ctx, `INSERT INTO `+c.table+` (id, doc) VALUES ($1, $2)`, c.getID(rec), string(raw)); err != nil {
		return fmt.Errorf("insert %s: %w", c.table, err)
	}
	return nil
}

// InsertMany persists all records in one transaction: either every record
// lands or none does.
func (c *Collection[T]) InsertMany(ctx context.Context, recs []T) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range recs {
		if c.getID(&recs[i]) == "" {
			c.setID(&recs[i], uuid.NewString())
		}
		raw, err := json.Marshal(&recs[i])
		if err != nil {
			return fmt.Errorf("encode %s doc: %w", c.table, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO `+c.table+` (id, doc) VALUES ($1, $2)`, c.getID(&recs[i]), string(raw)); err != nil {
			return fmt.Errorf("insert %s batch: %w", c.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// UpdateByID applies an arbitrary field-level patch to the stored document
// and returns the updated record. Patch keys overwrite document fields
// as-is; the id field cannot be patched.
func (c *Collection[T]) UpdateByID(ctx context.Context, id string, patch map[string]any) (*T, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw []byte
	err = tx.QueryRowContext(ctx, `SELECT doc FROM `+c.table+` WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load %s for update: %w", c.table, err)
	}

	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s doc: %w", c.table, err)
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		doc[k] = v
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s doc: %w", c.table, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE `+c.table+` SET doc = $1 WHERE id = $2`, string(merged), id); err != nil {
		return nil, fmt.Errorf("update %s: %w", c.table, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	var item T
	if err := json.Unmarshal(merged, &item); err != nil {
		return nil, fmt.Errorf("decode merged %s doc: %w", c.table, err)
	}
	return &item, nil
}

func (c *Collection[T]) DeleteByID(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM `+c.table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", c.table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s affected rows: %w", c.table, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
