package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/store"
)

// ErrStaleWrite is returned when a save would overwrite a newer version
var ErrStaleWrite = errors.New("stored board is newer than the write")

var codec = sonic.ConfigStd

// BoardRepository stores whole board documents in SQLite
type BoardRepository struct {
	db *sql.DB
}

var _ store.Persister = (*BoardRepository)(nil)

// NewBoardRepository creates a repository over an opened database
func NewBoardRepository(db *sql.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// Fetch loads one board
func (r *BoardRepository) Fetch(ctx context.Context, boardID string) (*models.Board, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, "SELECT document FROM boards WHERE id = ?", boardID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFound(models.KindBoard, boardID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query board %s: %w", boardID, err)
	}
	return decodeBoard(doc)
}

// LoadAll loads every stored board, ordered by name
func (r *BoardRepository) LoadAll(ctx context.Context) ([]*models.Board, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT document FROM boards ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query boards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var boards []*models.Board
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		b, err := decodeBoard(doc)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate boards: %w", err)
	}
	return boards, nil
}

// Save upserts a board. Writing an older version than the stored one
// fails with ErrStaleWrite.
func (r *BoardRepository) Save(ctx context.Context, board *models.Board) error {
	doc, err := codec.Marshal(board)
	if err != nil {
		return fmt.Errorf("failed to encode board %s: %w", board.ID, err)
	}

	return inTx(ctx, r.db, "save board "+board.ID, func(tx *sql.Tx) error {
		var stored int64
		err := tx.QueryRowContext(ctx, "SELECT version FROM boards WHERE id = ?", board.ID).Scan(&stored)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("failed to read version of board %s: %w", board.ID, err)
		case stored > board.Version:
			return fmt.Errorf("board %s at version %d: %w", board.ID, stored, ErrStaleWrite)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO boards (id, name, document, version, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				document = excluded.document,
				version = excluded.version,
				updated_at = excluded.updated_at
		`, board.ID, board.Name, string(doc), board.Version, board.UpdatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to save board %s: %w", board.ID, err)
		}
		return nil
	})
}

// Delete removes a board. Deleting a missing board is not an error.
func (r *BoardRepository) Delete(ctx context.Context, boardID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM boards WHERE id = ?", boardID); err != nil {
		return fmt.Errorf("failed to delete board %s: %w", boardID, err)
	}
	return nil
}

func decodeBoard(doc string) (*models.Board, error) {
	var b models.Board
	if err := codec.UnmarshalFromString(doc, &b); err != nil {
		return nil, fmt.Errorf("failed to decode board: %w", err)
	}
	b.Normalize()
	return &b, nil
}
