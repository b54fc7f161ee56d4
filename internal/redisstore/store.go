// Package redisstore persists boards as JSON documents in Redis
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/store"
)

// DefaultPrefix namespaces every key written by the persister
const DefaultPrefix = "tablero:"

var codec = sonic.ConfigStd

// Persister stores each board under <prefix>board:<id> and tracks ids in
// the <prefix>boards set
type Persister struct {
	client *redis.Client
	prefix string
}

var _ store.Persister = (*Persister)(nil)

// New wraps a connected client. An empty prefix uses DefaultPrefix.
func New(client *redis.Client, prefix string) *Persister {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Persister{client: client, prefix: prefix}
}

// Dial parses a redis:// URL, connects and pings
func Dial(ctx context.Context, url, prefix string) (*Persister, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return New(client, prefix), nil
}

// Close closes the underlying client
func (p *Persister) Close() error {
	return p.client.Close()
}

func (p *Persister) boardKey(id string) string {
	return p.prefix + "board:" + id
}

func (p *Persister) indexKey() string {
	return p.prefix + "boards"
}

// Fetch loads one board
func (p *Persister) Fetch(ctx context.Context, boardID string) (*models.Board, error) {
	raw, err := p.client.Get(ctx, p.boardKey(boardID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.NotFound(models.KindBoard, boardID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get board %s: %w", boardID, err)
	}
	return decodeBoard(raw)
}

// LoadAll loads every indexed board, ordered by name then id. Index
// entries whose document has vanished are skipped.
func (p *Persister) LoadAll(ctx context.Context) ([]*models.Board, error) {
	ids, err := p.client.SMembers(ctx, p.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read board index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = p.boardKey(id)
	}
	values, err := p.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read boards: %w", err)
	}

	boards := make([]*models.Board, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		b, err := decodeBoard([]byte(s))
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	sort.Slice(boards, func(i, j int) bool {
		if boards[i].Name != boards[j].Name {
			return boards[i].Name < boards[j].Name
		}
		return boards[i].ID < boards[j].ID
	})
	return boards, nil
}

// Save writes the document and indexes it in one transaction
func (p *Persister) Save(ctx context.Context, board *models.Board) error {
	raw, err := codec.Marshal(board)
	if err != nil {
		return fmt.Errorf("failed to encode board %s: %w", board.ID, err)
	}
	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, p.boardKey(board.ID), raw, 0)
		pipe.SAdd(ctx, p.indexKey(), board.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save board %s: %w", board.ID, err)
	}
	return nil
}

// Delete removes the document and its index entry
func (p *Persister) Delete(ctx context.Context, boardID string) error {
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, p.boardKey(boardID))
		pipe.SRem(ctx, p.indexKey(), boardID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete board %s: %w", boardID, err)
	}
	return nil
}

func decodeBoard(raw []byte) (*models.Board, error) {
	var b models.Board
	if err := codec.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("failed to decode board: %w", err)
	}
	b.Normalize()
	return &b, nil
}
