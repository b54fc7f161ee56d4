// Package launcher runs a long-lived board subscription over the daemon's
// websocket, redialling when the connection drops.
package launcher

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
)

// ErrBoardDeleted ends a watch whose board was deleted
var ErrBoardDeleted = errors.New("board was deleted")

var errDisconnected = errors.New("connection lost")

// DefaultRetries is the dial attempts made per (re)connect
const DefaultRetries = 5

// WatchOptions configures Watch
type WatchOptions struct {
	// URL is the daemon's websocket endpoint
	URL     string
	BoardID string
	// Retries bounds dial attempts per connect; DefaultRetries when zero
	Retries int
	Logger  *log.Logger

	// OnBoard receives every new snapshot in version order. Returning an
	// error stops the watch with that error.
	OnBoard func(*models.Board) error
}

// Watch follows a board until ctx is cancelled, the board is deleted, or
// OnBoard fails. Lost connections are redialled and the board rejoined,
// which redelivers the current snapshot.
func Watch(ctx context.Context, opts WatchOptions) error {
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	entry := logger.WithFields(log.Fields{"board": opts.BoardID, "url": opts.URL})

	for {
		client, err := events.DialWithRetry(ctx, opts.URL, opts.Retries)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return events.ClassifyDaemonError(err)
		}

		err = follow(ctx, client, opts)
		if cerr := client.Close(); cerr != nil {
			entry.WithError(cerr).Debug("error closing event client")
		}
		if !errors.Is(err, errDisconnected) {
			return err
		}
		entry.Warn("connection to daemon lost, reconnecting")
	}
}

func follow(ctx context.Context, c *events.Client, opts WatchOptions) error {
	if err := c.Join(ctx, opts.BoardID); err != nil {
		select {
		case <-c.Done():
			return errDisconnected
		default:
		}
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to join board %s: %w", opts.BoardID, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case b := <-c.Updates():
			if b.ID != opts.BoardID {
				continue
			}
			if err := opts.OnBoard(b); err != nil {
				return err
			}

		case id := <-c.Deleted():
			// earlier snapshots were already handed out by the client
			if id == opts.BoardID {
				return ErrBoardDeleted
			}

		case <-c.Done():
			return errDisconnected
		}
	}
}
