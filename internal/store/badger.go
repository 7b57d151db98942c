// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/recommend"
)

// Key prefixes for BadgerDB storage. Numeric parts are zero-padded so that
// lexical key order equals numeric order.
const (
	itemKeyPrefix        = "item:"
	ratingKeyPrefix      = "rating:"
	commentKeyPrefix     = "comment:"
	commentItemKeyPrefix = "comment_item:"
)

func itemKey(id int) []byte { return []byte(itemKeyPrefix + pad(id)) }

func ratingKey(userID, itemID int) []byte {
	return []byte(ratingKeyPrefix + pad(itemID) + ":" + pad(userID))
}

func ratingItemPrefix(itemID int) []byte { return []byte(ratingKeyPrefix + pad(itemID) + ":") }

func commentKey(id int) []byte { return []byte(commentKeyPrefix + pad(id)) }

func commentItemKey(itemID, id int) []byte {
	return []byte(commentItemKeyPrefix + pad(itemID) + ":" + pad(id))
}

func pad(n int) string { return fmt.Sprintf("%012d", n) }

// BadgerConfig configures the persistent store.
type BadgerConfig struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in RAM, for tests and throwaway runs.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool
}

// BadgerStore implements Store using BadgerDB for durable storage.
type BadgerStore struct {
	db     *badger.DB
	logger zerolog.Logger
	closed atomic.Bool

	// commentMu serializes id allocation for new comments.
	commentMu sync.Mutex
	nextID    int
	now       func() time.Time
}

// OpenBadger opens (or creates) a BadgerDB-backed store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenBadger(cfg BadgerConfig, logger zerolog.Logger) (*BadgerStore, error) {
	logger = logger.With().Str("component", "store").Logger()

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("store: path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithLogger(&badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	s := &BadgerStore{db: db, logger: logger, now: time.Now}
	if err := s.loadNextCommentID(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Int("next_comment_id", s.nextID+1).
		Msg("record store opened")
	return s, nil
}

// loadNextCommentID finds the highest comment id so new ids continue after it.
func (s *BadgerStore) loadNextCommentID() error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(commentKeyPrefix)
		// Seek past the last possible key under the prefix.
		it.Seek(append(append([]byte{}, prefix...), 0xFF))
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		id, err := strconv.Atoi(strings.TrimPrefix(string(it.Item().Key()), commentKeyPrefix))
		if err != nil {
			return fmt.Errorf("parse comment key: %w", err)
		}
		s.nextID = id
		return nil
	})
}

// PutItem implements Store.
func (s *BadgerStore) PutItem(ctx context.Context, item recommend.Item) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	data, err := json.Marshal(item.WithNormalizedTitle())
	if err != nil {
		return false, fmt.Errorf("marshal item: %w", err)
	}

	created := false
	err = s.db.Update(func(txn *badger.Txn) error {
		key := itemKey(item.ID)
		_, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			created = true
		case err != nil:
			return fmt.Errorf("get item: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return false, s.wrap(err)
	}
	return created, nil
}

// GetItem implements Store.
func (s *BadgerStore) GetItem(ctx context.Context, id int) (recommend.Item, error) {
	var item recommend.Item
	err := s.get(ctx, itemKey(id), &item)
	return item, err
}

// ListItems implements Store.
func (s *BadgerStore) ListItems(ctx context.Context) ([]recommend.Item, error) {
	var out []recommend.Item
	err := scan(ctx, s, []byte(itemKeyPrefix), func(item recommend.Item) {
		out = append(out, item)
	})
	return out, err
}

// PutRating implements Store.
func (s *BadgerStore) PutRating(ctx context.Context, r recommend.Rating) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal rating: %w", err)
	}
	return s.wrap(s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(ratingKey(r.UserID, r.ItemID), data)
	}))
}

// GetRating implements Store.
func (s *BadgerStore) GetRating(ctx context.Context, userID, itemID int) (recommend.Rating, error) {
	var r recommend.Rating
	err := s.get(ctx, ratingKey(userID, itemID), &r)
	return r, err
}

// DeleteRating implements Store.
func (s *BadgerStore) DeleteRating(ctx context.Context, userID, itemID int) error {
	return s.remove(ctx, ratingKey(userID, itemID))
}

// ListRatings implements Store.
func (s *BadgerStore) ListRatings(ctx context.Context) ([]recommend.Rating, error) {
	var out []recommend.Rating
	err := scan(ctx, s, []byte(ratingKeyPrefix), func(r recommend.Rating) {
		out = append(out, r)
	})
	return out, err
}

// ListRatingsByItem implements Store.
func (s *BadgerStore) ListRatingsByItem(ctx context.Context, itemID int) ([]recommend.Rating, error) {
	var out []recommend.Rating
	err := scan(ctx, s, ratingItemPrefix(itemID), func(r recommend.Rating) {
		out = append(out, r)
	})
	return out, err
}

// CreateComment implements Store.
func (s *BadgerStore) CreateComment(ctx context.Context, c recommend.Comment) (recommend.Comment, error) {
	if err := ctx.Err(); err != nil {
		return recommend.Comment{}, err
	}

	s.commentMu.Lock()
	defer s.commentMu.Unlock()

	next := s.nextID
	if c.ID > 0 {
		if c.ID > next {
			next = c.ID
		}
	} else {
		next++
		c.ID = next
	}
	now := s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	data, err := json.Marshal(c)
	if err != nil {
		return recommend.Comment{}, fmt.Errorf("marshal comment: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(commentKey(c.ID), data); err != nil {
			return fmt.Errorf("set comment: %w", err)
		}
		// Secondary index for per-movie listing.
		if err := txn.Set(commentItemKey(c.ItemID, c.ID), nil); err != nil {
			return fmt.Errorf("set comment index: %w", err)
		}
		return nil
	})
	if err != nil {
		return recommend.Comment{}, s.wrap(err)
	}
	s.nextID = next
	return c, nil
}

// GetComment implements Store.
func (s *BadgerStore) GetComment(ctx context.Context, id int) (recommend.Comment, error) {
	var c recommend.Comment
	err := s.get(ctx, commentKey(id), &c)
	return c, err
}

// UpdateComment implements Store.
func (s *BadgerStore) UpdateComment(ctx context.Context, c recommend.Comment) (recommend.Comment, error) {
	if err := ctx.Err(); err != nil {
		return recommend.Comment{}, err
	}

	var updated recommend.Comment
	err := s.db.Update(func(txn *badger.Txn) error {
		key := commentKey(c.ID)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get comment: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &updated)
		}); err != nil {
			return fmt.Errorf("unmarshal comment: %w", err)
		}

		updated.Content = c.Content
		updated.Polarity = c.Polarity
		updated.UpdatedAt = s.now()

		data, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("marshal comment: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return recommend.Comment{}, s.wrap(err)
	}
	return updated, nil
}

// DeleteComment implements Store.
func (s *BadgerStore) DeleteComment(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.wrap(s.db.Update(func(txn *badger.Txn) error {
		key := commentKey(id)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get comment: %w", err)
		}
		var c recommend.Comment
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &c)
		}); err != nil {
			return fmt.Errorf("unmarshal comment: %w", err)
		}
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		return txn.Delete(commentItemKey(c.ItemID, id))
	}))
}

// ListComments implements Store.
func (s *BadgerStore) ListComments(ctx context.Context) ([]recommend.Comment, error) {
	var out []recommend.Comment
	err := scan(ctx, s, []byte(commentKeyPrefix), func(c recommend.Comment) {
		out = append(out, c)
	})
	return out, err
}

// ListCommentsByItem implements Store.
func (s *BadgerStore) ListCommentsByItem(ctx context.Context, itemID int) ([]recommend.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []recommend.Comment
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(commentItemKeyPrefix + pad(itemID) + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id, err := strconv.Atoi(strings.TrimPrefix(string(it.Item().Key()), string(prefix)))
			if err != nil {
				return fmt.Errorf("parse comment index key: %w", err)
			}
			item, err := txn.Get(commentKey(id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			var c recommend.Comment
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			}); err != nil {
				return fmt.Errorf("unmarshal comment: %w", err)
			}
			out = append(out, c)
		}
		return nil
	})
	return out, s.wrap(err)
}

// Close flushes and closes the database. Calling it again is a no-op.
func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

// get loads the JSON value at key into dst.
func (s *BadgerStore) get(ctx context.Context, key []byte, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.wrap(s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dst)
		})
	}))
}

// remove deletes key, returning ErrNotFound when it is absent.
func (s *BadgerStore) remove(ctx context.Context, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.wrap(s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	}))
}

// wrap maps badger's closed-DB error onto ErrClosed.
func (s *BadgerStore) wrap(err error) error {
	if errors.Is(err, badger.ErrDBClosed) || (err != nil && s.closed.Load()) {
		return ErrClosed
	}
	return err
}

// scan decodes every value under prefix in key order.
func scan[T any](ctx context.Context, s *BadgerStore, prefix []byte, fn func(T)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	return s.wrap(s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var v T
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			fn(v)
		}
		return ctx.Err()
	}))
}

// badgerLogger routes badger's internal logging into zerolog.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Trace().Msgf(strings.TrimSpace(format), args...)
}
