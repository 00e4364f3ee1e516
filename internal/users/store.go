// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

// Package users records the music-service listeners who have used the server.
//
// A listener is written once, on first sight. Later calls with the same id
// leave the stored record untouched, so the first display name and email
// seen are the ones kept.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/soundprint/internal/config"
	"github.com/tomtom215/soundprint/internal/metrics"
)

const userKeyPrefix = "user:"

// maxConflictRetries bounds retries of a transaction that lost a write race.
const maxConflictRetries = 3

var (
	// ErrUserNotFound is returned by Get for unknown ids.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidUser is returned when a record has no id.
	ErrInvalidUser = errors.New("user id is required")
)

// User is one stored listener.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is a BadgerDB-backed listener registry.
type Store struct {
	db     *badger.DB
	now    func() time.Time
	logger zerolog.Logger
}

// Open opens (or creates) the store described by cfg.
func Open(cfg *config.UsersConfig, logger zerolog.Logger) (*Store, error) { //nolint:gocritic // zerolog.Logger is designed to be passed by value
	if cfg == nil {
		return nil, errors.New("users config is required")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.StorePath)
	}
	logger = logger.With().Str("component", "users").Logger()
	opts.Logger = badgerLogger{logger: logger}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open user store: %w", err)
	}
	return &Store{db: db, now: time.Now, logger: logger}, nil
}

// Record stores u if no listener with the same id exists. It reports whether
// a new record was written.
func (s *Store) Record(ctx context.Context, u User) (bool, error) {
	u.ID = strings.TrimSpace(u.ID)
	if u.ID == "" {
		metrics.UsersRecorded.WithLabelValues("error").Inc()
		return false, ErrInvalidUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	data, err := json.Marshal(u)
	if err != nil {
		return false, fmt.Errorf("marshal user: %w", err)
	}

	key := []byte(userKeyPrefix + u.ID)
	var created bool
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		created = false
		err = s.db.Update(func(txn *badger.Txn) error {
			_, getErr := txn.Get(key)
			switch {
			case getErr == nil:
				return nil
			case !errors.Is(getErr, badger.ErrKeyNotFound):
				return fmt.Errorf("get user: %w", getErr)
			}
			if err := txn.Set(key, data); err != nil {
				return fmt.Errorf("set user: %w", err)
			}
			created = true
			return nil
		})
		if !errors.Is(err, badger.ErrConflict) || attempt >= maxConflictRetries {
			break
		}
	}

	switch {
	case err != nil:
		metrics.UsersRecorded.WithLabelValues("error").Inc()
		return false, err
	case created:
		metrics.UsersRecorded.WithLabelValues("created").Inc()
		s.logger.Info().Str("user_id", u.ID).Msg("Recorded new listener")
	default:
		metrics.UsersRecorded.WithLabelValues("existing").Inc()
	}
	return created, nil
}

// Get returns the stored listener with id.
func (s *Store) Get(_ context.Context, id string) (User, error) {
	var u User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &u)
		})
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Count returns the number of stored listeners.
func (s *Store) Count(_ context.Context) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(userKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger's internal logging through zerolog. Info and
// debug chatter is demoted to debug.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msgf(strings.TrimSpace(format), args...)
}
