// Package localstore keeps the practice client's per-user score records on disk.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wordrush/internal/game"
	"wordrush/shared/models"

	lru "github.com/hashicorp/golang-lru"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	recordsBucket  = "records"
	settingsBucket = "settings"
	lastLevelKey   = "last_level"

	DefaultCacheSize = 64
)

// Store is a bbolt file with an ARC cache in front of record reads.
type Store struct {
	db     *bolt.DB
	cache  *lru.ARCCache
	logger *zap.Logger
}

// Open opens or creates the store file at path.
func Open(path string, cacheSize int, logger *zap.Logger) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open local store %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{recordsBucket, settingsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	cache, err := lru.NewARC(cacheSize)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("lru new instance of arc cache: %w", err)
	}

	logger = logger.Named("LocalStore")
	logger.Debug("Local store opened", zap.String("path", path))
	return &Store{db: db, cache: cache, logger: logger}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close local store: %w", err)
	}
	return nil
}

// ForUser scopes the store to one user. Guests may use any stable id such as "guest".
func (s *Store) ForUser(userID string) *UserStore {
	return &UserStore{store: s, userID: userID}
}

// UserStore implements game.ScoreStore for one user.
type UserStore struct {
	store  *Store
	userID string
}

var _ game.ScoreStore = (*UserStore)(nil)

func (u *UserStore) recordKey(level models.Level) string {
	return u.userID + ":" + level.String()
}

func (u *UserStore) LoadRecord(level models.Level) (game.Record, error) {
	key := u.recordKey(level)
	if v, ok := u.store.cache.Get(key); ok {
		return v.(game.Record), nil
	}

	var rec game.Record
	var raw []byte
	if err := u.store.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(recordsBucket)).Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return rec, fmt.Errorf("view transaction error: %w", err)
	}

	if raw != nil {
		if err := json.Unmarshal(raw, &rec); err != nil {
			return game.Record{}, fmt.Errorf("unmarshal record %s: %w", key, err)
		}
	}
	u.store.cache.Add(key, rec)
	return rec, nil
}

func (u *UserStore) SaveRecord(level models.Level, rec game.Record) error {
	if rec.Score < 0 || rec.Streak < 0 || rec.Best < 0 {
		return errors.New("record values must not be negative")
	}
	key := u.recordKey(level)
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := u.store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(recordsBucket)).Put([]byte(key), raw)
	}); err != nil {
		u.store.cache.Remove(key)
		return fmt.Errorf("put record %s: %w", key, err)
	}
	u.store.cache.Add(key, rec)
	return nil
}

func (u *UserStore) LastLevel() (models.Level, error) {
	var level models.Level
	err := u.store.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(settingsBucket)).Get([]byte(u.userID + ":" + lastLevelKey)); v != nil {
			level = models.Level(v)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("view transaction error: %w", err)
	}
	if level != "" && !level.Valid() {
		u.store.logger.Warn("Ignoring unknown stored level", zap.String("level", string(level)))
		return "", nil
	}
	return level, nil
}

func (u *UserStore) SaveLastLevel(level models.Level) error {
	if !level.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidLevel, level)
	}
	return u.store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(settingsBucket)).Put([]byte(u.userID+":"+lastLevelKey), []byte(level))
	})
}
