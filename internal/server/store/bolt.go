package store

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/dmitrijs2005/filehub/internal/common"
)

// BoltStore implements Store on a single-file bbolt database. Each logical
// table is a bucket; values are stored as-is.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database file at path and provisions
// the buckets for all logical tables.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt open error: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range tables {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt init error: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func bucket(tx *bolt.Tx, table string) (*bolt.Bucket, error) {
	b := tx.Bucket([]byte(table))
	if b == nil {
		return nil, fmt.Errorf("%w: %q", common.ErrorUnknownTable, table)
	}
	return b, nil
}

func (s *BoltStore) Get(ctx context.Context, table, key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := bucket(tx, table)
		if err != nil {
			return err
		}
		v := b.Get([]byte(key))
		if v == nil {
			return common.ErrorNotFound
		}
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *BoltStore) Put(ctx context.Context, table, key string, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, table)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
}

func (s *BoltStore) Exists(ctx context.Context, table, key string) (bool, error) {
	var exists bool
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := bucket(tx, table)
		if err != nil {
			return err
		}
		exists = b.Get([]byte(key)) != nil
		return nil
	})
	return exists, err
}

func (s *BoltStore) Scan(ctx context.Context, table string) ([]Record, error) {
	var records []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := bucket(tx, table)
		if err != nil {
			return err
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			data := make([]byte, len(v))
			copy(data, v)
			records = append(records, Record{Key: string(k), Data: data})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
