package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/filehub/internal/common"
)

func newBoltStore(t *testing.T, path string) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBoltStore_PutGetExists(t *testing.T) {
	ctx := context.Background()
	s := newBoltStore(t, filepath.Join(t.TempDir(), "store.db"))

	ok, err := s.Exists(ctx, TableUsers, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, TableUsers, "alice", []byte("blob")))

	data, err := s.Get(ctx, TableUsers, "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), data)

	ok, err = s.Exists(ctx, TableUsers, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBoltStore_GetAbsent(t *testing.T) {
	s := newBoltStore(t, filepath.Join(t.TempDir(), "store.db"))

	_, err := s.Get(context.Background(), TableUsers, "nobody")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestBoltStore_Scan(t *testing.T) {
	ctx := context.Background()
	s := newBoltStore(t, filepath.Join(t.TempDir(), "store.db"))

	require.NoError(t, s.Put(ctx, TableUsers, "b", []byte("2")))
	require.NoError(t, s.Put(ctx, TableUsers, "a", []byte("1")))

	records, err := s.Scan(ctx, TableUsers)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Bolt cursors iterate in key order.
	assert.Equal(t, "a", records[0].Key)
	assert.Equal(t, "b", records[1].Key)
}

func TestBoltStore_UnknownTable(t *testing.T) {
	s := newBoltStore(t, filepath.Join(t.TempDir(), "store.db"))

	_, err := s.Get(context.Background(), "bogus", "k")
	assert.True(t, errors.Is(err, common.ErrorUnknownTable))
}

func TestBoltStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	s, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, TableCore, "usergroups", []byte(`{"public":"Public"}`)))
	require.NoError(t, s.Close())

	s2 := newBoltStore(t, path)
	data, err := s2.Get(ctx, TableCore, "usergroups")
	require.NoError(t, err)
	assert.JSONEq(t, `{"public":"Public"}`, string(data))
}
