package manifest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndList(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "manifest.db"))
	require.NoError(t, err)
	defer db.Close()

	first := Entry{
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Op:        "mosaic",
		ImagePath: "out/a.png",
		LabelPath: "out/a.json",
		Sources:   []string{"fg/x.bmp", "fg/y.bmp"},
		Seed:      ^uint64(0),
		Shapes:    4,
	}
	require.NoError(t, db.Record(first))
	require.NoError(t, db.Record(Entry{Op: "rotate", ImagePath: "rot/b.png", Sources: []string{"b.png"}}))

	entries, err := db.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	got := entries[0]
	assert.NotEmpty(t, got.ID)
	assert.True(t, got.CreatedAt.Equal(first.CreatedAt))
	assert.Equal(t, first.Sources, got.Sources)
	assert.Equal(t, first.Seed, got.Seed)
	assert.Equal(t, 4, got.Shapes)

	assert.Equal(t, "rotate", entries[1].Op)
	assert.NotEqual(t, got.ID, entries[1].ID)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Record(Entry{Op: "paste"}))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	entries, err := db.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
