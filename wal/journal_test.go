package wal

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oterra/oterra/types"
)

func TestJournalAppendAndReplay(t *testing.T) {
	dir := t.TempDir()

	j, err := Open(dir)
	require.NoError(t, err)

	catalog := &types.Catalog{}
	catalog.Add(types.Resource{ID: "ocid1.vcn.a", Kind: types.KindVcn, Name: "main"})

	require.NoError(t, j.Append(EntryObserved, "", catalog))
	require.NoError(t, j.Append(EntryImported, "ocid1.vcn.a", map[string]string{"address": "oci_core_vcn.main"}))
	require.NoError(t, j.AppendError(EntryFailed, "ocid1.instance.x", nil, io.ErrUnexpectedEOF))
	require.NoError(t, j.Close())

	var entries []*Entry
	err = Replay(dir, time.Time{}, func(e *Entry) error {
		entries = append(entries, e)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, EntryObserved, entries[0].Type)
	assert.Equal(t, int64(1), entries[0].Sequence)
	assert.Equal(t, EntryImported, entries[1].Type)
	assert.Equal(t, "ocid1.vcn.a", entries[1].ResourceID)
	assert.Equal(t, EntryFailed, entries[2].Type)
	assert.Equal(t, io.ErrUnexpectedEOF.Error(), entries[2].Error)
}

func TestJournalSequenceIncrements(t *testing.T) {
	dir := t.TempDir()
	j, err := Open(dir)
	require.NoError(t, err)
	defer j.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Append(EntryPlanned, "", i))
	}

	files, err := filepath.Glob(filepath.Join(dir, "oterra-*.wal"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	reader, err := NewReader(files[0])
	require.NoError(t, err)
	defer reader.Close()

	var last int64
	for {
		entry, err := reader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, last+1, entry.Sequence)
		last = entry.Sequence
	}
	assert.Equal(t, int64(5), last)
}

func TestReplaySinceFiltersOldEntries(t *testing.T) {
	dir := t.TempDir()
	j, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, j.Append(EntryObserved, "", "old"))
	require.NoError(t, j.Close())

	count := 0
	err = Replay(dir, time.Now().Add(time.Hour), func(*Entry) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCleanupRemovesOnlyOldJournals(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "oterra-20240101-000000.wal")
	require.NoError(t, os.WriteFile(old, []byte("{}\n"), 0o644))
	stale := time.Now().AddDate(0, 0, -60)
	require.NoError(t, os.Chtimes(old, stale, stale))

	recent := filepath.Join(dir, "oterra-20990101-000000.wal")
	require.NoError(t, os.WriteFile(recent, []byte("{}\n"), 0o644))

	removed, err := Cleanup(dir, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(recent)
	assert.NoError(t, err)
}
