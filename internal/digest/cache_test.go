// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/collabrank/pkg/types"
)

func testDigests() []types.PaperDigest {
	return []types.PaperDigest{
		{Title: "First", Authors: "A. One", Venue: "arXiv:2501.00001", Citations: 3, Abstract: "Alpha.", TokenCost: 12},
		{Title: "Second", Authors: "B. Two", Venue: "Unpublished", Citations: 0, Abstract: "Beta.", TokenCost: 9},
	}
}

func TestCachePutGet(t *testing.T) {
	cache, err := OpenCache(t.TempDir(), time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	require.NoError(t, cache.Put("J.Smith.1", testDigests()))

	got, ok, err := cache.Get("J.Smith.1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testDigests(), got)
}

func TestCacheMiss(t *testing.T) {
	cache, err := OpenCache(t.TempDir(), time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	_, ok, err := cache.Get("Nobody.1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheStaleEntryIsAMiss(t *testing.T) {
	cache, err := OpenCache(t.TempDir(), time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	require.NoError(t, cache.Put("J.Smith.1", testDigests()))

	// Jump the clock past the freshness window.
	cache.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, ok, err := cache.Get("J.Smith.1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachePutReplacesEntry(t *testing.T) {
	cache, err := OpenCache(t.TempDir(), time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	require.NoError(t, cache.Put("J.Smith.1", testDigests()))
	replacement := []types.PaperDigest{{Title: "Only", TokenCost: 1}}
	require.NoError(t, cache.Put("J.Smith.1", replacement))

	got, ok, err := cache.Get("J.Smith.1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, replacement, got)
}

func TestCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	cache, err := OpenCache(dir, time.Hour)
	require.NoError(t, err)
	require.NoError(t, cache.Put("J.Smith.1", testDigests()))
	require.NoError(t, cache.Close())

	cache, err = OpenCache(dir, time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	got, ok, err := cache.Get("J.Smith.1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testDigests(), got)
}

func TestCacheEmptyDigestSet(t *testing.T) {
	cache, err := OpenCache(t.TempDir(), time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	// Profiles with no papers are cached too, so they are not re-queried
	// every run.
	require.NoError(t, cache.Put("Quiet.1", nil))
	got, ok, err := cache.Get("Quiet.1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}
