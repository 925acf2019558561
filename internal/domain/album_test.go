package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAlbumEntryKey(t *testing.T) {
	e := AlbumEntry{AlbumID: "a1", EntryID: "e1"}
	assert.Equal(t, "a1/e1", e.Key())
}

func TestAlbumEntryAspectRatio(t *testing.T) {
	e := AlbumEntry{TargetWidth: 4000, TargetHeight: 3000}
	assert.InDelta(t, 4.0/3.0, e.AspectRatio(), 1e-9)
}

func TestAlbumEntryEqual(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	exposure := 4 * time.Millisecond
	fNumber := 2.8

	base := func() AlbumEntry {
		return AlbumEntry{
			AlbumID:      "a1",
			EntryID:      "e1",
			Name:         "IMG_0001.jpg",
			TargetWidth:  4000,
			TargetHeight: 3000,
			Created:      &created,
			Keywords:     []string{"horse", "jumping"},
			CameraModel:  "Canon EOS R5",
			ExposureTime: &exposure,
			FNumber:      &fNumber,
		}
	}

	a, b := base(), base()
	assert.True(t, a.Equal(&b))

	tests := []struct {
		name   string
		mutate func(*AlbumEntry)
	}{
		{"name", func(e *AlbumEntry) { e.Name = "IMG_0002.jpg" }},
		{"dimensions", func(e *AlbumEntry) { e.TargetWidth = 2000 }},
		{"created nil", func(e *AlbumEntry) { e.Created = nil }},
		{"keywords", func(e *AlbumEntry) { e.Keywords = []string{"horse"} }},
		{"camera", func(e *AlbumEntry) { e.CameraModel = "" }},
		{"exposure", func(e *AlbumEntry) { d := 8 * time.Millisecond; e.ExposureTime = &d }},
		{"f-number nil", func(e *AlbumEntry) { e.FNumber = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mutated := base()
			tt.mutate(&mutated)
			assert.False(t, a.Equal(&mutated))
		})
	}
}

func TestAlbumEntryEqualNaN(t *testing.T) {
	nan1, nan2 := math.NaN(), math.NaN()
	a := AlbumEntry{AlbumID: "a1", EntryID: "e1", FNumber: &nan1}
	b := AlbumEntry{AlbumID: "a1", EntryID: "e1", FNumber: &nan2}

	// NaN compares equal by bit pattern, so a store round trip does not
	// look like a modification.
	assert.True(t, a.Equal(&b))
}

func TestAlbumEntryEqualNil(t *testing.T) {
	e := AlbumEntry{AlbumID: "a1", EntryID: "e1"}
	assert.False(t, e.Equal(nil))
	assert.True(t, (*AlbumEntry)(nil).Equal(nil))
}

func TestSortAlbumsForDisplay(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	albums := []AlbumDetails{
		{ID: "undated"},
		{ID: "old", Timestamp: &t1},
		{ID: "new", Timestamp: &t2},
	}
	SortAlbumsForDisplay(albums)

	assert.Equal(t, "new", albums[0].ID)
	assert.Equal(t, "old", albums[1].ID)
	assert.Equal(t, "undated", albums[2].ID)
}

func TestSortAlbumsForDisplayStableTies(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	albums := []AlbumDetails{
		{ID: "first", Timestamp: &t1},
		{ID: "second", Timestamp: &t1},
	}
	SortAlbumsForDisplay(albums)

	assert.Equal(t, "first", albums[0].ID)
	assert.Equal(t, "second", albums[1].ID)
}
