// Package domain contains the core entities cached by the Shoebox client.
package domain

import (
	"math"
	"slices"
	"sort"
	"time"
)

// ExternalRefLabel is the album label whose value is surfaced as ExternalRef.
const ExternalRefLabel = "fnch-competition_id"

// AlbumDetails is the locally cached summary of one album.
//
// Version is an opaque content hash assigned by the server. Two records with
// the same ID and the same Version are byte-for-byte equal and never
// re-fetched.
type AlbumDetails struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Version     string      `json:"version"`
	Timestamp   *time.Time  `json:"timestamp,omitempty"`
	EntryCount  int         `json:"entry_count"`
	ExternalRef string      `json:"external_ref,omitempty"`
	TitleEntry  *AlbumEntry `json:"title_entry,omitempty"`
}

// AlbumEntry is one photo or video within an album. AlbumID and EntryID
// together form the unique key.
type AlbumEntry struct {
	AlbumID         string         `json:"album_id"`
	EntryID         string         `json:"entry_id"`
	Name            string         `json:"name"`
	TargetWidth     int            `json:"target_width"`
	TargetHeight    int            `json:"target_height"`
	Created         *time.Time     `json:"created,omitempty"`
	Keywords        []string       `json:"keywords,omitempty"`
	CameraModel     string         `json:"camera_model,omitempty"`
	ExposureTime    *time.Duration `json:"exposure_time,omitempty,format:nano"`
	FNumber         *float64       `json:"f_number,omitempty"`
	FocalLength35   *float64       `json:"focal_length_35,omitempty"`
	ISOSpeedRatings *float64       `json:"iso_speed_ratings,omitempty"`
}

// Key returns the composite store key of the entry.
func (e *AlbumEntry) Key() string {
	return e.AlbumID + "/" + e.EntryID
}

// AspectRatio returns width divided by height.
func (e *AlbumEntry) AspectRatio() float64 {
	return float64(e.TargetWidth) / float64(e.TargetHeight)
}

// Equal reports full structural equality. This decides whether a fetched
// entry differs from the cached one and must be persisted, so every field
// participates. Floats are compared by bit pattern, which keeps NaN values
// stable across store round trips.
func (e *AlbumEntry) Equal(o *AlbumEntry) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.AlbumID == o.AlbumID &&
		e.EntryID == o.EntryID &&
		e.Name == o.Name &&
		e.TargetWidth == o.TargetWidth &&
		e.TargetHeight == o.TargetHeight &&
		timeEqual(e.Created, o.Created) &&
		slices.Equal(e.Keywords, o.Keywords) &&
		e.CameraModel == o.CameraModel &&
		durationEqual(e.ExposureTime, o.ExposureTime) &&
		floatEqual(e.FNumber, o.FNumber) &&
		floatEqual(e.FocalLength35, o.FocalLength35) &&
		floatEqual(e.ISOSpeedRatings, o.ISOSpeedRatings)
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func durationEqual(a, b *time.Duration) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func floatEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return math.Float64bits(*a) == math.Float64bits(*b)
}

// SortAlbumsForDisplay orders albums by timestamp, newest first. Albums
// without a timestamp sort last. Ties keep their given order, which for
// synced data is server order.
func SortAlbumsForDisplay(albums []AlbumDetails) {
	sort.SliceStable(albums, func(i, j int) bool {
		ti, tj := albums[i].Timestamp, albums[j].Timestamp
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		return ti.After(*tj)
	})
}
