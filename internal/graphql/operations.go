package graphql

import (
	"context"
	"math"
	"time"

	"github.com/shoeboxapp/shoebox-client/internal/domain"
)

const allAlbumVersionsDocument = `query AllAlbumVersions {
  listAlbums {
    id
    version
  }
}`

const entryFields = `id
name
targetWidth
targetHeight
created
keywords
cameraModel
exposureTime
fNumber
focalLength35
isoSpeedRatings`

const getAlbumDetailsDocument = `query GetAlbumDetails($albumId: ID!) {
  albumById(id: $albumId) {
    id
    name
    version
    albumTime
    entryCount
    labels {
      labelName
      labelValue
    }
    titleEntry {
      ` + entryFields + `
    }
  }
}`

const albumContentDocument = `query AlbumContent($albumId: ID!) {
  albumById(id: $albumId) {
    entries {
      ` + entryFields + `
    }
  }
}`

type albumVariables struct {
	AlbumID string `json:"albumId"`
}

// AlbumVersion is one row of the server's cheap version listing.
type AlbumVersion struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

type wireLabel struct {
	LabelName  string `json:"labelName"`
	LabelValue string `json:"labelValue"`
}

type wireEntry struct {
	ID              string     `json:"id"`
	Name            *string    `json:"name"`
	TargetWidth     *int       `json:"targetWidth"`
	TargetHeight    *int       `json:"targetHeight"`
	Created         *time.Time `json:"created"`
	Keywords        []string   `json:"keywords"`
	CameraModel     *string    `json:"cameraModel"`
	ExposureTime    *float64   `json:"exposureTime"`
	FNumber         *float64   `json:"fNumber"`
	FocalLength35   *float64   `json:"focalLength35"`
	ISOSpeedRatings *float64   `json:"isoSpeedRatings"`
}

type wireAlbum struct {
	ID         string      `json:"id"`
	Name       *string     `json:"name"`
	Version    string      `json:"version"`
	AlbumTime  *time.Time  `json:"albumTime"`
	EntryCount *int        `json:"entryCount"`
	Labels     []wireLabel `json:"labels"`
	TitleEntry *wireEntry  `json:"titleEntry"`
	Entries    []wireEntry `json:"entries"`
}

// AllAlbumVersions lists every album's (id, version) pair in one round trip.
// Order is the server's display order.
func (c *Client) AllAlbumVersions(ctx context.Context, token string) ([]AlbumVersion, error) {
	var data struct {
		ListAlbums []AlbumVersion `json:"listAlbums"`
	}
	if err := c.query(ctx, token, "AllAlbumVersions", allAlbumVersionsDocument, nil, &data); err != nil {
		return nil, err
	}
	return data.ListAlbums, nil
}

// GetAlbumDetails fetches the full record for one album. A nil result with a
// nil error means the server does not know the album.
func (c *Client) GetAlbumDetails(ctx context.Context, token, albumID string) (*domain.AlbumDetails, error) {
	var data struct {
		AlbumByID *wireAlbum `json:"albumById"`
	}
	if err := c.query(ctx, token, "GetAlbumDetails", getAlbumDetailsDocument, albumVariables{AlbumID: albumID}, &data); err != nil {
		return nil, err
	}
	if data.AlbumByID == nil {
		return nil, nil
	}
	return data.AlbumByID.toDomain(), nil
}

// AlbumContent fetches every entry of one album in server order. An unknown
// album yields an empty slice.
func (c *Client) AlbumContent(ctx context.Context, token, albumID string) ([]domain.AlbumEntry, error) {
	var data struct {
		AlbumByID *wireAlbum `json:"albumById"`
	}
	if err := c.query(ctx, token, "AlbumContent", albumContentDocument, albumVariables{AlbumID: albumID}, &data); err != nil {
		return nil, err
	}
	if data.AlbumByID == nil {
		return nil, nil
	}
	entries := make([]domain.AlbumEntry, len(data.AlbumByID.Entries))
	for i, e := range data.AlbumByID.Entries {
		entries[i] = e.toDomain(albumID)
	}
	return entries, nil
}

func (a *wireAlbum) toDomain() *domain.AlbumDetails {
	album := &domain.AlbumDetails{
		ID:        a.ID,
		Version:   a.Version,
		Timestamp: a.AlbumTime,
	}
	if a.Name != nil {
		album.Name = *a.Name
	}
	if a.EntryCount != nil {
		album.EntryCount = *a.EntryCount
	}
	for _, label := range a.Labels {
		if label.LabelName == domain.ExternalRefLabel {
			album.ExternalRef = label.LabelValue
		}
	}
	if a.TitleEntry != nil {
		title := a.TitleEntry.toDomain(a.ID)
		album.TitleEntry = &title
	}
	return album
}

func (e *wireEntry) toDomain(albumID string) domain.AlbumEntry {
	entry := domain.AlbumEntry{
		AlbumID:         albumID,
		EntryID:         e.ID,
		Created:         e.Created,
		Keywords:        e.Keywords,
		FNumber:         e.FNumber,
		FocalLength35:   e.FocalLength35,
		ISOSpeedRatings: e.ISOSpeedRatings,
	}
	if e.Name != nil {
		entry.Name = *e.Name
	}
	if e.TargetWidth != nil {
		entry.TargetWidth = *e.TargetWidth
	}
	if e.TargetHeight != nil {
		entry.TargetHeight = *e.TargetHeight
	}
	if e.CameraModel != nil {
		entry.CameraModel = *e.CameraModel
	}
	if e.ExposureTime != nil {
		d := time.Duration(math.Round(*e.ExposureTime * float64(time.Second)))
		entry.ExposureTime = &d
	}
	return entry
}
