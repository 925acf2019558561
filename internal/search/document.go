package search

import (
	"strings"

	"github.com/shoeboxapp/shoebox-client/internal/domain"
)

// document is the indexed shape of one album entry. Keywords are flattened
// into a single text field; Bleve's analyzer splits them again.
type document struct {
	ID          string
	AlbumID     string
	EntryID     string
	Name        string
	Keywords    string
	CameraModel string
	Created     int64
}

func newDocument(entry *domain.AlbumEntry) *document {
	doc := &document{
		ID:          entry.Key(),
		AlbumID:     entry.AlbumID,
		EntryID:     entry.EntryID,
		Name:        entry.Name,
		Keywords:    strings.Join(entry.Keywords, " "),
		CameraModel: entry.CameraModel,
	}
	if entry.Created != nil {
		doc.Created = entry.Created.UnixMilli()
	}
	return doc
}

// toMap lowercases field names to match the index mapping.
func (d *document) toMap() map[string]any {
	m := map[string]any{
		"album_id": d.AlbumID,
		"entry_id": d.EntryID,
		"name":     d.Name,
	}
	if d.Keywords != "" {
		m["keywords"] = d.Keywords
	}
	if d.CameraModel != "" {
		m["camera_model"] = d.CameraModel
	}
	if d.Created != 0 {
		m["created"] = d.Created
	}
	return m
}
