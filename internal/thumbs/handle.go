package thumbs

import (
	"sync"

	"github.com/shoeboxapp/shoebox-client/internal/id"
)

// Handle is a shared, revocable reference to one cached thumbnail. Revoking
// frees the in-memory bytes only; the persistent blob cache keeps its copy.
type Handle struct {
	id          string
	contentType string

	mu   sync.RWMutex
	data []byte
}

func newHandle(contentType string, data []byte) *Handle {
	return &Handle{
		id:          id.MustGenerate("thumb"),
		contentType: contentType,
		data:        data,
	}
}

// ID returns the handle's resource identifier.
func (h *Handle) ID() string {
	return h.id
}

// ContentType returns the thumbnail's MIME type.
func (h *Handle) ContentType() string {
	return h.contentType
}

// Bytes returns the thumbnail data, or nil after Revoke.
func (h *Handle) Bytes() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.data
}

// Revoke drops the in-memory bytes. Outstanding Bytes results stay valid;
// later calls return nil.
func (h *Handle) Revoke() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.data = nil
}
