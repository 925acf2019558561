package graphql

import (
	"context"
	"encoding/json/v2"
	"net/http"

	"github.com/shoeboxapp/shoebox-client/internal/errors"
)

// ClientProperties is the unauthenticated client configuration served by the
// photo service.
type ClientProperties struct {
	GoogleClientID string `json:"googleClientId"`
}

// FetchSettings retrieves the service's client configuration. It needs no
// session and is typically the first call after startup.
func (c *Client) FetchSettings(ctx context.Context) (*ClientProperties, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/config", nil)
	if err != nil {
		return nil, errors.Validationf("create settings request: %v", err).WithCause(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Transportf("fetch settings: %v", err).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Transportf("settings returned status %d", resp.StatusCode)
	}

	var props ClientProperties
	if err := json.UnmarshalRead(resp.Body, &props); err != nil {
		return nil, errors.Transportf("decode settings: %v", err).WithCause(err)
	}
	return &props, nil
}
