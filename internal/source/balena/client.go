package balena

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/evanofslack/fleet-dns-sync/internal/metrics"
	"github.com/evanofslack/fleet-dns-sync/internal/source"
)

const devicesPath = "/v6/device?$select=uuid,ip_address"

type Httper interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a session against the balena API. Login must succeed before
// Devices returns anything.
type Client struct {
	baseURL  string
	token    string
	http     Httper
	metrics  *metrics.Metrics
	loggedIn bool
}

func New(baseURL, token string, httper Httper, metrics *metrics.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    httper,
		metrics: metrics,
	}
}

// Login checks the token against the whoami endpoint. A rejected token is
// reported as false with a nil error; transport failures return an error.
func (c *Client) Login(ctx context.Context) (bool, error) {
	c.loggedIn = false

	resp, err := c.get(ctx, "/user/v1/whoami")
	if err != nil {
		c.metrics.IncFleetRequest("login", false)
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		c.metrics.IncFleetRequest("login", false)
		return false, nil
	default:
		c.metrics.IncFleetRequest("login", false)
		return false, fmt.Errorf("balena whoami request, status=%d", resp.StatusCode)
	}

	var who whoami
	if err := json.NewDecoder(resp.Body).Decode(&who); err != nil {
		c.metrics.IncFleetRequest("login", false)
		return false, fmt.Errorf("parse balena whoami, err=%w", err)
	}

	c.metrics.IncFleetRequest("login", true)
	slog.Debug("Logged in to balena", "user", who.Username)
	c.loggedIn = true
	return true, nil
}

func (c *Client) Devices(ctx context.Context) ([]source.Device, error) {
	if !c.loggedIn {
		return nil, source.ErrNotLoggedIn
	}

	resp, err := c.get(ctx, devicesPath)
	if err != nil {
		c.metrics.IncFleetRequest("read", false)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.metrics.IncFleetRequest("read", false)
		c.loggedIn = false
		return nil, source.ErrNotLoggedIn
	}
	if resp.StatusCode != http.StatusOK {
		c.metrics.IncFleetRequest("read", false)
		return nil, fmt.Errorf("balena device request, status=%d", resp.StatusCode)
	}

	var list deviceList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		c.metrics.IncFleetRequest("read", false)
		return nil, fmt.Errorf("parse balena devices, err=%w", err)
	}
	c.metrics.IncFleetRequest("read", true)

	devices := make([]source.Device, 0, len(list.D))
	for _, d := range list.D {
		dev := source.Device{UUID: d.UUID}
		if d.IPAddress != nil {
			dev.IPAddress = *d.IPAddress
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	return c.http.Do(req)
}
