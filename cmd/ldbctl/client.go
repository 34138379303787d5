package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// client is a thin wrapper over the LDB control surface's plain HTTP
// endpoints, used by every subcommand below.
type client struct {
	addr string
	http *http.Client
}

func newClient(addr string) *client {
	return &client{addr: addr, http: &http.Client{Timeout: 5 * time.Second}}
}

func (c *client) stats() (map[string]interface{}, error) {
	resp, err := c.http.Get(c.addr + "/stats")
	if err != nil {
		return nil, fmt.Errorf("ldbctl: GET /stats: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ldbctl: /stats returned %s", resp.Status)
	}
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ldbctl: decode /stats: %w", err)
	}
	return out, nil
}

func (c *client) reset() error {
	resp, err := c.http.Post(c.addr+"/reset", "application/json", nil)
	if err != nil {
		return fmt.Errorf("ldbctl: POST /reset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("ldbctl: /reset returned %s", resp.Status)
	}
	return nil
}

func (c *client) recent() ([]interface{}, error) {
	resp, err := c.http.Get(c.addr + "/recent")
	if err != nil {
		return nil, fmt.Errorf("ldbctl: GET /recent: %w", err)
	}
	defer resp.Body.Close()
	var out []interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ldbctl: decode /recent: %w", err)
	}
	return out, nil
}
