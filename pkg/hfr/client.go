// Package hfr fetches the two paginated feeds of the Health Facility
// Registry: the facility list and the administrative hierarchy.
package hfr

import (
	"context"
	"fmt"

	"github.com/moh-tz/hfrsync/internal/transport"
	"github.com/moh-tz/hfrsync/pkg/errors"
)

// Feed names.
const (
	FeedFacility  = "facility"
	FeedHierarchy = "hierarchy"
)

// Config holds the feed endpoints and credentials. Each URL is completed by
// appending the page number.
type Config struct {
	FacilitiesURL string
	HierarchyURL  string
	User          string
	Password      string
}

// Client fetches single feed pages. It does not retry.
type Client struct {
	cfg  Config
	http *transport.Client
}

// NewClient returns a feed client for cfg.
func NewClient(cfg Config, opts ...transport.Option) *Client {
	return &Client{
		cfg:  cfg,
		http: transport.New("hfr", transport.NewBasicAuth(cfg.User, cfg.Password), opts...),
	}
}

// Facilities fetches one page of the facility feed.
func (c *Client) Facilities(ctx context.Context, page int) (*Page, error) {
	return c.page(ctx, c.cfg.FacilitiesURL, page)
}

// Hierarchy fetches one page of the administrative hierarchy feed.
func (c *Client) Hierarchy(ctx context.Context, page int) (*Page, error) {
	return c.page(ctx, c.cfg.HierarchyURL, page)
}

func (c *Client) page(ctx context.Context, base string, page int) (*Page, error) {
	if base == "" {
		return nil, errors.NewConfigError("hfr", "feed URL is not set", nil)
	}
	var p Page
	if err := c.http.GetJSON(ctx, fmt.Sprintf("%s%d", base, page), &p); err != nil {
		return nil, err
	}
	return &p, nil
}
