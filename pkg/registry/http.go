package registry

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/moh-tz/hfrsync/internal/transport"
	"github.com/moh-tz/hfrsync/pkg/constants"
	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/locations"
	"github.com/moh-tz/hfrsync/pkg/logging"
)

const service = "registry"

const listView = "custom:(uuid,display,name,attributes,tags:(uuid,display),parentLocation:(uuid,display))"

// Config holds the registry connection settings.
type Config struct {
	BaseURL  string
	User     string
	Password string
}

// HTTPClient implements Client against the OpenMRS REST API.
type HTTPClient struct {
	baseURL string
	list    *transport.Client
	write   *transport.Client

	listPolicy  transport.Policy
	writePolicy transport.Policy
	attrPolicy  transport.Policy
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithListPolicy sets the retry policy for each listing page.
func WithListPolicy(p transport.Policy) Option {
	return func(c *HTTPClient) { c.listPolicy = p }
}

// WithWritePolicy sets the retry policy for create, rename, reparent and retag.
func WithWritePolicy(p transport.Policy) Option {
	return func(c *HTTPClient) { c.writePolicy = p }
}

// WithAttributePolicy sets the retry policy for attribute lookups and writes.
func WithAttributePolicy(p transport.Policy) Option {
	return func(c *HTTPClient) { c.attrPolicy = p }
}

// WithTransportOptions applies transport options to both underlying clients.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(c *HTTPClient) {
		for _, o := range opts {
			o(c.list)
			o(c.write)
		}
	}
}

// NewHTTPClient returns a registry client for cfg.
func NewHTTPClient(cfg Config, opts ...Option) *HTTPClient {
	auth := transport.NewBasicAuth(cfg.User, cfg.Password)
	c := &HTTPClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		list:        transport.New(service, auth, transport.WithTimeout(constants.RegistryListTimeout)),
		write:       transport.New(service, auth),
		listPolicy:  transport.DefaultPolicy(constants.RegistryListAttempts),
		writePolicy: transport.DefaultPolicy(constants.RegistryWriteAttempts),
		attrPolicy:  transport.DefaultPolicy(constants.RegistryAttributeAttempts),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) locationURL(id string) string {
	u := c.baseURL + "/" + constants.LocationResourcePath
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

func (c *HTTPClient) retry(ctx context.Context, p transport.Policy, op, id string, fn func(ctx context.Context) error) error {
	logger := logging.FromContext(ctx)
	_, err := transport.Retry(ctx, p, fn, func(attempt int, err error, next time.Duration) {
		evt := logger.Warn()
		if next == 0 {
			evt = logger.Error()
		}
		evt.Err(err).
			Str("operation", op).
			Str("location_id", id).
			Int("attempt", attempt).
			Int("max_attempts", p.Attempts).
			Dur("retry_in", next).
			Msg("Registry call failed")
	})
	return errors.WrapResource(op, "location", id, err)
}

// List pages through every location, 100 per request, following the
// listing's next link. Each page is retried on its own.
func (c *HTTPClient) List(ctx context.Context) ([]*locations.Location, error) {
	logger := logging.FromContext(ctx)
	var all []*locations.Location

	for start := 0; ; start += constants.RegistryPageSize {
		q := url.Values{}
		q.Set("v", listView)
		q.Set("limit", fmt.Sprint(constants.RegistryPageSize))
		q.Set("startIndex", fmt.Sprint(start))
		endpoint := c.locationURL("") + "?" + q.Encode()

		logger.Debug().Int("start_index", start).Msg("Fetching registry locations")

		var page listResponse
		err := c.retry(ctx, c.listPolicy, "list", "", func(ctx context.Context) error {
			page = listResponse{}
			return c.list.GetJSON(ctx, endpoint, &page)
		})
		if err != nil {
			return nil, err
		}

		for _, d := range page.Results {
			all = append(all, d.toLocation())
		}
		if !page.hasNext() || len(page.Results) == 0 {
			break
		}
	}

	logger.Info().Int("count", len(all)).Msg("Fetched registry locations")
	return all, nil
}

// Create posts a new location and returns the uuid the registry assigned.
func (c *HTTPClient) Create(ctx context.Context, loc NewLocation) (string, error) {
	req := createRequest{
		Name:           loc.Name,
		Description:    constants.CreatedDescription,
		ParentLocation: loc.ParentID,
	}
	for _, t := range loc.Tags {
		req.Tags = append(req.Tags, tagName{Name: t.String()})
	}
	for typ, v := range loc.Attributes {
		req.Attributes = append(req.Attributes, attributeWrite{AttributeType: typ, Value: v})
	}

	var resp createResponse
	err := c.retry(ctx, c.writePolicy, "create", loc.Name, func(ctx context.Context) error {
		resp = createResponse{}
		return c.write.PostJSON(ctx, c.locationURL(""), req, &resp)
	})
	if err != nil {
		return "", err
	}
	if resp.UUID == "" {
		return "", errors.NewResourceError("create", "location", loc.Name,
			errors.New("registry returned no uuid"))
	}
	return resp.UUID, nil
}

// Rename sets the location's name.
func (c *HTTPClient) Rename(ctx context.Context, id, name string) error {
	body := map[string]string{"name": name}
	return c.retry(ctx, c.writePolicy, "rename", id, func(ctx context.Context) error {
		return c.write.PostJSON(ctx, c.locationURL(id), body, nil)
	})
}

// Reparent points the location at parentID.
func (c *HTTPClient) Reparent(ctx context.Context, id, parentID string) error {
	body := map[string]ref{"parentLocation": {UUID: parentID}}
	return c.retry(ctx, c.writePolicy, "reparent", id, func(ctx context.Context) error {
		return c.write.PostJSON(ctx, c.locationURL(id), body, nil)
	})
}

// Retag replaces the location's tags.
func (c *HTTPClient) Retag(ctx context.Context, id string, tags []locations.Tag) error {
	names := make([]tagName, 0, len(tags))
	for _, t := range tags {
		names = append(names, tagName{Name: t.String()})
	}
	body := map[string][]tagName{"tags": names}
	return c.retry(ctx, c.writePolicy, "retag", id, func(ctx context.Context) error {
		return c.write.PostJSON(ctx, c.locationURL(id), body, nil)
	})
}

// SetAttribute looks up the location's attribute of attributeType and
// updates it in place, or adds a new attribute when there is none.
func (c *HTTPClient) SetAttribute(ctx context.Context, id, attributeType, value string) error {
	existing, err := c.attributeUUID(ctx, id, attributeType)
	if err != nil {
		return err
	}
	body := map[string][]attributeWrite{
		"attributes": {{UUID: existing, AttributeType: attributeType, Value: value}},
	}
	return c.retry(ctx, c.attrPolicy, "set-attribute", id, func(ctx context.Context) error {
		return c.write.PostJSON(ctx, c.locationURL(id), body, nil)
	})
}

func (c *HTTPClient) attributeUUID(ctx context.Context, id, attributeType string) (string, error) {
	var full locationDTO
	err := c.retry(ctx, c.attrPolicy, "get-attribute", id, func(ctx context.Context) error {
		full = locationDTO{}
		return c.write.GetJSON(ctx, c.locationURL(id)+"?v=full", &full)
	})
	if err != nil {
		return "", err
	}
	for _, a := range full.Attributes {
		if a.Voided || a.AttributeType == nil {
			continue
		}
		if a.AttributeType.UUID == attributeType {
			return a.UUID, nil
		}
	}
	return "", nil
}
