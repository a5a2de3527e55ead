package emsquery

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/emsquery/catalog"
	"github.com/hugr-lab/emsquery/table"
	"github.com/hugr-lab/emsquery/transport"
)

// Client binds a transport to one EMS system and database. It owns the field
// directory and the discrete code cache shared by the queries it creates.
//
// A Client and its queries are not safe for concurrent use.
type Client struct {
	cfg          ClientConfig
	requester    transport.Requester
	directory    *catalog.RemoteDirectory
	codes        *catalog.CodeCache
	materializer *table.Materializer
	logger       *slog.Logger
}

// NewClient creates a client talking HTTP to the configured API.
// No network activity happens until the first lookup or query.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	if cfg.User == "" || cfg.Password == "" {
		return nil, fmt.Errorf("%w: user and password are required", ErrInvalidConfig)
	}

	tr, err := transport.NewClient(transport.Config{
		BaseURL:           cfg.BaseURL,
		User:              cfg.User,
		Password:          cfg.Password,
		HTTPClient:        cfg.HTTPClient,
		Timeout:           cfg.Timeout,
		IgnoreTLSErrors:   cfg.IgnoreTLSErrors,
		MaxReconnects:     cfg.MaxReconnects,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return newClient(cfg, tr), nil
}

// NewClientWithRequester creates a client on top of a caller-supplied
// transport. Credentials and HTTP settings in cfg are ignored.
func NewClientWithRequester(cfg ClientConfig, requester transport.Requester) (*Client, error) {
	if requester == nil {
		return nil, fmt.Errorf("%w: requester is nil", ErrInvalidConfig)
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return newClient(cfg, requester), nil
}

func newClient(cfg ClientConfig, requester transport.Requester) *Client {
	dir := catalog.NewRemoteDirectory(requester, cfg.SystemID, cfg.DatabaseID, cfg.Logger)
	codes := catalog.NewCodeCache(dir)
	return &Client{
		cfg:          cfg,
		requester:    requester,
		directory:    dir,
		codes:        codes,
		materializer: table.NewMaterializer(codes, cfg.Allocator, cfg.Logger),
		logger:       cfg.Logger,
	}
}

// Directory returns the field directory of the configured database.
func (c *Client) Directory() catalog.Directory {
	return c.directory
}

// Allocator returns the allocator backing query results.
func (c *Client) Allocator() memory.Allocator {
	return c.cfg.Allocator
}

// NewQuery starts a flight query with default settings.
func (c *Client) NewQuery() *FltQuery {
	q := &FltQuery{client: c}
	q.Reset()
	return q
}

// System describes an EMS system reachable with the client's credentials.
type System struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Systems lists the EMS systems available to the authenticated user.
func (c *Client) Systems(ctx context.Context) ([]System, error) {
	resp, err := c.requester.Request(ctx, transport.Get(transport.RouteSystems))
	if err != nil {
		return nil, fmt.Errorf("list systems: %w", err)
	}
	var systems []System
	if err := resp.Decode(&systems); err != nil {
		return nil, err
	}
	return systems, nil
}

// SaveMetadata writes the fields, searches and code tables resolved so far.
func (c *Client) SaveMetadata(w io.Writer) error {
	s := c.directory.Snapshot()
	for id, entries := range c.codes.Snapshot() {
		if _, ok := s.Values[id]; !ok {
			s.Values[id] = entries
		}
	}
	return catalog.SaveSnapshot(w, s)
}

// LoadMetadata seeds the directory and code cache from saved metadata.
// Later lookups that miss still go to the service.
func (c *Client) LoadMetadata(r io.Reader) error {
	s, err := catalog.LoadSnapshot(r)
	if err != nil {
		return err
	}
	c.directory.Restore(s)
	c.codes.Restore(s.Values)
	c.logger.Debug("Loaded metadata", "fields", len(s.Fields), "code_tables", len(s.Values))
	return nil
}
