package conf

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Fergus4506/olca-ipc-container/internal/errors"
	"github.com/Fergus4506/olca-ipc-container/internal/ipc"
)

const (
	DefaultEndpoint      = ipc.DefaultEndpoint
	DefaultHTTPAddr      = "0.0.0.0:5000"
	DefaultTimeout       = ipc.DefaultTimeout
	DefaultPollInterval  = ipc.DefaultPollInterval
	DefaultProductSystem = "廚餘處理量"
	DefaultImpactMethod  = "IPCC 2021 AR6"
	DefaultImpactFilter  = "GWP"
)

type Config struct {
	Endpoint      string        `mapstructure:"endpoint" json:"endpoint"`
	Timeout       time.Duration `mapstructure:"timeout" json:"timeout"`
	HTTPAddr      string        `mapstructure:"http_addr" json:"http_addr"`
	PollInterval  time.Duration `mapstructure:"poll_interval" json:"poll_interval"`
	ProductSystem string        `mapstructure:"product_system" json:"product_system"`
	ImpactMethod  string        `mapstructure:"impact_method" json:"impact_method"`
	ImpactFilter  string        `mapstructure:"impact_filter" json:"impact_filter"`
	ShowResult    bool          `mapstructure:"show_result" json:"show_result"`
	Queries       []Query       `mapstructure:"queries" json:"queries"`
}

// Query names one entity fetched by the find command.
type Query struct {
	Label string `mapstructure:"label" json:"label"`
	Type  string `mapstructure:"type" json:"type"`
	ID    string `mapstructure:"id" json:"id"`
}

// DefaultQueries are the two smoke-test entities of the bundled database.
var DefaultQueries = []Query{
	{Label: "Project", Type: "Project", ID: "0a36b0b4-6836-4b4e-a275-a51b7f9f2633"},
	{Label: "ProductSystem", Type: "ProductSystem", ID: "724bff37-cc16-4af4-a059-a1948f61af93"},
}

var Defaults = map[string]any{
	"endpoint":       DefaultEndpoint,
	"timeout":        DefaultTimeout.String(),
	"http_addr":      DefaultHTTPAddr,
	"poll_interval":  DefaultPollInterval.String(),
	"product_system": DefaultProductSystem,
	"impact_method":  DefaultImpactMethod,
	"impact_filter":  DefaultImpactFilter,
	"show_result":    true,
	"queries":        defaultQueryMaps(),
}

func defaultQueryMaps() []map[string]any {
	queries := make([]map[string]any, 0, len(DefaultQueries))
	for _, q := range DefaultQueries {
		queries = append(queries, map[string]any{"label": q.Label, "type": q.Type, "id": q.ID})
	}
	return queries
}

// ParseQuery parses "Type:UUID" or "Label=Type:UUID".
func ParseQuery(s string) (Query, error) {
	label, rest, found := strings.Cut(s, "=")
	if !found {
		rest = label
		label = ""
	}
	typ, id, found := strings.Cut(rest, ":")
	if !found {
		return Query{}, errors.InvalidQuery(s, fmt.Errorf("want Type:UUID"))
	}
	q := Query{Label: strings.TrimSpace(label), Type: strings.TrimSpace(typ), ID: strings.TrimSpace(id)}
	if err := q.Validate(); err != nil {
		return Query{}, err
	}
	if q.Label == "" {
		q.Label = q.Type
	}
	return q, nil
}

func (q Query) Validate() error {
	if q.Type == "" {
		return errors.InvalidQuery(q.ID, fmt.Errorf("empty @type"))
	}
	if _, err := uuid.Parse(q.ID); err != nil {
		return errors.InvalidQuery(q.Type+":"+q.ID, err)
	}
	return nil
}

// Validate checks the config and fills empty query labels.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return errors.InvalidEndpoint(c.Endpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.InvalidEndpoint(c.Endpoint, fmt.Errorf("want an absolute http(s) url"))
	}
	if len(c.Queries) == 0 {
		return errors.Config("no queries configured", nil)
	}
	for i := range c.Queries {
		if err := c.Queries[i].Validate(); err != nil {
			return err
		}
		if c.Queries[i].Label == "" {
			c.Queries[i].Label = c.Queries[i].Type
		}
	}
	return nil
}

func (c *Config) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

func (c *Config) GetTimeout() time.Duration {
	return c.Timeout
}

func (c *Config) GetHTTPAddr() string {
	if c.HTTPAddr == "" {
		return DefaultHTTPAddr
	}
	return c.HTTPAddr
}

func (c *Config) GetPollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return c.PollInterval
}

func (c *Config) GetProductSystem() string {
	return c.ProductSystem
}

func (c *Config) GetImpactMethod() string {
	return c.ImpactMethod
}

func (c *Config) GetImpactFilter() string {
	return c.ImpactFilter
}
