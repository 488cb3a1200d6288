package olcaipc

import (
	"context"
	"io"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/Fergus4506/olca-ipc-container/internal/ipc"
	"github.com/Fergus4506/olca-ipc-container/internal/jsonrpc"
	"github.com/Fergus4506/olca-ipc-container/internal/olcaipc/calc"
	"github.com/Fergus4506/olca-ipc-container/internal/olcaipc/conf"
	"github.com/Fergus4506/olca-ipc-container/internal/olcaipc/http"
	"github.com/Fergus4506/olca-ipc-container/pkg/config"
)

// Manager wires the services of one olcaipc run.
type Manager struct {
	conf *conf.Config
	cm   *config.Manager
	live *conf.Live

	// Services
	transport *ipc.HTTPTransport
	invoker   *ipc.Invoker
	client    *ipc.Client
	calc      *calc.Service
	http      *http.Service
}

// New loads the configuration; cmdConf holds command line overrides keyed by
// config key.
func New(configPath string, cmdConf map[string]any) (*Manager, error) {
	c, cm, err := conf.Load(configPath, cmdConf)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(c, cm), nil
}

func NewWithConfig(c *conf.Config, cm *config.Manager) *Manager {
	m := &Manager{
		conf: c,
		cm:   cm,
		live: conf.NewLive(c),
	}
	m.transport = ipc.NewHTTPTransport(c.GetEndpoint(), c.GetTimeout(), nil)
	m.invoker = ipc.NewInvoker(m.transport)
	m.client = ipc.NewClient(m.transport)
	m.calc = calc.NewService(m.live, m.client)
	return m
}

// Calls builds one data/get call per configured query, ids counting from 1.
func (m *Manager) Calls() []ipc.Call {
	calls := make([]ipc.Call, 0, len(m.conf.Queries))
	for i, q := range m.conf.Queries {
		calls = append(calls, ipc.Call{
			Label: q.Label,
			Request: jsonrpc.NewRequest(int64(i+1), ipc.MethodDataGet, map[string]any{
				"@type": q.Type,
				"@id":   q.ID,
			}),
		})
	}
	return calls
}

// CommandFind fetches every configured entity concurrently and writes the
// report to w. Failed calls are reported, not returned; the error is only
// about writing the report.
func (m *Manager) CommandFind(ctx context.Context, w io.Writer) error {
	calls := m.Calls()
	log.Info().Str("endpoint", m.transport.Endpoint()).Int("calls", len(calls)).Msg("sending queries")

	batch := m.invoker.Invoke(ctx, calls...)

	if failed := batch.Failed(); failed > 0 {
		log.Warn().Int("failed", failed).Int("total", len(batch)).Msg("some queries failed")
	}
	return ipc.Reporter{ShowResult: m.conf.ShowResult}.Report(w, batch)
}

// CommandHTTPServer serves the calculation proxy until ctx is done.
func (m *Manager) CommandHTTPServer(ctx context.Context) error {
	m.http = http.NewService(m.live, m.calc, m.invoker)

	if m.cm != nil {
		m.cm.Watch(m.reloadConfig)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return m.http.Stop()
	}
}

func (m *Manager) reloadConfig(event fsnotify.Event) {
	fresh := &conf.Config{}
	if err := m.cm.Reload(fresh); err != nil {
		log.Error().Err(err).Str("file", event.Name).Msg("reload config failed")
		return
	}
	if err := fresh.Validate(); err != nil {
		log.Error().Err(err).Str("file", event.Name).Msg("reloaded config is invalid, keeping the old one")
		return
	}
	old := m.live.Load()
	if fresh.GetEndpoint() != old.GetEndpoint() || fresh.GetHTTPAddr() != old.GetHTTPAddr() {
		log.Warn().Msg("endpoint and http_addr changes take effect after a restart")
	}
	m.live.Store(fresh)
	log.Info().
		Str("product_system", fresh.GetProductSystem()).
		Str("impact_method", fresh.GetImpactMethod()).
		Str("impact_filter", fresh.GetImpactFilter()).
		Msg("calculation settings reloaded")
}
