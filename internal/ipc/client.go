package ipc

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Fergus4506/olca-ipc-container/internal/errors"
	"github.com/Fergus4506/olca-ipc-container/internal/jsonrpc"
)

// openLCA IPC methods
const (
	MethodDataGet           = "data/get"
	MethodDataGetParameters = "data/get/parameters"
	MethodResultCalculate   = "result/calculate"
	MethodResultState       = "result/state"
	MethodResultImpacts     = "result/total-impacts"
	MethodResultDispose     = "result/dispose"
)

const DefaultPollInterval = 500 * time.Millisecond

// Ref is an openLCA reference to a stored or transient entity.
type Ref struct {
	Type     string `json:"@type,omitempty"`
	ID       string `json:"@id,omitempty"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
	RefUnit  string `json:"refUnit,omitempty"`
}

// Entity is the subset of a data/get reply the service reads.
type Entity struct {
	Type        string `json:"@type"`
	ID          string `json:"@id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (e Entity) Ref() Ref {
	return Ref{Type: e.Type, ID: e.ID, Name: e.Name}
}

type ParameterRedef struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Context *Ref    `json:"context,omitempty"`
}

type CalculationSetup struct {
	Target       Ref              `json:"target"`
	Amount       float64          `json:"amount"`
	ImpactMethod *Ref             `json:"impactMethod,omitempty"`
	Parameters   []ParameterRedef `json:"parameters,omitempty"`
}

type ResultState struct {
	ID          string `json:"@id"`
	Error       string `json:"error,omitempty"`
	IsReady     bool   `json:"isReady"`
	IsScheduled bool   `json:"isScheduled"`
	Time        int64  `json:"time,omitempty"`
}

type ImpactValue struct {
	ImpactCategory Ref     `json:"impactCategory"`
	Amount         float64 `json:"amount"`
}

// Client is a typed openLCA IPC client. Request ids are unique per client.
type Client struct {
	transport Transport
	lastID    atomic.Int64
}

func NewClient(transport Transport) *Client {
	return &Client{transport: transport}
}

// NextID returns a fresh request id.
func (c *Client) NextID() int64 {
	return c.lastID.Add(1)
}

// Call sends method and decodes the result into v. A reply carrying an error
// member is returned as an rpc AppError wrapping the jsonrpc.Error.
func (c *Client) Call(ctx context.Context, method string, params map[string]any, v any) error {
	req := jsonrpc.NewRequest(c.NextID(), method, params)
	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return err
	}
	if resp.Failed() {
		return errors.RPC(method, resp.Error)
	}
	if v == nil {
		return nil
	}
	if err := resp.Decode(v); err != nil {
		return errors.InvalidEnvelope(err)
	}
	return nil
}

// Get fetches an entity by type and id.
func (c *Client) Get(ctx context.Context, entityType, id string) (*Entity, error) {
	return c.get(ctx, entityType, id, map[string]any{"@type": entityType, "@id": id})
}

// GetByName fetches the first entity of a type with the given name.
func (c *Client) GetByName(ctx context.Context, entityType, name string) (*Entity, error) {
	return c.get(ctx, entityType, name, map[string]any{"@type": entityType, "name": name})
}

func (c *Client) get(ctx context.Context, entityType, key string, params map[string]any) (*Entity, error) {
	var entity *Entity
	if err := c.Call(ctx, MethodDataGet, params, &entity); err != nil {
		return nil, err
	}
	if entity == nil || entity.ID == "" {
		return nil, errors.EntityNotFound(entityType, key)
	}
	return entity, nil
}

// GetParameters returns the parameters of a model, as redefinitions for a
// product system.
func (c *Client) GetParameters(ctx context.Context, entityType, id string) ([]ParameterRedef, error) {
	var params []ParameterRedef
	err := c.Call(ctx, MethodDataGetParameters, map[string]any{"@type": entityType, "@id": id}, &params)
	return params, err
}

func (c *Client) Calculate(ctx context.Context, setup CalculationSetup) (*ResultState, error) {
	params, err := toParams(setup)
	if err != nil {
		return nil, errors.Internal("failed to encode calculation setup", err)
	}
	var state ResultState
	if err := c.Call(ctx, MethodResultCalculate, params, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) State(ctx context.Context, resultID string) (*ResultState, error) {
	var state ResultState
	if err := c.Call(ctx, MethodResultState, resultRef(resultID), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// WaitUntilReady polls the result state every interval until it is ready,
// reports an error, or ctx is done.
func (c *Client) WaitUntilReady(ctx context.Context, resultID string, interval time.Duration) (*ResultState, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		state, err := c.State(ctx, resultID)
		if err != nil {
			return nil, err
		}
		if state.Error != "" {
			return state, errors.CalculationFailed(errors.New(errors.ErrTypeRPC, state.Error, nil, 0))
		}
		if state.IsReady {
			return state, nil
		}
		log.Debug().Str("result", resultID).Msg("result not ready")

		select {
		case <-ctx.Done():
			return state, errors.Transport("wait for result canceled", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) TotalImpacts(ctx context.Context, resultID string) ([]ImpactValue, error) {
	var impacts []ImpactValue
	err := c.Call(ctx, MethodResultImpacts, resultRef(resultID), &impacts)
	return impacts, err
}

func (c *Client) Dispose(ctx context.Context, resultID string) error {
	return c.Call(ctx, MethodResultDispose, resultRef(resultID), nil)
}

func resultRef(id string) map[string]any {
	return map[string]any{"@id": id}
}

func toParams(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
