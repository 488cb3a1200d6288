package calc

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Fergus4506/olca-ipc-container/internal/errors"
	"github.com/Fergus4506/olca-ipc-container/internal/ipc"
)

const (
	TypeProductSystem = "ProductSystem"
	TypeImpactMethod  = "ImpactMethod"

	// The product system exposes factor, distance and load, in that order.
	requiredParameters = 3
)

type Config interface {
	GetProductSystem() string
	GetImpactMethod() string
	GetImpactFilter() string
	GetPollInterval() time.Duration
}

// IPC is the part of the openLCA IPC client a calculation needs.
type IPC interface {
	GetByName(ctx context.Context, entityType, name string) (*ipc.Entity, error)
	GetParameters(ctx context.Context, entityType, id string) ([]ipc.ParameterRedef, error)
	Calculate(ctx context.Context, setup ipc.CalculationSetup) (*ipc.ResultState, error)
	WaitUntilReady(ctx context.Context, resultID string, interval time.Duration) (*ipc.ResultState, error)
	TotalImpacts(ctx context.Context, resultID string) ([]ipc.ImpactValue, error)
	Dispose(ctx context.Context, resultID string) error
}

type Input struct {
	Distance float64 `json:"distance"`
	Factor   float64 `json:"factor"`
	Load     float64 `json:"load"`
	Amount   float64 `json:"amount"`
}

type Impact struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
}

type Service struct {
	conf Config
	ipc  IPC
}

func NewService(conf Config, ipc IPC) *Service {
	return &Service{
		conf: conf,
		ipc:  ipc,
	}
}

// Calculate runs the configured product system with the redefined parameters
// and returns the impacts whose category matches the configured filter. The
// result is disposed on the server whatever happens after it was created. A
// dispose failure is only logged on success and joined to the error otherwise.
func (s *Service) Calculate(ctx context.Context, in Input) (_ []Impact, err error) {
	model, err := s.ipc.GetByName(ctx, TypeProductSystem, s.conf.GetProductSystem())
	if err != nil {
		return nil, err
	}
	method, err := s.ipc.GetByName(ctx, TypeImpactMethod, s.conf.GetImpactMethod())
	if err != nil {
		return nil, err
	}

	parameters, err := s.ipc.GetParameters(ctx, TypeProductSystem, model.ID)
	if err != nil {
		return nil, err
	}
	if len(parameters) < requiredParameters {
		return nil, errors.MissingParameters(requiredParameters, len(parameters))
	}

	methodRef := method.Ref()
	setup := ipc.CalculationSetup{
		Target:       model.Ref(),
		Amount:       in.Amount,
		ImpactMethod: &methodRef,
		Parameters: []ipc.ParameterRedef{
			redef(parameters[0], in.Factor),
			redef(parameters[1], in.Distance),
			redef(parameters[2], in.Load),
		},
	}

	state, err := s.ipc.Calculate(ctx, setup)
	if err != nil {
		return nil, err
	}
	defer func() {
		// The request context may already be done; disposal must still reach
		// the server.
		disposeErr := s.ipc.Dispose(context.WithoutCancel(ctx), state.ID)
		if disposeErr == nil {
			return
		}
		log.Warn().Err(disposeErr).Str("result", state.ID).Msg("dispose result failed")
		if err != nil {
			err = errors.JoinErrors(err, disposeErr)
		}
	}()

	if _, err := s.ipc.WaitUntilReady(ctx, state.ID, s.conf.GetPollInterval()); err != nil {
		return nil, err
	}

	values, err := s.ipc.TotalImpacts(ctx, state.ID)
	if err != nil {
		return nil, err
	}

	filter := s.conf.GetImpactFilter()
	impacts := make([]Impact, 0, len(values))
	for _, v := range values {
		if !strings.Contains(v.ImpactCategory.Name, filter) {
			continue
		}
		impacts = append(impacts, Impact{
			Category: v.ImpactCategory.Name,
			Value:    v.Amount,
			Unit:     v.ImpactCategory.RefUnit,
		})
	}

	log.Debug().Int("impacts", len(impacts)).Str("result", state.ID).Msg("calculation finished")
	return impacts, nil
}

func redef(p ipc.ParameterRedef, value float64) ipc.ParameterRedef {
	return ipc.ParameterRedef{Name: p.Name, Value: value, Context: p.Context}
}
