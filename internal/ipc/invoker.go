package ipc

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/Fergus4506/olca-ipc-container/internal/errors"
	"github.com/Fergus4506/olca-ipc-container/internal/jsonrpc"
)

type Status int

const (
	StatusSuccess Status = iota
	StatusRPCError
	StatusTransportError
	StatusDecodeError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRPCError:
		return "rpc error"
	case StatusTransportError:
		return "transport error"
	case StatusDecodeError:
		return "decode error"
	}
	return "unknown"
}

// Call is one labeled request of a batch.
type Call struct {
	Label   string
	Request *jsonrpc.Request
}

// Outcome is the classified result of one call. Response is nil for
// transport and decode failures.
type Outcome struct {
	Label    string
	Request  *jsonrpc.Request
	Response *jsonrpc.Response
	Status   Status
	Err      error
}

// HasData reports a successful call whose result is not empty.
func (o Outcome) HasData() bool {
	return o.Status == StatusSuccess && o.Response.HasData()
}

// RPCError returns the server error member, if any.
func (o Outcome) RPCError() *jsonrpc.Error {
	if o.Response == nil {
		return nil
	}
	return o.Response.Error
}

// Batch holds outcomes in call order.
type Batch []Outcome

func (b Batch) Failed() int {
	n := 0
	for _, o := range b {
		if o.Status != StatusSuccess {
			n++
		}
	}
	return n
}

// Invoker dispatches calls concurrently over one transport.
type Invoker struct {
	transport Transport
}

func NewInvoker(transport Transport) *Invoker {
	return &Invoker{transport: transport}
}

// Invoke starts every call before waiting on any of them and returns once all
// have completed. Outcome i always belongs to calls[i]. A failing call never
// affects the outcome of another one.
func (v *Invoker) Invoke(ctx context.Context, calls ...Call) Batch {
	batch := make(Batch, len(calls))

	var wg conc.WaitGroup
	for i, call := range calls {
		wg.Go(func() {
			batch[i] = v.invoke(ctx, call)
		})
	}
	wg.Wait()

	return batch
}

// Pair is Invoke for exactly two calls.
func (v *Invoker) Pair(ctx context.Context, a, b Call) (Outcome, Outcome) {
	batch := v.Invoke(ctx, a, b)
	return batch[0], batch[1]
}

func (v *Invoker) invoke(ctx context.Context, call Call) Outcome {
	outcome := Outcome{Label: call.Label, Request: call.Request}

	var pc panics.Catcher
	pc.Try(func() {
		outcome.Response, outcome.Err = v.transport.Send(ctx, call.Request)
	})
	if r := pc.Recovered(); r != nil {
		outcome.Response = nil
		outcome.Err = errors.CallPanicked(call.Label, r.AsError())
	}

	outcome.Status = classify(outcome.Response, outcome.Err)
	if outcome.Err == nil {
		switch outcome.Status {
		case StatusRPCError:
			outcome.Err = errors.RPC(call.Request.Method, outcome.Response.Error)
		case StatusDecodeError:
			outcome.Err = errors.InvalidEnvelope(nil)
		}
	}

	log.Debug().
		Str("label", call.Label).
		Int64("id", call.Request.ID).
		Str("status", outcome.Status.String()).
		Err(outcome.Err).
		Msg("call completed")
	return outcome
}

func classify(resp *jsonrpc.Response, err error) Status {
	if err != nil {
		if errors.Is(err, errors.ErrTypeDecode) {
			return StatusDecodeError
		}
		if errors.Is(err, errors.ErrTypeRPC) {
			return StatusRPCError
		}
		return StatusTransportError
	}
	if resp == nil {
		return StatusDecodeError
	}
	if resp.Failed() {
		return StatusRPCError
	}
	return StatusSuccess
}
