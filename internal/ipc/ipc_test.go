package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Fergus4506/olca-ipc-container/internal/errors"
	"github.com/Fergus4506/olca-ipc-container/internal/jsonrpc"
)

const (
	projectID       = "0a36b0b4-6836-4b4e-a275-a51b7f9f2633"
	productSystemID = "724bff37-cc16-4af4-a059-a1948f61af93"
)

func projectCall() Call {
	return Call{
		Label:   "Project",
		Request: jsonrpc.NewRequest(1, MethodDataGet, map[string]any{"@type": "Project", "@id": projectID}),
	}
}

func productSystemCall() Call {
	return Call{
		Label:   "ProductSystem",
		Request: jsonrpc.NewRequest(2, MethodDataGet, map[string]any{"@type": "ProductSystem", "@id": productSystemID}),
	}
}

// transportFunc adapts a function to Transport.
type transportFunc func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error)

func (f transportFunc) Send(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	return f(ctx, req)
}

func response(t *testing.T, body string) *jsonrpc.Response {
	t.Helper()
	var resp jsonrpc.Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", body, err)
	}
	return &resp
}

func TestInvokeStartsAllCallsBeforeAnyCompletes(t *testing.T) {
	var (
		mu      sync.Mutex
		started int
		events  []string
	)
	allStarted := make(chan struct{})

	transport := transportFunc(func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
		mu.Lock()
		started++
		events = append(events, fmt.Sprintf("start %d", req.ID))
		if started == 2 {
			close(allStarted)
		}
		mu.Unlock()

		select {
		case <-allStarted:
		case <-time.After(2 * time.Second):
			return nil, errors.Transport("calls were dispatched sequentially", nil)
		}

		mu.Lock()
		events = append(events, fmt.Sprintf("done %d", req.ID))
		mu.Unlock()
		return &jsonrpc.Response{JsonRPC: jsonrpc.Version, ID: req.ID, Result: json.RawMessage(`{}`)}, nil
	})

	a, b := NewInvoker(transport).Pair(context.Background(), projectCall(), productSystemCall())
	if a.Status != StatusSuccess || b.Status != StatusSuccess {
		t.Fatalf("statuses = %s, %s, errors = %v, %v", a.Status, b.Status, a.Err, b.Err)
	}
	if !strings.HasPrefix(events[0], "start") || !strings.HasPrefix(events[1], "start") {
		t.Errorf("both calls should start before either completes, events = %v", events)
	}
}

func TestInvokePreservesCallOrder(t *testing.T) {
	var (
		mu        sync.Mutex
		completed []string
	)
	productSystemDone := make(chan struct{})

	transport := transportFunc(func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
		label := req.Params["@type"].(string)
		if label == "Project" {
			<-productSystemDone
		}
		mu.Lock()
		completed = append(completed, label)
		mu.Unlock()
		if label == "ProductSystem" {
			close(productSystemDone)
		}
		return &jsonrpc.Response{ID: req.ID, Result: json.RawMessage(fmt.Sprintf(`{"@type":%q}`, label))}, nil
	})

	batch := NewInvoker(transport).Invoke(context.Background(), projectCall(), productSystemCall())

	if completed[0] != "ProductSystem" {
		t.Fatalf("ProductSystem should resolve first, completed = %v", completed)
	}
	if batch[0].Label != "Project" || batch[1].Label != "ProductSystem" {
		t.Errorf("batch order = %s, %s", batch[0].Label, batch[1].Label)
	}
	if batch[0].Request.ID != 1 || batch[1].Request.ID != 2 {
		t.Errorf("outcomes lost their requests: %d, %d", batch[0].Request.ID, batch[1].Request.ID)
	}

	var out strings.Builder
	if err := (Reporter{}).Report(&out, batch); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	text := out.String()
	if strings.Index(text, "Project result") > strings.Index(text, "ProductSystem result") {
		t.Errorf("report order wrong:\n%s", text)
	}
}

func TestInvokeIsolatesFailures(t *testing.T) {
	transport := transportFunc(func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
		if req.ID == 1 {
			return nil, errors.EndpointUnreachable(DefaultEndpoint, fmt.Errorf("connection refused"))
		}
		return response(t, `{"jsonrpc":"2.0","id":2,"result":{"@type":"ProductSystem"}}`), nil
	})

	a, b := NewInvoker(transport).Pair(context.Background(), projectCall(), productSystemCall())
	if a.Status != StatusTransportError {
		t.Errorf("Project status = %s, want %s", a.Status, StatusTransportError)
	}
	if b.Status != StatusSuccess || !b.HasData() {
		t.Errorf("ProductSystem status = %s, HasData = %v", b.Status, b.HasData())
	}
}

func TestInvokeRecoversPanic(t *testing.T) {
	transport := transportFunc(func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
		if req.ID == 2 {
			panic("broken transport")
		}
		return response(t, `{"result":{"@type":"Project"}}`), nil
	})

	a, b := NewInvoker(transport).Pair(context.Background(), projectCall(), productSystemCall())
	if a.Status != StatusSuccess {
		t.Errorf("Project status = %s", a.Status)
	}
	if b.Status != StatusTransportError || !strings.Contains(b.Err.Error(), "panicked") {
		t.Errorf("ProductSystem status = %s, err = %v", b.Status, b.Err)
	}
}

func TestOutcomeClassification(t *testing.T) {
	tests := []struct {
		name       string
		resp       string
		err        error
		wantStatus Status
		wantData   bool
		wantReport string
	}{
		{
			name:       "rpc error",
			resp:       `{"error":{"code":-32601,"message":"not found"}}`,
			wantStatus: StatusRPCError,
			wantReport: "Project query failed: code=-32601 message=not found",
		},
		{
			name:       "null result",
			resp:       `{"result":null}`,
			wantStatus: StatusSuccess,
			wantReport: "Project result: no data",
		},
		{
			name:       "absent result",
			resp:       `{"jsonrpc":"2.0","id":1}`,
			wantStatus: StatusSuccess,
			wantReport: "Project result: no data",
		},
		{
			name:       "data",
			resp:       `{"result":{"@type":"Project","name":"p"}}`,
			wantStatus: StatusSuccess,
			wantData:   true,
			wantReport: "Project result: found data",
		},
		{
			name:       "decode error",
			err:        errors.InvalidEnvelope(fmt.Errorf("invalid character '<'")),
			wantStatus: StatusDecodeError,
			wantReport: "Project decode error:",
		},
		{
			name:       "transport error",
			err:        errors.EndpointUnreachable(DefaultEndpoint, fmt.Errorf("connection refused")),
			wantStatus: StatusTransportError,
			wantReport: "Project transport error:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := transportFunc(func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return response(t, tt.resp), nil
			})

			batch := NewInvoker(transport).Invoke(context.Background(), projectCall())
			o := batch[0]
			if o.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", o.Status, tt.wantStatus)
			}
			if o.HasData() != tt.wantData {
				t.Errorf("HasData() = %v, want %v", o.HasData(), tt.wantData)
			}
			if tt.wantStatus == StatusRPCError {
				if o.RPCError() == nil || o.RPCError().Message != "not found" {
					t.Errorf("RPCError() = %v", o.RPCError())
				}
				if !errors.Is(o.Err, errors.ErrTypeRPC) {
					t.Errorf("Err = %v, want rpc error", o.Err)
				}
			}

			var out strings.Builder
			if err := (Reporter{ShowResult: true}).Report(&out, batch); err != nil {
				t.Fatalf("Report() error = %v", err)
			}
			if !strings.Contains(out.String(), tt.wantReport) {
				t.Errorf("report = %q, want it to contain %q", out.String(), tt.wantReport)
			}
		})
	}
}

func TestReporterShowResult(t *testing.T) {
	batch := Batch{{
		Label:    "Project",
		Response: &jsonrpc.Response{Result: json.RawMessage(`{"name":"p"}`)},
		Status:   StatusSuccess,
	}}

	var out strings.Builder
	if err := (Reporter{ShowResult: true}).Report(&out, batch); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	expected := separator + "\nProject result: found data\n{\n  \"name\": \"p\"\n}\n"
	if out.String() != expected {
		t.Errorf("Report() = %q, want %q", out.String(), expected)
	}
	if batch.Failed() != 0 {
		t.Errorf("Failed() = %d", batch.Failed())
	}
}
