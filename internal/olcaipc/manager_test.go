package olcaipc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Fergus4506/olca-ipc-container/internal/jsonrpc"
	"github.com/Fergus4506/olca-ipc-container/internal/olcaipc/conf"
)

func testConfig(endpoint string) *conf.Config {
	return &conf.Config{
		Endpoint: endpoint,
		Timeout:  time.Second,
		Queries:  append([]conf.Query(nil), conf.DefaultQueries...),
	}
}

func TestCalls(t *testing.T) {
	m := NewWithConfig(testConfig(conf.DefaultEndpoint), nil)
	calls := m.Calls()
	if len(calls) != 2 {
		t.Fatalf("Calls() = %d calls", len(calls))
	}

	b, _ := json.Marshal(calls[0].Request)
	expected := `{"jsonrpc":"2.0","id":1,"method":"data/get","params":{"@id":"0a36b0b4-6836-4b4e-a275-a51b7f9f2633","@type":"Project"}}`
	if string(b) != expected {
		t.Errorf("first request = %s, want %s", b, expected)
	}
	if calls[1].Label != "ProductSystem" || calls[1].Request.ID != 2 {
		t.Errorf("second call = %s / %d", calls[1].Label, calls[1].Request.ID)
	}
}

func TestCommandFind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req jsonrpc.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Params["@type"] == "Project" {
			// answer Project last
			time.Sleep(50 * time.Millisecond)
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":null}`, req.ID)
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"error":{"code":-32601,"message":"not found"}}`, req.ID)
	}))
	defer server.Close()

	m := NewWithConfig(testConfig(server.URL), nil)
	var out strings.Builder
	if err := m.CommandFind(context.Background(), &out); err != nil {
		t.Fatalf("CommandFind() error = %v", err)
	}

	text := out.String()
	project := strings.Index(text, "Project result: no data")
	system := strings.Index(text, "ProductSystem query failed: code=-32601 message=not found")
	if project < 0 || system < 0 || project > system {
		t.Errorf("unexpected report:\n%s", text)
	}
}

func TestCommandFindUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	m := NewWithConfig(testConfig(url), nil)
	var out strings.Builder
	if err := m.CommandFind(context.Background(), &out); err != nil {
		t.Fatalf("CommandFind() error = %v, failures must only be reported", err)
	}
	if strings.Count(out.String(), "transport error") != 2 {
		t.Errorf("report = %s", out.String())
	}
}
