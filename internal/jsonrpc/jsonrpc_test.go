package jsonrpc

import (
	"encoding/json"
	"testing"
)

func TestNewRequestWireShape(t *testing.T) {
	req := NewRequest(1, "data/get", map[string]any{
		"@type": "Project",
		"@id":   "0a36b0b4-6836-4b4e-a275-a51b7f9f2633",
	})

	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	expected := `{"jsonrpc":"2.0","id":1,"method":"data/get","params":{"@id":"0a36b0b4-6836-4b4e-a275-a51b7f9f2633","@type":"Project"}}`
	if string(b) != expected {
		t.Errorf("Marshal() = %s, want %s", b, expected)
	}
}

func TestNewRequestCopiesParams(t *testing.T) {
	params := map[string]any{"@type": "Project"}
	req := NewRequest(1, "data/get", params)
	params["@type"] = "Flow"

	if req.Params["@type"] != "Project" {
		t.Errorf("request params changed after construction: %v", req.Params["@type"])
	}
}

func TestResponseHasData(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "absent", body: `{"jsonrpc":"2.0","id":1}`, want: false},
		{name: "null", body: `{"result":null}`, want: false},
		{name: "false", body: `{"result":false}`, want: false},
		{name: "zero", body: `{"result":0}`, want: false},
		{name: "empty string", body: `{"result":""}`, want: false},
		{name: "object", body: `{"result":{"@type":"Project"}}`, want: true},
		{name: "empty object", body: `{"result":{}}`, want: true},
		{name: "empty array", body: `{"result":[]}`, want: true},
		{name: "number", body: `{"result":2.5}`, want: true},
		{name: "true", body: `{"result":true}`, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp Response
			if err := json.Unmarshal([]byte(tt.body), &resp); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if got := resp.HasData(); got != tt.want {
				t.Errorf("HasData() = %v, want %v", got, tt.want)
			}
			if resp.Failed() {
				t.Errorf("Failed() = true for %s", tt.body)
			}
		})
	}
}

func TestResponseError(t *testing.T) {
	var resp Response
	if err := json.Unmarshal([]byte(`{"error":{"code":-32601,"message":"not found"}}`), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !resp.Failed() {
		t.Fatalf("Failed() = false, want true")
	}
	if resp.Error.Code != -32601 || resp.Error.Message != "not found" {
		t.Errorf("Error = %+v", resp.Error)
	}
	if resp.Error.Error() != "-32601: not found" {
		t.Errorf("Error() = %q", resp.Error.Error())
	}
}
