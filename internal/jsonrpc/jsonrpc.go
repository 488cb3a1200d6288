package jsonrpc

import (
	"bytes"
	"encoding/json"
	"strconv"
)

const (
	Version = "2.0"
)

// Request
//
//	{
//		jsonrpc: "2.0",
//		id: number,
//		method: string,
//		params?: object
//	}
type Request struct {
	JsonRPC string         `json:"jsonrpc"`
	ID      int64          `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
}

// NewRequest builds a request envelope. The params map is copied so later
// changes by the caller do not leak into a request already in flight.
func NewRequest(id int64, method string, params map[string]any) *Request {
	var p map[string]any
	if params != nil {
		p = make(map[string]any, len(params))
		for k, v := range params {
			p[k] = v
		}
	}
	return &Request{
		JsonRPC: Version,
		ID:      id,
		Method:  method,
		Params:  p,
	}
}

// Response
//
//	{
//		jsonrpc: "2.0",
//		id: number,
//		result?: any,
//		error?: {
//			code: number,
//			message: string,
//			data?: unknown
//		}
//	}
type Response struct {
	JsonRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Failed reports whether the server populated the error member.
func (r *Response) Failed() bool {
	return r != nil && r.Error != nil
}

// HasData reports whether result carries a truthy value. Absent, null, false,
// 0 and "" all count as no data; objects and arrays count as data even when empty.
func (r *Response) HasData() bool {
	if r == nil {
		return false
	}
	raw := bytes.TrimSpace(r.Result)
	if len(raw) == 0 {
		return false
	}
	switch string(raw) {
	case "null", "false", `""`:
		return false
	}
	if c := raw[0]; c == '-' || (c >= '0' && c <= '9') {
		f, err := strconv.ParseFloat(string(raw), 64)
		return err != nil || f != 0
	}
	return true
}

// Decode unmarshals result into v.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Result) == 0 {
		return nil
	}
	return json.Unmarshal(r.Result, v)
}
