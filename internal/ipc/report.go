package ipc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const separator = "------------------------------------------------"

// Reporter prints a batch in call order.
type Reporter struct {
	// ShowResult prints the indented result after a successful call with data.
	ShowResult bool
}

func (r Reporter) Report(w io.Writer, batch Batch) error {
	var buf bytes.Buffer
	for _, o := range batch {
		buf.WriteString(separator)
		buf.WriteByte('\n')
		r.writeOutcome(&buf, o)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (r Reporter) writeOutcome(buf *bytes.Buffer, o Outcome) {
	switch o.Status {
	case StatusRPCError:
		e := o.RPCError()
		if e == nil {
			fmt.Fprintf(buf, "%s query failed: %v\n", o.Label, o.Err)
			return
		}
		fmt.Fprintf(buf, "%s query failed: code=%d message=%s\n", o.Label, e.Code, e.Message)
	case StatusTransportError:
		fmt.Fprintf(buf, "%s transport error: %v\n", o.Label, o.Err)
	case StatusDecodeError:
		fmt.Fprintf(buf, "%s decode error: %v\n", o.Label, o.Err)
	default:
		if !o.HasData() {
			fmt.Fprintf(buf, "%s result: no data\n", o.Label)
			return
		}
		fmt.Fprintf(buf, "%s result: found data\n", o.Label)
		if r.ShowResult {
			buf.WriteString(indent(o.Response.Result))
			buf.WriteByte('\n')
		}
	}
}

func indent(raw json.RawMessage) string {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return out.String()
}
