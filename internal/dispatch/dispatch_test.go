package dispatch

import (
	"context"
	"testing"

	"github.com/amarbel-llc/go-lib-mcp/protocol"
	"github.com/amarbel-llc/mill/internal/lsp"
)

// fakeBridge serves InspectCode/SearchCode's navigation queries from fixed
// canned responses, recording which method was called.
type fakeBridge struct {
	called string
	result *protocol.ToolCallResult
	err    error
}

func (f *fakeBridge) Hover(context.Context, lsp.DocumentURI, int, int) (*protocol.ToolCallResult, error) {
	f.called = "hover"
	return f.result, f.err
}
func (f *fakeBridge) Definition(context.Context, lsp.DocumentURI, int, int) (*protocol.ToolCallResult, error) {
	f.called = "definition"
	return f.result, f.err
}
func (f *fakeBridge) References(context.Context, lsp.DocumentURI, int, int, bool) (*protocol.ToolCallResult, error) {
	f.called = "references"
	return f.result, f.err
}
func (f *fakeBridge) Diagnostics(context.Context, lsp.DocumentURI) (*protocol.ToolCallResult, error) {
	f.called = "diagnostics"
	return f.result, f.err
}
func (f *fakeBridge) DocumentSymbols(context.Context, lsp.DocumentURI) (*protocol.ToolCallResult, error) {
	f.called = "symbol_info"
	return f.result, f.err
}
func (f *fakeBridge) WorkspaceSymbols(context.Context, lsp.DocumentURI, string) (*protocol.ToolCallResult, error) {
	f.called = "workspace_symbols"
	return f.result, f.err
}

func textResult(text string) *protocol.ToolCallResult {
	return &protocol.ToolCallResult{Content: []protocol.ContentBlock{protocol.TextContent(text)}}
}

func TestInspectCode_RoutesByQuery(t *testing.T) {
	cases := map[string]string{
		"hover":       "hover",
		"":            "hover",
		"definition":  "definition",
		"references":  "references",
		"diagnostics": "diagnostics",
		"symbol_info": "symbol_info",
	}
	for query, want := range cases {
		bridge := &fakeBridge{result: textResult("ok")}
		d := New(bridge, nil, nil, nil, nil, nil)
		res, err := d.InspectCode(context.Background(), InspectCodeArgs{URI: "file:///a.go", Query: query})
		if err != nil {
			t.Fatalf("query %q: unexpected error %v", query, err)
		}
		if bridge.called != want {
			t.Errorf("query %q: called %q, want %q", query, bridge.called, want)
		}
		if res.IsError {
			t.Errorf("query %q: unexpected error result: %s", query, res.Text)
		}
	}
}

func TestInspectCode_UnsupportedQuery(t *testing.T) {
	bridge := &fakeBridge{result: textResult("ok")}
	d := New(bridge, nil, nil, nil, nil, nil)

	res, err := d.InspectCode(context.Background(), InspectCodeArgs{URI: "file:///a.go", Query: "call_hierarchy"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Error("expected IsError for an unimplemented query")
	}
	if bridge.called != "" {
		t.Errorf("bridge should not have been called, got %q", bridge.called)
	}
}

func TestInspectCode_UnknownQueryIsInvalidRequest(t *testing.T) {
	bridge := &fakeBridge{result: textResult("ok")}
	d := New(bridge, nil, nil, nil, nil, nil)

	res, err := d.InspectCode(context.Background(), InspectCodeArgs{URI: "file:///a.go", Query: "bogus"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Error("expected IsError for an unknown query")
	}
}

func TestSearchCode(t *testing.T) {
	bridge := &fakeBridge{result: textResult("found 3 symbols")}
	d := New(bridge, nil, nil, nil, nil, nil)

	res, err := d.SearchCode(context.Background(), SearchCodeArgs{AnchorURI: "file:///a.go", Query: "Foo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bridge.called != "workspace_symbols" {
		t.Errorf("called %q, want workspace_symbols", bridge.called)
	}
	if res.Text != "found 3 symbols" {
		t.Errorf("got text %q", res.Text)
	}
}
