package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bobmcallan/sheets-mcp/internal/sheets"
)

func TestDispatch_UnknownTool(t *testing.T) {
	g := newTestGateway("http://localhost:1")

	request := mcp.CallToolRequest{}
	request.Params.Name = "nonexistent_tool"
	request.Params.Arguments = map[string]interface{}{}

	result, err := g.dispatch(context.Background(), request)
	if err != nil {
		t.Fatalf("dispatch must never return a protocol error, got: %v", err)
	}
	if !result.IsError {
		t.Fatal("Expected error result for unknown tool")
	}
	if !strings.Contains(resultText(t, result), "nonexistent_tool") {
		t.Error("Error message should mention the offending tool name")
	}
}

func TestDispatch_HandlerPanicRecovered(t *testing.T) {
	g := newTestGateway("http://localhost:1")
	g.add(mcp.NewTool("explode"), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		panic("boom")
	})

	request := mcp.CallToolRequest{}
	request.Params.Name = "explode"

	result, err := g.dispatch(context.Background(), request)
	if err != nil {
		t.Fatalf("dispatch must never return a protocol error, got: %v", err)
	}
	if !result.IsError {
		t.Fatal("Expected error result when a handler panics")
	}
	text := resultText(t, result)
	if !strings.Contains(text, "explode") || !strings.Contains(text, "boom") {
		t.Errorf("Error message should name the tool and the failure, got: %s", text)
	}
}

func TestDispatch_ConcurrentCallsIsolated(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Echo the requested range back as both the range and a cell value.
		parts := strings.Split(r.URL.Path, "/")
		rangeName := parts[len(parts)-1]
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sheets.ValueRange{
			Range:  rangeName,
			Values: [][]interface{}{{rangeName}},
		})
	}))
	defer mockServer.Close()

	g := newTestGateway(mockServer.URL)

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			rangeName := fmt.Sprintf("Tab%d", n)
			request := mcp.CallToolRequest{}
			request.Params.Name = "get_values"
			request.Params.Arguments = map[string]interface{}{
				"spreadsheetId": "abc123",
				"range":         rangeName,
			}

			result, err := g.dispatch(context.Background(), request)
			if err != nil {
				errs <- fmt.Errorf("call %d: unexpected error: %v", n, err)
				return
			}
			if result.IsError {
				errs <- fmt.Errorf("call %d: unexpected error result: %v", n, result.Content)
				return
			}
			text := result.Content[0].(mcp.TextContent).Text
			if !strings.Contains(text, rangeName) {
				errs <- fmt.Errorf("call %d: result does not contain its own range %s: %s", n, rangeName, text)
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestGateway_CatalogueOrderAndHandlers(t *testing.T) {
	g := newTestGateway("http://localhost:1")

	tools := g.Tools()
	if len(tools) != 15 {
		t.Fatalf("Expected 15 tools in the catalogue, got %d", len(tools))
	}
	if tools[0].Name != "create" {
		t.Errorf("Expected first tool to be create, got %s", tools[0].Name)
	}
	if tools[len(tools)-1].Name != "write_to_sheet" {
		t.Errorf("Expected last tool to be write_to_sheet, got %s", tools[len(tools)-1].Name)
	}

	for _, tool := range tools {
		if _, ok := g.byName[tool.Name]; !ok {
			t.Errorf("Tool %s has no registered handler", tool.Name)
		}
	}
}
