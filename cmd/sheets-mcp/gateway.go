package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/sheets-mcp/internal/common"
	"github.com/bobmcallan/sheets-mcp/internal/sheets"
)

// Gateway routes tool calls to backend spreadsheet operations and
// normalizes every outcome into a tool result. A call never produces a
// protocol-level error: failures come back as results with IsError set.
type Gateway struct {
	entries []toolEntry
	byName  map[string]server.ToolHandlerFunc
	logger  *common.Logger
}

type toolEntry struct {
	tool    mcp.Tool
	handler server.ToolHandlerFunc
}

// NewGateway builds the gateway with the full tool catalogue wired to the
// given backend service.
func NewGateway(svc *sheets.Service, logger *common.Logger) *Gateway {
	g := &Gateway{
		byName: make(map[string]server.ToolHandlerFunc),
		logger: logger,
	}

	handlers := map[string]server.ToolHandlerFunc{
		"create":            handleCreate(svc),
		"get":               handleGet(svc),
		"update_values":     handleUpdateValues(svc),
		"append_values":     handleAppendValues(svc),
		"get_values":        handleGetValues(svc),
		"clear_values":      handleClearValues(svc),
		"add_sheet":         handleAddSheet(svc),
		"delete_sheet":      handleDeleteSheet(svc),
		"list":              handleList(svc),
		"delete":            handleDelete(svc),
		"share":             handleShare(svc),
		"search":            handleSearch(svc),
		"format_cells":      handleFormatCells(svc),
		"verify_connection": handleVerifyConnection(svc),
		"write_to_sheet":    handleWriteToSheet(svc),
	}

	for _, tool := range toolCatalogue() {
		handler, ok := handlers[tool.Name]
		if !ok {
			// A catalogue entry without a handler is a programming error.
			panic(fmt.Sprintf("tool %s has no handler", tool.Name))
		}
		g.add(tool, handler)
	}
	return g
}

func (g *Gateway) add(tool mcp.Tool, handler server.ToolHandlerFunc) {
	g.entries = append(g.entries, toolEntry{tool: tool, handler: handler})
	g.byName[tool.Name] = handler
}

// Tools returns the catalogue in its advertised order.
func (g *Gateway) Tools() []mcp.Tool {
	tools := make([]mcp.Tool, len(g.entries))
	for i, e := range g.entries {
		tools[i] = e.tool
	}
	return tools
}

// Register wires every tool onto the MCP server through dispatch, so the
// serving path and the tested path are the same code.
func (g *Gateway) Register(s *server.MCPServer) {
	for _, e := range g.entries {
		s.AddTool(e.tool, g.dispatch)
	}
}

// dispatch is the single normalization point for all tool calls. It looks
// up the handler by name, runs it, and converts every failure mode —
// unknown tool, argument error, backend error, even a handler panic —
// into an error result. It never returns a non-nil error.
func (g *Gateway) dispatch(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, _ error) {
	name := request.Params.Name
	correlationID := uuid.New().String()
	log := g.logger.WithCorrelationId(correlationID)

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("tool", name).Str("panic", fmt.Sprintf("%v", r)).Msg("Tool handler panicked")
			result = errorResult(fmt.Sprintf("%s: internal error: %v", name, r))
		}
	}()

	handler, ok := g.byName[name]
	if !ok {
		log.Warn().Str("tool", name).Msg("Unknown tool requested")
		return errorResult(fmt.Sprintf("unknown tool: %s", name)), nil
	}

	log.Debug().Str("tool", name).Msg("Dispatching tool call")

	res, err := handler(ctx, request)
	if err != nil {
		log.Warn().Str("tool", name).Err(err).Msg("Tool call failed")
		return errorResult(fmt.Sprintf("%s: %v", name, err)), nil
	}

	log.Debug().Str("tool", name).Msg("Tool call completed")
	return res, nil
}
