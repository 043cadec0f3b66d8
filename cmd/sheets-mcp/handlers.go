package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/sheets-mcp/internal/sheets"
)

// --- Helpers ---

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// requireRows extracts a required 2D array argument from the request.
func requireRows(request mcp.CallToolRequest, key string) ([][]interface{}, error) {
	raw, ok := request.GetArguments()[key]
	if !ok {
		return nil, fmt.Errorf("required argument %q not found", key)
	}
	return coerceRows(raw, key)
}

// coerceRows converts an arbitrary decoded JSON value into rows of cells.
func coerceRows(raw interface{}, key string) ([][]interface{}, error) {
	outer, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("argument %q must be a 2D array of cell values", key)
	}
	rows := make([][]interface{}, len(outer))
	for i, r := range outer {
		row, ok := r.([]interface{})
		if !ok {
			return nil, fmt.Errorf("argument %q row %d must be an array of cell values", key, i)
		}
		rows[i] = row
	}
	return rows, nil
}

// requireObject extracts a required object argument from the request.
func requireObject(request mcp.CallToolRequest, key string) (map[string]interface{}, error) {
	raw, ok := request.GetArguments()[key]
	if !ok {
		return nil, fmt.Errorf("required argument %q not found", key)
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("argument %q must be an object", key)
	}
	return obj, nil
}

// requireIndex extracts a required zero-or-positive integer from an object.
func requireIndex(obj map[string]interface{}, objKey, key string) (int64, error) {
	raw, ok := obj[key]
	if !ok {
		return 0, fmt.Errorf("argument %q must include %q", objKey, key)
	}
	var num float64
	switch v := raw.(type) {
	case float64:
		num = v
	case int:
		num = float64(v)
	default:
		return 0, fmt.Errorf("%s.%s must be a non-negative integer", objKey, key)
	}
	if num < 0 || num != float64(int64(num)) {
		return 0, fmt.Errorf("%s.%s must be a non-negative integer", objKey, key)
	}
	return int64(num), nil
}

// --- Handlers ---

func handleCreate(svc *sheets.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := request.RequireString("title")
		if err != nil {
			return nil, err
		}
		sheetNames := request.GetStringSlice("sheetNames", nil)

		ss, err := svc.CreateSpreadsheet(ctx, title, sheetNames)
		if err != nil {
			return nil, err
		}
		return textResult(formatSpreadsheet(ss)), nil
	}
}

func handleGet(svc *sheets.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spreadsheetID, err := request.RequireString("spreadsheetId")
		if err != nil {
			return nil, err
		}

		ss, err := svc.GetSpreadsheet(ctx, spreadsheetID)
		if err != nil {
			return nil, err
		}
		return textResult(formatSpreadsheet(ss)), nil
	}
}

func handleUpdateValues(svc *sheets.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spreadsheetID, err := request.RequireString("spreadsheetId")
		if err != nil {
			return nil, err
		}
		valueRange, err := request.RequireString("range")
		if err != nil {
			return nil, err
		}
		values, err := requireRows(request, "values")
		if err != nil {
			return nil, err
		}
		valueInputOption := request.GetString("valueInputOption", "")

		result, err := svc.UpdateValues(ctx, spreadsheetID, valueRange, values, valueInputOption)
		if err != nil {
			return nil, err
		}
		return textResult(formatUpdateResult(result)), nil
	}
}

func handleAppendValues(svc *sheets.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spreadsheetID, err := request.RequireString("spreadsheetId")
		if err != nil {
			return nil, err
		}
		valueRange, err := request.RequireString("range")
		if err != nil {
			return nil, err
		}
		values, err := requireRows(request, "values")
		if err != nil {
			return nil, err
		}
		valueInputOption := request.GetString("valueInputOption", "")

		result, err := svc.AppendValues(ctx, spreadsheetID, valueRange, values, valueInputOption)
		if err != nil {
			return nil, err
		}
		return textResult(formatAppendResult(result)), nil
	}
}

func handleGetValues(svc *sheets.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spreadsheetID, err := request.RequireString("spreadsheetId")
		if err != nil {
			return nil, err
		}
		valueRange, err := request.RequireString("range")
		if err != nil {
			return nil, err
		}
		renderOption := request.GetString("valueRenderOption", "")
		majorDimension := request.GetString("majorDimension", "")

		result, err := svc.GetValues(ctx, spreadsheetID, valueRange, renderOption, majorDimension)
		if err != nil {
			return nil, err
		}
		return textResult(formatValueRange(result)), nil
	}
}

func handleClearValues(svc *sheets.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spreadsheetID, err := request.RequireString("spreadsheetId")
		if err != nil {
			return nil, err
		}
		valueRange, err := request.RequireString("range")
		if err != nil {
			return nil, err
		}

		result, err := svc.ClearValues(ctx, spreadsheetID, valueRange)
		if err != nil {
			return nil, err
		}
		return textResult(fmt.Sprintf("Cleared range %s in spreadsheet %s", result.ClearedRange, result.SpreadsheetID)), nil
	}
}

func handleAddSheet(svc *sheets.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spreadsheetID, err := request.RequireString("spreadsheetId")
		if err != nil {
			return nil, err
		}
		sheetTitle, err := request.RequireString("sheetTitle")
		if err != nil {
			return nil, err
		}

		result, err := svc.AddSheet(ctx, spreadsheetID, sheetTitle)
		if err != nil {
			return nil, err
		}
		return textResult(formatAddSheetResult(result, sheetTitle)), nil
	}
}

func handleDeleteSheet(svc *sheets.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spreadsheetID, err := request.RequireString("spreadsheetId")
		if err != nil {
			return nil, err
		}
		sheetID, err := request.RequireInt("sheetId")
		if err != nil {
			return nil, err
		}

		if _, err := svc.DeleteSheet(ctx, spreadsheetID, int64(sheetID)); err != nil {
			return nil, err
		}
		return textResult(fmt.Sprintf("Deleted sheet %d from spreadsheet %s", sheetID, spreadsheetID)), nil
	}
}

func handleList(svc *sheets.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pageSize := request.GetInt("pageSize", 0)
		pageToken := request.GetString("pageToken", "")

		result, err := svc.ListSpreadsheets(ctx, int64(pageSize), pageToken)
		if err != nil {
			return nil, err
		}
		return textResult(formatFileList(result)), nil
	}
}

func handleDelete(svc *sheets.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spreadsheetID, err := request.RequireString("spreadsheetId")
		if err != nil {
			return nil, err
		}

		if err := svc.DeleteSpreadsheet(ctx, spreadsheetID); err != nil {
			return nil, err
		}
		return textResult(fmt.Sprintf("Deleted spreadsheet %s", spreadsheetID)), nil
	}
}

func handleShare(svc *sheets.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spreadsheetID, err := request.RequireString("spreadsheetId")
		if err != nil {
			return nil, err
		}
		emailAddress, err := request.RequireString("emailAddress")
		if err != nil {
			return nil, err
		}
		role := request.GetString("role", "writer")
		sendNotification := request.GetBool("sendNotification", true)

		perm, err := svc.ShareSpreadsheet(ctx, spreadsheetID, emailAddress, role, sendNotification)
		if err != nil {
			return nil, err
		}
		return textResult(fmt.Sprintf("Shared spreadsheet %s with %s as %s", spreadsheetID, emailAddress, perm.Role)), nil
	}
}

func handleSearch(svc *sheets.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return nil, err
		}
		pageSize := request.GetInt("pageSize", 0)
		pageToken := request.GetString("pageToken", "")

		result, err := svc.SearchSpreadsheets(ctx, query, int64(pageSize), pageToken)
		if err != nil {
			return nil, err
		}
		return textResult(formatFileList(result)), nil
	}
}

func handleFormatCells(svc *sheets.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spreadsheetID, err := request.RequireString("spreadsheetId")
		if err != nil {
			return nil, err
		}
		sheetID, err := request.RequireInt("sheetId")
		if err != nil {
			return nil, err
		}
		rangeObj, err := requireObject(request, "range")
		if err != nil {
			return nil, err
		}
		formatObj, err := requireObject(request, "format")
		if err != nil {
			return nil, err
		}

		gridRange, err := parseGridRange(rangeObj, int64(sheetID))
		if err != nil {
			return nil, err
		}
		format, err := parseCellFormat(formatObj)
		if err != nil {
			return nil, err
		}

		if _, err := svc.FormatCells(ctx, spreadsheetID, gridRange, format); err != nil {
			return nil, err
		}
		return textResult(fmt.Sprintf("Applied formatting to rows %d-%d, columns %d-%d on sheet %d",
			gridRange.StartRowIndex, gridRange.EndRowIndex, gridRange.StartColumnIndex, gridRange.EndColumnIndex, sheetID)), nil
	}
}

func handleVerifyConnection(svc *sheets.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := svc.VerifyConnection(ctx)
		if err != nil {
			return nil, err
		}
		if user.EmailAddress != "" {
			return textResult(fmt.Sprintf("Connection OK\nAuthenticated as: %s (%s)", user.DisplayName, user.EmailAddress)), nil
		}
		return textResult("Connection OK"), nil
	}
}

func handleWriteToSheet(svc *sheets.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spreadsheetID, err := request.RequireString("spreadsheetId")
		if err != nil {
			return nil, err
		}
		sheetName, err := request.RequireString("sheetName")
		if err != nil {
			return nil, err
		}
		data, err := requireObject(request, "data")
		if err != nil {
			return nil, err
		}
		clearExisting := request.GetBool("clearExisting", true)

		headers, rows, err := parseTableData(data)
		if err != nil {
			return nil, err
		}

		result, err := svc.WriteToSheet(ctx, spreadsheetID, sheetName, headers, rows, clearExisting)
		if err != nil {
			return nil, err
		}
		return textResult(formatWriteResult(result, sheetName, len(rows))), nil
	}
}

// parseGridRange builds a grid range from the range object argument.
func parseGridRange(obj map[string]interface{}, sheetID int64) (sheets.GridRange, error) {
	gr := sheets.GridRange{SheetID: sheetID}
	var err error
	if gr.StartRowIndex, err = requireIndex(obj, "range", "startRowIndex"); err != nil {
		return gr, err
	}
	if gr.EndRowIndex, err = requireIndex(obj, "range", "endRowIndex"); err != nil {
		return gr, err
	}
	if gr.StartColumnIndex, err = requireIndex(obj, "range", "startColumnIndex"); err != nil {
		return gr, err
	}
	if gr.EndColumnIndex, err = requireIndex(obj, "range", "endColumnIndex"); err != nil {
		return gr, err
	}
	if gr.EndRowIndex <= gr.StartRowIndex || gr.EndColumnIndex <= gr.StartColumnIndex {
		return gr, fmt.Errorf("range end indices must be greater than start indices")
	}
	return gr, nil
}

// parseCellFormat builds a cell format from the format object argument.
func parseCellFormat(obj map[string]interface{}) (sheets.CellFormat, error) {
	var f sheets.CellFormat

	if v, ok := obj["bold"].(bool); ok {
		f.Bold = &v
	}
	if v, ok := obj["italic"].(bool); ok {
		f.Italic = &v
	}
	if v, ok := obj["fontSize"].(float64); ok {
		size := int64(v)
		f.FontSize = &size
	}
	if v, ok := obj["fontColor"].(string); ok {
		c, err := sheets.ParseColor(v)
		if err != nil {
			return f, fmt.Errorf("format.fontColor: %w", err)
		}
		f.FontColor = c
	}
	if v, ok := obj["backgroundColor"].(string); ok {
		c, err := sheets.ParseColor(v)
		if err != nil {
			return f, fmt.Errorf("format.backgroundColor: %w", err)
		}
		f.BackgroundColor = c
	}
	if v, ok := obj["horizontalAlignment"].(string); ok {
		f.HorizontalAlignment = v
	}
	if v, ok := obj["numberFormat"].(map[string]interface{}); ok {
		if t, ok := v["type"].(string); ok {
			f.NumberFormatType = t
		}
		if p, ok := v["pattern"].(string); ok {
			f.NumberFormatPattern = p
		}
	}
	return f, nil
}

// parseTableData extracts headers and rows from the data object argument.
func parseTableData(data map[string]interface{}) ([]string, [][]interface{}, error) {
	rawHeaders, ok := data["headers"].([]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("argument \"data\" must include a \"headers\" array")
	}
	headers := make([]string, len(rawHeaders))
	for i, h := range rawHeaders {
		s, ok := h.(string)
		if !ok {
			return nil, nil, fmt.Errorf("data.headers[%d] must be a string", i)
		}
		headers[i] = s
	}

	rawRows, ok := data["rows"]
	if !ok {
		return nil, nil, fmt.Errorf("argument \"data\" must include a \"rows\" array")
	}
	rows, err := coerceRows(rawRows, "data.rows")
	if err != nil {
		return nil, nil, err
	}
	return headers, rows, nil
}
