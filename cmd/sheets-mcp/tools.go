package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// toolCatalogue returns the full tool list in its fixed advertised order.
func toolCatalogue() []mcp.Tool {
	return []mcp.Tool{
		createCreateTool(),
		createGetTool(),
		createUpdateValuesTool(),
		createAppendValuesTool(),
		createGetValuesTool(),
		createClearValuesTool(),
		createAddSheetTool(),
		createDeleteSheetTool(),
		createListTool(),
		createDeleteTool(),
		createShareTool(),
		createSearchTool(),
		createFormatCellsTool(),
		createVerifyConnectionTool(),
		createWriteToSheetTool(),
	}
}

func createCreateTool() mcp.Tool {
	return mcp.NewTool("create",
		mcp.WithDescription("Create a new Google Spreadsheet with the given title. Returns the new spreadsheet's ID and URL."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title for the new spreadsheet")),
		mcp.WithArray("sheetNames", mcp.WithStringItems(), mcp.Description("Titles for the initial sheet tabs (default: a single 'Sheet1')")),
	)
}

func createGetTool() mcp.Tool {
	return mcp.NewTool("get",
		mcp.WithDescription("Get spreadsheet metadata: title, URL, and the list of sheet tabs with their IDs and dimensions."),
		mcp.WithString("spreadsheetId", mcp.Required(), mcp.Description("ID of the spreadsheet")),
	)
}

func createUpdateValuesTool() mcp.Tool {
	return mcp.NewTool("update_values",
		mcp.WithDescription("Overwrite cell values in a range. Values are a row-major 2D array; each inner array is one row."),
		mcp.WithString("spreadsheetId", mcp.Required(), mcp.Description("ID of the spreadsheet")),
		mcp.WithString("range", mcp.Required(), mcp.Description("A1 notation range to write (e.g., 'Sheet1!A1:C10')")),
		mcp.WithArray("values", mcp.Required(), mcp.Description("2D array of cell values, rows of cells")),
		mcp.WithString("valueInputOption", mcp.Description("How input is interpreted: 'USER_ENTERED' (default, parses formulas and numbers) or 'RAW'")),
	)
}

func createAppendValuesTool() mcp.Tool {
	return mcp.NewTool("append_values",
		mcp.WithDescription("Append rows after the last row of the table found in the given range."),
		mcp.WithString("spreadsheetId", mcp.Required(), mcp.Description("ID of the spreadsheet")),
		mcp.WithString("range", mcp.Required(), mcp.Description("A1 notation range locating the table to append to (e.g., 'Sheet1!A1')")),
		mcp.WithArray("values", mcp.Required(), mcp.Description("2D array of cell values, rows of cells")),
		mcp.WithString("valueInputOption", mcp.Description("How input is interpreted: 'USER_ENTERED' (default) or 'RAW'")),
	)
}

func createGetValuesTool() mcp.Tool {
	return mcp.NewTool("get_values",
		mcp.WithDescription("Read cell values from a range. Returns the values as a markdown table."),
		mcp.WithString("spreadsheetId", mcp.Required(), mcp.Description("ID of the spreadsheet")),
		mcp.WithString("range", mcp.Required(), mcp.Description("A1 notation range to read (e.g., 'Sheet1!A1:C10')")),
		mcp.WithString("valueRenderOption", mcp.Description("How values are rendered: 'FORMATTED_VALUE' (default), 'UNFORMATTED_VALUE', or 'FORMULA'")),
		mcp.WithString("majorDimension", mcp.Description("Major dimension of the result: 'ROWS' (default) or 'COLUMNS'")),
	)
}

func createClearValuesTool() mcp.Tool {
	return mcp.NewTool("clear_values",
		mcp.WithDescription("Clear cell values in a range. Formatting is left intact."),
		mcp.WithString("spreadsheetId", mcp.Required(), mcp.Description("ID of the spreadsheet")),
		mcp.WithString("range", mcp.Required(), mcp.Description("A1 notation range to clear (e.g., 'Sheet1!A1:C10')")),
	)
}

func createAddSheetTool() mcp.Tool {
	return mcp.NewTool("add_sheet",
		mcp.WithDescription("Add a new sheet tab to an existing spreadsheet."),
		mcp.WithString("spreadsheetId", mcp.Required(), mcp.Description("ID of the spreadsheet")),
		mcp.WithString("sheetTitle", mcp.Required(), mcp.Description("Title for the new sheet tab")),
	)
}

func createDeleteSheetTool() mcp.Tool {
	return mcp.NewTool("delete_sheet",
		mcp.WithDescription("Delete a sheet tab from a spreadsheet by its numeric sheet ID (use 'get' to look up sheet IDs)."),
		mcp.WithString("spreadsheetId", mcp.Required(), mcp.Description("ID of the spreadsheet")),
		mcp.WithNumber("sheetId", mcp.Required(), mcp.Description("Numeric ID of the sheet tab to delete")),
	)
}

func createListTool() mcp.Tool {
	return mcp.NewTool("list",
		mcp.WithDescription("List spreadsheets accessible to the configured credential, newest first."),
		mcp.WithNumber("pageSize", mcp.Description("Maximum number of spreadsheets to return (default: 100)")),
		mcp.WithString("pageToken", mcp.Description("Pagination token from a previous list call")),
	)
}

func createDeleteTool() mcp.Tool {
	return mcp.NewTool("delete",
		mcp.WithDescription("Permanently delete a spreadsheet. This cannot be undone."),
		mcp.WithString("spreadsheetId", mcp.Required(), mcp.Description("ID of the spreadsheet to delete")),
	)
}

func createShareTool() mcp.Tool {
	return mcp.NewTool("share",
		mcp.WithDescription("Share a spreadsheet with a user by email address."),
		mcp.WithString("spreadsheetId", mcp.Required(), mcp.Description("ID of the spreadsheet")),
		mcp.WithString("emailAddress", mcp.Required(), mcp.Description("Email address of the user to share with")),
		mcp.WithString("role", mcp.Description("Access role: 'reader', 'commenter', or 'writer' (default: 'writer')")),
		mcp.WithBoolean("sendNotification", mcp.Description("Send a notification email to the user (default: true)")),
	)
}

func createSearchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Search spreadsheets by name."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to match against spreadsheet names")),
		mcp.WithNumber("pageSize", mcp.Description("Maximum number of results to return (default: 100)")),
		mcp.WithString("pageToken", mcp.Description("Pagination token from a previous search call")),
	)
}

func createFormatCellsTool() mcp.Tool {
	return mcp.NewTool("format_cells",
		mcp.WithDescription("Apply formatting to a rectangular cell range: bold, italic, font size, colors, alignment, and number format."),
		mcp.WithString("spreadsheetId", mcp.Required(), mcp.Description("ID of the spreadsheet")),
		mcp.WithNumber("sheetId", mcp.Required(), mcp.Description("Numeric ID of the sheet tab to format")),
		mcp.WithObject("range", mcp.Required(),
			mcp.Description("Grid range to format, zero-based with exclusive end indices"),
			mcp.Properties(map[string]any{
				"startRowIndex":    map[string]any{"type": "number", "description": "First row, zero-based"},
				"endRowIndex":      map[string]any{"type": "number", "description": "Row after the last row"},
				"startColumnIndex": map[string]any{"type": "number", "description": "First column, zero-based"},
				"endColumnIndex":   map[string]any{"type": "number", "description": "Column after the last column"},
			}),
		),
		mcp.WithObject("format", mcp.Required(),
			mcp.Description("Formatting to apply; omitted options are left unchanged"),
			mcp.Properties(map[string]any{
				"bold":                map[string]any{"type": "boolean"},
				"italic":              map[string]any{"type": "boolean"},
				"fontSize":            map[string]any{"type": "number"},
				"fontColor":           map[string]any{"type": "string", "description": "Hex color like '#FF0000'"},
				"backgroundColor":     map[string]any{"type": "string", "description": "Hex color like '#FFFF00'"},
				"horizontalAlignment": map[string]any{"type": "string", "description": "LEFT, CENTER, or RIGHT"},
				"numberFormat": map[string]any{
					"type":        "object",
					"description": "Number format with 'type' (e.g., NUMBER, CURRENCY, DATE, PERCENT) and optional 'pattern'",
				},
			}),
		),
	)
}

func createVerifyConnectionTool() mcp.Tool {
	return mcp.NewTool("verify_connection",
		mcp.WithDescription("Verify the Google API connection and credentials. Use this to check connectivity."),
	)
}

func createWriteToSheetTool() mcp.Tool {
	return mcp.NewTool("write_to_sheet",
		mcp.WithDescription("Write a table (header row plus data rows) to a sheet starting at A1, optionally clearing the sheet first."),
		mcp.WithString("spreadsheetId", mcp.Required(), mcp.Description("ID of the spreadsheet")),
		mcp.WithString("sheetName", mcp.Required(), mcp.Description("Name of the sheet tab to write to")),
		mcp.WithObject("data", mcp.Required(),
			mcp.Description("Table data to write"),
			mcp.Properties(map[string]any{
				"headers": map[string]any{"type": "array", "description": "Column header strings", "items": map[string]any{"type": "string"}},
				"rows":    map[string]any{"type": "array", "description": "2D array of cell values, rows of cells"},
			}),
		),
		mcp.WithBoolean("clearExisting", mcp.Description("Clear the sheet before writing (default: true)")),
	)
}
