package main

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/sheets-mcp/internal/sheets"
)

// formatSpreadsheet renders spreadsheet metadata as markdown, including the
// spreadsheet ID and URL.
func formatSpreadsheet(ss *sheets.Spreadsheet) string {
	var b strings.Builder

	title := ""
	if ss.Properties != nil {
		title = ss.Properties.Title
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- spreadsheetId: %s\n", ss.SpreadsheetID)
	if ss.SpreadsheetURL != "" {
		fmt.Fprintf(&b, "- url: %s\n", ss.SpreadsheetURL)
	}

	if len(ss.Sheets) > 0 {
		b.WriteString("\n## Sheets\n\n")
		b.WriteString("| Title | Sheet ID | Rows | Columns |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, sheet := range ss.Sheets {
			p := sheet.Properties
			if p == nil {
				continue
			}
			rows, cols := int64(0), int64(0)
			if p.GridProperties != nil {
				rows = p.GridProperties.RowCount
				cols = p.GridProperties.ColumnCount
			}
			fmt.Fprintf(&b, "| %s | %d | %d | %d |\n", p.Title, p.SheetID, rows, cols)
		}
	}
	return b.String()
}

// formatValueRange renders cell values as a markdown grid. The first row is
// used as the header row.
func formatValueRange(vr *sheets.ValueRange) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Range: %s\n\n", vr.Range)
	if len(vr.Values) == 0 {
		b.WriteString("No values found.\n")
		return b.String()
	}

	width := 0
	for _, row := range vr.Values {
		if len(row) > width {
			width = len(row)
		}
	}

	for i, row := range vr.Values {
		b.WriteString("|")
		for c := 0; c < width; c++ {
			cell := ""
			if c < len(row) {
				cell = fmt.Sprintf("%v", row[c])
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
		if i == 0 {
			b.WriteString("|")
			for c := 0; c < width; c++ {
				b.WriteString("---|")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// formatFileList renders a Drive file listing, including the pagination
// token when more results are available.
func formatFileList(list *sheets.DriveFileList) string {
	var b strings.Builder

	if len(list.Files) == 0 {
		b.WriteString("No spreadsheets found.\n")
	} else {
		fmt.Fprintf(&b, "Found %d spreadsheet(s):\n\n", len(list.Files))
		b.WriteString("| Name | ID | Modified |\n")
		b.WriteString("|---|---|---|\n")
		for _, f := range list.Files {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", f.Name, f.ID, f.ModifiedTime)
		}
	}

	if list.NextPageToken != "" {
		fmt.Fprintf(&b, "\nnextPageToken: %s\n", list.NextPageToken)
	}
	return b.String()
}

func formatUpdateResult(r *sheets.UpdateValuesResponse) string {
	return fmt.Sprintf("Updated %s: %d cells across %d rows and %d columns",
		r.UpdatedRange, r.UpdatedCells, r.UpdatedRows, r.UpdatedColumns)
}

func formatAppendResult(r *sheets.AppendValuesResponse) string {
	if r.Updates != nil {
		return fmt.Sprintf("Appended to %s: %d cells across %d rows",
			r.Updates.UpdatedRange, r.Updates.UpdatedCells, r.Updates.UpdatedRows)
	}
	return fmt.Sprintf("Appended values to %s", r.TableRange)
}

// formatAddSheetResult pulls the new sheet's ID out of the batchUpdate reply
// when the backend includes it.
func formatAddSheetResult(r *sheets.BatchUpdateResponse, title string) string {
	for _, reply := range r.Replies {
		added, ok := reply["addSheet"].(map[string]interface{})
		if !ok {
			continue
		}
		props, ok := added["properties"].(map[string]interface{})
		if !ok {
			continue
		}
		if id, ok := props["sheetId"].(float64); ok {
			return fmt.Sprintf("Added sheet %q (sheetId: %d) to spreadsheet %s", title, int64(id), r.SpreadsheetID)
		}
	}
	return fmt.Sprintf("Added sheet %q to spreadsheet %s", title, r.SpreadsheetID)
}

func formatWriteResult(r *sheets.UpdateValuesResponse, sheetName string, dataRows int) string {
	return fmt.Sprintf("Wrote %d data row(s) plus headers to %s (%s, %d cells)",
		dataRows, sheetName, r.UpdatedRange, r.UpdatedCells)
}
