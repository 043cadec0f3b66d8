package main

import (
	"strings"
	"testing"

	"github.com/bobmcallan/sheets-mcp/internal/sheets"
)

func TestFormatSpreadsheet(t *testing.T) {
	ss := &sheets.Spreadsheet{
		SpreadsheetID:  "abc123",
		SpreadsheetURL: "https://docs.google.com/spreadsheets/d/abc123/edit",
		Properties:     &sheets.SpreadsheetProperties{Title: "Budget"},
		Sheets: []sheets.Sheet{
			{Properties: &sheets.SheetProperties{
				SheetID:        0,
				Title:          "Sheet1",
				GridProperties: &sheets.GridProperties{RowCount: 1000, ColumnCount: 26},
			}},
		},
	}

	out := formatSpreadsheet(ss)
	for _, want := range []string{"Budget", "abc123", "https://docs.google.com/spreadsheets/d/abc123", "Sheet1", "1000", "26"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output should contain %q:\n%s", want, out)
		}
	}
}

func TestFormatValueRange_Grid(t *testing.T) {
	vr := &sheets.ValueRange{
		Range: "Sheet1!A1:B3",
		Values: [][]interface{}{
			{"Name", "Amount"},
			{"Rent", 1200},
			{"Food"}, // ragged row
		},
	}

	out := formatValueRange(vr)
	if !strings.Contains(out, "| Name | Amount |") {
		t.Errorf("Header row should be rendered as a table row:\n%s", out)
	}
	if !strings.Contains(out, "|---|---|") {
		t.Errorf("Header separator should match the column count:\n%s", out)
	}
	if !strings.Contains(out, "| Food |  |") {
		t.Errorf("Ragged rows should be padded to the full width:\n%s", out)
	}
}

func TestFormatValueRange_Empty(t *testing.T) {
	out := formatValueRange(&sheets.ValueRange{Range: "Sheet1!A1"})
	if !strings.Contains(out, "No values found") {
		t.Errorf("Empty range should be reported:\n%s", out)
	}
}

func TestFormatFileList(t *testing.T) {
	out := formatFileList(&sheets.DriveFileList{
		Files: []sheets.DriveFile{
			{ID: "f1", Name: "Budget", ModifiedTime: "2026-08-01T10:00:00Z"},
		},
		NextPageToken: "tok",
	})
	if !strings.Contains(out, "Budget") || !strings.Contains(out, "f1") {
		t.Errorf("Listing should include file name and ID:\n%s", out)
	}
	if !strings.Contains(out, "nextPageToken: tok") {
		t.Errorf("Listing should surface the pagination token:\n%s", out)
	}

	empty := formatFileList(&sheets.DriveFileList{})
	if !strings.Contains(empty, "No spreadsheets found") {
		t.Errorf("Empty listing should be reported:\n%s", empty)
	}
}
