package sheets

import "fmt"

// Spreadsheet mirrors the subset of the Sheets API spreadsheet resource
// the gateway works with.
type Spreadsheet struct {
	SpreadsheetID  string                 `json:"spreadsheetId"`
	Properties     *SpreadsheetProperties `json:"properties,omitempty"`
	Sheets         []Sheet                `json:"sheets,omitempty"`
	SpreadsheetURL string                 `json:"spreadsheetUrl,omitempty"`
}

type SpreadsheetProperties struct {
	Title    string `json:"title,omitempty"`
	Locale   string `json:"locale,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type Sheet struct {
	Properties *SheetProperties `json:"properties,omitempty"`
}

type SheetProperties struct {
	SheetID        int64           `json:"sheetId"`
	Title          string          `json:"title,omitempty"`
	Index          int64           `json:"index,omitempty"`
	SheetType      string          `json:"sheetType,omitempty"`
	GridProperties *GridProperties `json:"gridProperties,omitempty"`
}

type GridProperties struct {
	RowCount    int64 `json:"rowCount,omitempty"`
	ColumnCount int64 `json:"columnCount,omitempty"`
}

// ValueRange carries cell data for a single A1 range.
type ValueRange struct {
	Range          string  `json:"range,omitempty"`
	MajorDimension string  `json:"majorDimension,omitempty"`
	Values         [][]any `json:"values,omitempty"`
}

type UpdateValuesResponse struct {
	SpreadsheetID  string `json:"spreadsheetId"`
	UpdatedRange   string `json:"updatedRange,omitempty"`
	UpdatedRows    int64  `json:"updatedRows,omitempty"`
	UpdatedColumns int64  `json:"updatedColumns,omitempty"`
	UpdatedCells   int64  `json:"updatedCells,omitempty"`
}

type AppendValuesResponse struct {
	SpreadsheetID string                `json:"spreadsheetId"`
	TableRange    string                `json:"tableRange,omitempty"`
	Updates       *UpdateValuesResponse `json:"updates,omitempty"`
}

type ClearValuesResponse struct {
	SpreadsheetID string `json:"spreadsheetId"`
	ClearedRange  string `json:"clearedRange,omitempty"`
}

type BatchUpdateResponse struct {
	SpreadsheetID string           `json:"spreadsheetId"`
	Replies       []map[string]any `json:"replies,omitempty"`
}

// DriveFile is the subset of the Drive file resource used when listing
// and searching spreadsheets.
type DriveFile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType,omitempty"`
	CreatedTime  string `json:"createdTime,omitempty"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	WebViewLink  string `json:"webViewLink,omitempty"`
}

type DriveFileList struct {
	Files         []DriveFile `json:"files"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
}

type Permission struct {
	ID           string `json:"id,omitempty"`
	Type         string `json:"type,omitempty"`
	Role         string `json:"role,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

type DriveUser struct {
	DisplayName  string `json:"displayName,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

type DriveAbout struct {
	User *DriveUser `json:"user,omitempty"`
}

// GridRange addresses a rectangular block of cells on a sheet. End indices
// are exclusive, per the Sheets API convention.
type GridRange struct {
	SheetID          int64 `json:"sheetId"`
	StartRowIndex    int64 `json:"startRowIndex"`
	EndRowIndex      int64 `json:"endRowIndex"`
	StartColumnIndex int64 `json:"startColumnIndex"`
	EndColumnIndex   int64 `json:"endColumnIndex"`
}

// APIError represents a non-2xx response from the Sheets or Drive API,
// parsed from Google's standard error envelope.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("google api error %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("google api error %d: %s", e.StatusCode, e.Message)
}
