// Package sheets provides a thin REST client for the Google Sheets v4 and
// Drive v3 APIs, covering the operations the gateway exposes as tools.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bobmcallan/sheets-mcp/internal/common"
)

const (
	defaultSheetsURL = "https://sheets.googleapis.com/v4"
	defaultDriveURL  = "https://www.googleapis.com/drive/v3"

	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

	// Drive list fields requested for list/search results.
	driveListFields = "nextPageToken,files(id,name,mimeType,createdTime,modifiedTime,webViewLink)"
)

// ClientConfig holds overridable endpoints for the Google APIs. Zero values
// select the production endpoints; tests point them at local servers.
type ClientConfig struct {
	SheetsURL string
	DriveURL  string
	Timeout   time.Duration
}

// Service talks to the Sheets and Drive APIs on behalf of tool handlers.
type Service struct {
	sheetsURL  string
	driveURL   string
	httpClient *http.Client
	auth       AuthMode
	logger     *common.Logger
}

// NewService creates a Sheets/Drive service using the given auth mode.
func NewService(cfg ClientConfig, auth AuthMode, logger *common.Logger) *Service {
	sheetsURL := cfg.SheetsURL
	if sheetsURL == "" {
		sheetsURL = defaultSheetsURL
	}
	driveURL := cfg.DriveURL
	if driveURL == "" {
		driveURL = defaultDriveURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Service{
		sheetsURL:  sheetsURL,
		driveURL:   driveURL,
		httpClient: &http.Client{Timeout: timeout},
		auth:       auth,
		logger:     logger,
	}
}

// do performs an authenticated JSON request against the given absolute URL
// and decodes the response into out when out is non-nil.
func (s *Service) do(ctx context.Context, method, fullURL string, data interface{}, out interface{}) error {
	s.logger.Debug().
		Str("method", method).
		Str("url", fullURL).
		Msg("Google API Request")

	var bodyReader io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return err
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := s.auth.authenticate(req); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error().Err(err).Str("url", fullURL).Dur("duration", duration).Msg("Google API Request Failed")
		return fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	s.logger.Debug().
		Str("status", resp.Status).
		Int("status_code", resp.StatusCode).
		Dur("duration", duration).
		Msg("Google API Response")

	if resp.StatusCode >= 400 {
		return parseAPIError(resp.StatusCode, body)
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// parseAPIError extracts Google's standard error envelope from an error
// response body.
func parseAPIError(statusCode int, body []byte) error {
	var envelope struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		return &APIError{
			StatusCode: statusCode,
			Status:     envelope.Error.Status,
			Message:    envelope.Error.Message,
		}
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    string(bytes.TrimSpace(body)),
	}
}

// valuesURL builds a spreadsheets.values URL for the given range, with an
// optional action suffix like ":append" or ":clear".
func (s *Service) valuesURL(spreadsheetID, valueRange, action string, query url.Values) string {
	u := fmt.Sprintf("%s/spreadsheets/%s/values/%s%s",
		s.sheetsURL, url.PathEscape(spreadsheetID), url.PathEscape(valueRange), action)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// CreateSpreadsheet creates a new spreadsheet with the given title. With
// sheetNames set, the spreadsheet starts with one tab per name instead of
// the backend's default single tab.
func (s *Service) CreateSpreadsheet(ctx context.Context, title string, sheetNames []string) (*Spreadsheet, error) {
	body := map[string]interface{}{
		"properties": map[string]interface{}{"title": title},
	}
	if len(sheetNames) > 0 {
		tabs := make([]map[string]interface{}, len(sheetNames))
		for i, name := range sheetNames {
			tabs[i] = map[string]interface{}{
				"properties": map[string]interface{}{"title": name},
			}
		}
		body["sheets"] = tabs
	}
	var result Spreadsheet
	if err := s.do(ctx, http.MethodPost, s.sheetsURL+"/spreadsheets", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetSpreadsheet retrieves spreadsheet metadata including its sheet tabs.
func (s *Service) GetSpreadsheet(ctx context.Context, spreadsheetID string) (*Spreadsheet, error) {
	u := fmt.Sprintf("%s/spreadsheets/%s", s.sheetsURL, url.PathEscape(spreadsheetID))
	var result Spreadsheet
	if err := s.do(ctx, http.MethodGet, u, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateValues overwrites cells in the given A1 range.
func (s *Service) UpdateValues(ctx context.Context, spreadsheetID, valueRange string, values [][]interface{}, valueInputOption string) (*UpdateValuesResponse, error) {
	if valueInputOption == "" {
		valueInputOption = "USER_ENTERED"
	}
	q := url.Values{"valueInputOption": {valueInputOption}}
	body := ValueRange{Range: valueRange, Values: values}
	var result UpdateValuesResponse
	if err := s.do(ctx, http.MethodPut, s.valuesURL(spreadsheetID, valueRange, "", q), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AppendValues appends rows after the last row of the table in the range.
func (s *Service) AppendValues(ctx context.Context, spreadsheetID, valueRange string, values [][]interface{}, valueInputOption string) (*AppendValuesResponse, error) {
	if valueInputOption == "" {
		valueInputOption = "USER_ENTERED"
	}
	q := url.Values{"valueInputOption": {valueInputOption}}
	body := ValueRange{Range: valueRange, Values: values}
	var result AppendValuesResponse
	if err := s.do(ctx, http.MethodPost, s.valuesURL(spreadsheetID, valueRange, ":append", q), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetValues reads cell values from the given A1 range. renderOption and
// majorDimension are optional; empty strings take the backend defaults
// (FORMATTED_VALUE, ROWS).
func (s *Service) GetValues(ctx context.Context, spreadsheetID, valueRange, renderOption, majorDimension string) (*ValueRange, error) {
	q := url.Values{}
	if renderOption != "" {
		q.Set("valueRenderOption", renderOption)
	}
	if majorDimension != "" {
		q.Set("majorDimension", majorDimension)
	}
	var result ValueRange
	if err := s.do(ctx, http.MethodGet, s.valuesURL(spreadsheetID, valueRange, "", q), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ClearValues removes values from the given A1 range, leaving formatting intact.
func (s *Service) ClearValues(ctx context.Context, spreadsheetID, valueRange string) (*ClearValuesResponse, error) {
	var result ClearValuesResponse
	if err := s.do(ctx, http.MethodPost, s.valuesURL(spreadsheetID, valueRange, ":clear", nil), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// batchUpdate sends structural requests to the spreadsheet batchUpdate endpoint.
func (s *Service) batchUpdate(ctx context.Context, spreadsheetID string, requests []map[string]interface{}) (*BatchUpdateResponse, error) {
	u := fmt.Sprintf("%s/spreadsheets/%s:batchUpdate", s.sheetsURL, url.PathEscape(spreadsheetID))
	body := map[string]interface{}{"requests": requests}
	var result BatchUpdateResponse
	if err := s.do(ctx, http.MethodPost, u, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddSheet adds a new tab with the given title to a spreadsheet.
func (s *Service) AddSheet(ctx context.Context, spreadsheetID, title string) (*BatchUpdateResponse, error) {
	return s.batchUpdate(ctx, spreadsheetID, []map[string]interface{}{
		{
			"addSheet": map[string]interface{}{
				"properties": map[string]interface{}{"title": title},
			},
		},
	})
}

// DeleteSheet removes the tab with the given numeric sheet ID.
func (s *Service) DeleteSheet(ctx context.Context, spreadsheetID string, sheetID int64) (*BatchUpdateResponse, error) {
	return s.batchUpdate(ctx, spreadsheetID, []map[string]interface{}{
		{
			"deleteSheet": map[string]interface{}{"sheetId": sheetID},
		},
	})
}

// FormatCells applies the given cell format to a grid range via a repeatCell
// request. The update mask is derived from the fields set in format.
func (s *Service) FormatCells(ctx context.Context, spreadsheetID string, gridRange GridRange, format CellFormat) (*BatchUpdateResponse, error) {
	cell, fields := format.request()
	if fields == "" {
		return nil, fmt.Errorf("no format options specified")
	}
	return s.batchUpdate(ctx, spreadsheetID, []map[string]interface{}{
		{
			"repeatCell": map[string]interface{}{
				"range":  gridRange,
				"cell":   map[string]interface{}{"userEnteredFormat": cell},
				"fields": fields,
			},
		},
	})
}

// ListSpreadsheets lists spreadsheet files visible to the credential.
func (s *Service) ListSpreadsheets(ctx context.Context, pageSize int64, pageToken string) (*DriveFileList, error) {
	return s.driveList(ctx, fmt.Sprintf("mimeType='%s'", spreadsheetMimeType), pageSize, pageToken)
}

// SearchSpreadsheets lists spreadsheet files whose name contains the query.
func (s *Service) SearchSpreadsheets(ctx context.Context, query string, pageSize int64, pageToken string) (*DriveFileList, error) {
	escaped := escapeDriveQuery(query)
	q := fmt.Sprintf("mimeType='%s' and name contains '%s'", spreadsheetMimeType, escaped)
	return s.driveList(ctx, q, pageSize, pageToken)
}

func (s *Service) driveList(ctx context.Context, query string, pageSize int64, pageToken string) (*DriveFileList, error) {
	q := url.Values{
		"q":      {query},
		"fields": {driveListFields},
	}
	if pageSize > 0 {
		q.Set("pageSize", fmt.Sprintf("%d", pageSize))
	}
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	var result DriveFileList
	if err := s.do(ctx, http.MethodGet, s.driveURL+"/files?"+q.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// escapeDriveQuery escapes single quotes and backslashes in a Drive query term.
func escapeDriveQuery(term string) string {
	var b bytes.Buffer
	for _, r := range term {
		if r == '\'' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DeleteSpreadsheet permanently removes a spreadsheet file from Drive.
func (s *Service) DeleteSpreadsheet(ctx context.Context, spreadsheetID string) error {
	u := fmt.Sprintf("%s/files/%s", s.driveURL, url.PathEscape(spreadsheetID))
	return s.do(ctx, http.MethodDelete, u, nil, nil)
}

// ShareSpreadsheet grants a user access to a spreadsheet.
func (s *Service) ShareSpreadsheet(ctx context.Context, spreadsheetID, emailAddress, role string, sendNotification bool) (*Permission, error) {
	if role == "" {
		role = "writer"
	}
	q := url.Values{"sendNotificationEmail": {fmt.Sprintf("%t", sendNotification)}}
	u := fmt.Sprintf("%s/files/%s/permissions?%s", s.driveURL, url.PathEscape(spreadsheetID), q.Encode())
	body := map[string]interface{}{
		"type":         "user",
		"role":         role,
		"emailAddress": emailAddress,
	}
	var result Permission
	if err := s.do(ctx, http.MethodPost, u, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyConnection checks API reachability and credential validity by
// fetching the authenticated Drive user.
func (s *Service) VerifyConnection(ctx context.Context) (*DriveUser, error) {
	u := s.driveURL + "/about?fields=user"
	var result DriveAbout
	if err := s.do(ctx, http.MethodGet, u, nil, &result); err != nil {
		return nil, err
	}
	if result.User == nil {
		return &DriveUser{}, nil
	}
	return result.User, nil
}

// WriteToSheet writes a header row plus data rows to a sheet starting at A1.
// With clearExisting set, the sheet is cleared first; a failure after the
// clear leaves the sheet cleared and is reported as such.
func (s *Service) WriteToSheet(ctx context.Context, spreadsheetID, sheetName string, headers []string, rows [][]interface{}, clearExisting bool) (*UpdateValuesResponse, error) {
	if clearExisting {
		if _, err := s.ClearValues(ctx, spreadsheetID, sheetName); err != nil {
			return nil, fmt.Errorf("clearing sheet %s: %w", sheetName, err)
		}
	}

	values := make([][]interface{}, 0, len(rows)+1)
	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	values = append(values, headerRow)
	values = append(values, rows...)

	result, err := s.UpdateValues(ctx, spreadsheetID, sheetName+"!A1", values, "")
	if err != nil {
		if clearExisting {
			return nil, fmt.Errorf("writing to sheet %s after clearing it: %w", sheetName, err)
		}
		return nil, fmt.Errorf("writing to sheet %s: %w", sheetName, err)
	}
	return result, nil
}
