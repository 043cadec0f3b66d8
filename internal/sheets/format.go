package sheets

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGB color with channel values in [0, 1], as the Sheets API
// represents colors.
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

// ParseColor converts a hex color string like "#FF0000" or "FF0000" into
// a Sheets API color.
func ParseColor(hex string) (*Color, error) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return nil, fmt.Errorf("invalid color %q: expected 6 hex digits", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return &Color{
		Red:   float64(v>>16&0xFF) / 255,
		Green: float64(v>>8&0xFF) / 255,
		Blue:  float64(v&0xFF) / 255,
	}, nil
}

// CellFormat describes the formatting options a repeatCell request can apply.
// Nil and empty fields are omitted from the update mask, so untouched
// properties keep their existing formatting.
type CellFormat struct {
	Bold                *bool
	Italic              *bool
	FontSize            *int64
	FontColor           *Color
	BackgroundColor     *Color
	HorizontalAlignment string
	NumberFormatType    string
	NumberFormatPattern string
}

// request builds the userEnteredFormat payload and the matching fields mask.
// An empty mask means no options were set.
func (f CellFormat) request() (map[string]interface{}, string) {
	cell := make(map[string]interface{})
	var fields []string

	if f.BackgroundColor != nil {
		cell["backgroundColor"] = f.BackgroundColor
		fields = append(fields, "backgroundColor")
	}
	if f.HorizontalAlignment != "" {
		cell["horizontalAlignment"] = strings.ToUpper(f.HorizontalAlignment)
		fields = append(fields, "horizontalAlignment")
	}
	if f.NumberFormatType != "" {
		nf := map[string]interface{}{"type": strings.ToUpper(f.NumberFormatType)}
		if f.NumberFormatPattern != "" {
			nf["pattern"] = f.NumberFormatPattern
		}
		cell["numberFormat"] = nf
		fields = append(fields, "numberFormat")
	}

	textFormat := make(map[string]interface{})
	if f.Bold != nil {
		textFormat["bold"] = *f.Bold
		fields = append(fields, "textFormat.bold")
	}
	if f.Italic != nil {
		textFormat["italic"] = *f.Italic
		fields = append(fields, "textFormat.italic")
	}
	if f.FontSize != nil {
		textFormat["fontSize"] = *f.FontSize
		fields = append(fields, "textFormat.fontSize")
	}
	if f.FontColor != nil {
		textFormat["foregroundColor"] = f.FontColor
		fields = append(fields, "textFormat.foregroundColor")
	}
	if len(textFormat) > 0 {
		cell["textFormat"] = textFormat
	}

	if len(fields) == 0 {
		return nil, ""
	}
	return cell, "userEnteredFormat(" + strings.Join(fields, ",") + ")"
}
