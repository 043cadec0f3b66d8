package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#FF0000")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c.Red, 0.001)
	assert.InDelta(t, 0.0, c.Green, 0.001)
	assert.InDelta(t, 0.0, c.Blue, 0.001)

	c, err = ParseColor("00FF80")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, c.Red, 0.001)
	assert.InDelta(t, 1.0, c.Green, 0.001)
	assert.InDelta(t, 0x80/255.0, c.Blue, 0.001)

	for _, bad := range []string{"", "#FFF", "red", "#GGGGGG"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, "color %q should be rejected", bad)
	}
}

func TestCellFormat_Request(t *testing.T) {
	bold := true
	size := int64(12)
	f := CellFormat{
		Bold:                &bold,
		FontSize:            &size,
		BackgroundColor:     &Color{Red: 1},
		HorizontalAlignment: "center",
		NumberFormatType:    "currency",
		NumberFormatPattern: "$#,##0.00",
	}

	cell, fields := f.request()
	assert.Equal(t, "userEnteredFormat(backgroundColor,horizontalAlignment,numberFormat,textFormat.bold,textFormat.fontSize)", fields)

	assert.Equal(t, "CENTER", cell["horizontalAlignment"])
	nf := cell["numberFormat"].(map[string]interface{})
	assert.Equal(t, "CURRENCY", nf["type"])
	assert.Equal(t, "$#,##0.00", nf["pattern"])
	tf := cell["textFormat"].(map[string]interface{})
	assert.Equal(t, true, tf["bold"])
	assert.Equal(t, int64(12), tf["fontSize"])
	assert.NotContains(t, tf, "italic")
}

func TestCellFormat_Empty(t *testing.T) {
	cell, fields := CellFormat{}.request()
	assert.Nil(t, cell)
	assert.Empty(t, fields)
}
