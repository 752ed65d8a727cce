package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"motor-monitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func exportSamples() []models.Sample {
	return []models.Sample{
		{ID: 1, MotorID: 1, Temperature: 72.5, Voltage: 220.0, Timestamp: time.Now()},
		{ID: 2, MotorID: 1, Temperature: 73.1, Voltage: 221.4, Timestamp: time.Now()},
	}
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"csv", "txt", "xlsx"} {
		format, err := ParseFormat(valid)
		require.NoError(t, err)
		assert.Equal(t, Format(valid), format)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 6, 1, 14, 30, 45, 0, time.UTC)
	assert.Equal(t, "motor_2_data_20250601_143045.csv", Filename(2, FormatCSV, now))
	assert.Equal(t, "motor_1_data_20250601_143045.xlsx", Filename(1, FormatXLSX, now))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportSamples()))

	assert.Equal(t, "Index,Temperature,Voltage\n1,72.50,220.00\n2,73.10,221.40\n", buf.String())
}

func TestWriteTXT(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTXT(&buf, exportSamples()))

	assert.Equal(t, "Index\tTemperature\tVoltage\n1\t72.50\t220.00\n2\t73.10\t221.40\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motor_1.xlsx")
	require.NoError(t, WriteXLSX(path, 1, exportSamples()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheet := "Motor 1"
	header, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Index", header)

	temp, err := f.GetCellValue(sheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "72.5", temp)
}

func TestExport_CSV(t *testing.T) {
	dir := t.TempDir()

	path, err := Export(dir, 1, FormatCSV, exportSamples())
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestExport_EmptyHistory(t *testing.T) {
	_, err := Export(t.TempDir(), 1, FormatCSV, nil)
	assert.Error(t, err)
}
