package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"motor-monitor/internal/models"
)

// Format 导出格式
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTXT  Format = "txt"
	FormatXLSX Format = "xlsx"
)

// ParseFormat 解析导出格式字符串
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatTXT, FormatXLSX:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// Filename 导出文件名：motor_{id}_data_{YYYYMMDD_HHMMSS}.{ext}
func Filename(motorID int, format Format, now time.Time) string {
	return fmt.Sprintf("motor_%d_data_%s.%s", motorID, now.Format("20060102_150405"), format)
}

// WriteCSV 写 CSV，列：Index, Temperature, Voltage
func WriteCSV(w io.Writer, samples []models.Sample) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Index", "Temperature", "Voltage"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, s := range samples {
		record := []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(s.Temperature, 'f', 2, 64),
			strconv.FormatFloat(s.Voltage, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTXT 写制表符分隔文本，列同 CSV
func WriteTXT(w io.Writer, samples []models.Sample) error {
	if _, err := fmt.Fprintln(w, "Index\tTemperature\tVoltage"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, s := range samples {
		if _, err := fmt.Fprintf(w, "%d\t%.2f\t%.2f\n", i+1, s.Temperature, s.Voltage); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	return nil
}

// Export 导出电机历史到目录，返回写入的文件路径
func Export(dir string, motorID int, format Format, samples []models.Sample) (string, error) {
	if len(samples) == 0 {
		return "", fmt.Errorf("no data to export for motor %d", motorID)
	}

	path := filepath.Join(dir, Filename(motorID, format, time.Now()))

	switch format {
	case FormatXLSX:
		if err := WriteXLSX(path, motorID, samples); err != nil {
			return "", err
		}
		return path, nil
	case FormatCSV, FormatTXT:
		f, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()

		if format == FormatCSV {
			err = WriteCSV(f, samples)
		} else {
			err = WriteTXT(f, samples)
		}
		if err != nil {
			return "", err
		}
		return path, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
}
