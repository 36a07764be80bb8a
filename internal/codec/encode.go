package codec

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/gzip"
	"github.com/xuri/excelize/v2"

	"tabcli/internal/meta"
)

const sheetName = "records"

// Encode serializes a snapshot under the given encoding.
func Encode(s *meta.Snapshot, enc Encoding) ([]byte, error) {
	switch enc {
	case JSON:
		return encodeJSON(s)
	case JSONGz:
		return encodeJSONGz(s)
	case CSV:
		return encodeCSV(s)
	case XLSX:
		return encodeXLSX(s)
	}
	return nil, fmt.Errorf("unsupported encoding: %q", enc)
}

func encodeJSON(s *meta.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

func encodeJSONGz(s *meta.Snapshot) ([]byte, error) {
	data, err := encodeJSON(s)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compressing snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compressing snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeCSV(s *meta.Snapshot) ([]byte, error) {
	columns := Columns(s.Records)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range s.Records {
		if err := w.Write(Row(r, columns)); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeXLSX(s *meta.Snapshot) ([]byte, error) {
	columns := Columns(s.Records)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}

	if err := setRow(f, 1, columns); err != nil {
		return nil, err
	}
	for i, r := range s.Records {
		if err := setRow(f, i+2, Row(r, columns)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, rowNum int, values []string) error {
	ref, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("addressing row %d: %w", rowNum, err)
	}
	if err := f.SetSheetRow(sheetName, ref, &values); err != nil {
		return fmt.Errorf("writing row %d: %w", rowNum, err)
	}
	return nil
}
