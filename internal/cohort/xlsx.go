package cohort

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSXRecords extracts the rows of one worksheet as string records, the
// header row first. sheetName wins over sheetIndex; sheetIndex is 1-based and
// defaults to the first sheet. Every row is padded or cut to the header width.
func ReadXLSXRecords(path, sheetName string, sheetIndex int) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	sheet, err := pickSheet(sheets, sheetName, sheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%w in workbook '%s'; available sheets: %s",
			err, filepath.Base(path), strings.Join(sheets, ", "))
	}
	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read worksheet %s: %w", sheet, err)
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, fmt.Errorf("worksheet %s in '%s' is empty", sheet, filepath.Base(path))
	}
	width := len(records[0])
	for i, r := range records {
		if len(r) < width {
			tmp := make([]string, width)
			copy(tmp, r)
			records[i] = tmp
		} else if len(r) > width {
			records[i] = r[:width]
		}
	}
	return records, nil
}

func pickSheet(sheets []string, name string, index int) (string, error) {
	if name != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, name) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found", name)
	}
	if index <= 0 {
		index = 1
	}
	if index > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range", index)
	}
	return sheets[index-1], nil
}
