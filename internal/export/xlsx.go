// Package export renders masked résumé listings as spreadsheets.
package export

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-reader/internal/types"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the listing.
const SheetName = "Resumes"

// Headers is the column order of the exported sheet.
var Headers = []string{"ID", "Name", "Email", "Phone", "Skills", "File Name"}

// ContentType is the media type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteMaskedXLSX writes one row per view below a header row.
func WriteMaskedXLSX(views []types.MaskedResumeView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if index, _ := f.GetSheetIndex(SheetName); index == -1 {
		if _, err := f.NewSheet(SheetName); err != nil {
			return nil, fmt.Errorf("xlsx sheet: %w", err)
		}
	}
	activeIndex, _ := f.GetSheetIndex(SheetName)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	for i, v := range views {
		row := i + 2
		write := func(col int, value string) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellStr(SheetName, cell, value)
		}
		write(1, v.ID)
		write(2, v.Name)
		write(3, v.Email)
		write(4, v.Phone)
		write(5, strings.Join(v.Skills, ", "))
		write(6, v.FileName)
	}

	_ = f.SetColWidth(SheetName, "A", "A", 38) // id
	_ = f.SetColWidth(SheetName, "B", "B", 24) // name
	_ = f.SetColWidth(SheetName, "C", "C", 30) // email
	_ = f.SetColWidth(SheetName, "D", "D", 14) // phone
	_ = f.SetColWidth(SheetName, "E", "E", 60) // skills
	_ = f.SetColWidth(SheetName, "F", "F", 30) // file

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
