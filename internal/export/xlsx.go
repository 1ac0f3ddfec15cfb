package export

import (
	"fmt"
	"io"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/xuri/excelize/v2"
)

// SheetMaxes is the first sheet of a cycle workbook.
const SheetMaxes = "Training maxes"

// WeekSheetName names the sheet holding week n.
func WeekSheetName(n int) string {
	return fmt.Sprintf("Week %d", n)
}

// BuildWorkbook lays plan out as a workbook: the training maxes on the first
// sheet, then one sheet per week with the CSV columns.
func BuildWorkbook(index int, plan cycle.CyclePlan) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetMaxes); err != nil {
		f.Close()
		return nil, fmt.Errorf("renaming first sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	weightStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating weight style: %w", err)
	}

	if err := writeMaxesSheet(f, index, plan, headerStyle, weightStyle); err != nil {
		f.Close()
		return nil, err
	}
	for _, wp := range plan.Weeks {
		if err := writeWeekSheet(f, wp, headerStyle, weightStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("week %d: %w", wp.Week, err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// WriteXLSX writes the cycle workbook to w.
func WriteXLSX(w io.Writer, index int, plan cycle.CyclePlan) error {
	f, err := BuildWorkbook(index, plan)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeMaxesSheet(f *excelize.File, index int, plan cycle.CyclePlan, headerStyle, weightStyle int) error {
	sheet := SheetMaxes
	if err := f.SetCellValue(sheet, "A1", fmt.Sprintf("Cycle %d", index)); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A3", &[]any{"Lift", "Training max"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A3", "B3", headerStyle); err != nil {
		return err
	}

	row := 4
	for _, l := range plan.TrainingMaxes.Lifts() {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		tm, _ := plan.TrainingMaxes[l].Float64()
		if err := f.SetSheetRow(sheet, cell, &[]any{string(l), tm}); err != nil {
			return err
		}
		row++
	}
	if row > 4 {
		top, _ := excelize.CoordinatesToCellName(2, 4)
		bottom, _ := excelize.CoordinatesToCellName(2, row-1)
		if err := f.SetCellStyle(sheet, top, bottom, weightStyle); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "B", 16)
}

func writeWeekSheet(f *excelize.File, wp cycle.WeekPlan, headerStyle, weightStyle int) error {
	sheet := WeekSheetName(wp.Week)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := make([]any, len(CSVHeader))
	for i, h := range CSVHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", headerStyle); err != nil {
		return err
	}

	row := 2
	for _, ls := range wp.Lifts {
		for _, s := range ls.Sets {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			weight, _ := s.Weight.Float64()
			if err := f.SetSheetRow(sheet, cell, &[]any{string(ls.Lift), s.Percentile, weight, s.Reps.String()}); err != nil {
				return err
			}
			row++
		}
	}
	if row > 2 {
		bottom, _ := excelize.CoordinatesToCellName(3, row-1)
		if err := f.SetCellStyle(sheet, "C2", bottom, weightStyle); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 16); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "D", 12)
}
