package enulog

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/15226124477/method"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

var cycleColumns = []string{"cycle", "samples", "mean_E", "mean_N", "mean_U", "CEP50", "CEP95", "RMS_H", "STD_U"}

func cycleRow(m CycleMetrics) []interface{} {
	return []interface{}{
		m.Cycle,
		m.Samples,
		method.Decimal(m.MeanE, 3),
		method.Decimal(m.MeanN, 3),
		method.Decimal(m.MeanU, 3),
		method.Decimal(m.CEP50, 3),
		method.Decimal(m.CEP95, 3),
		method.Decimal(m.RmsH, 3),
		method.Decimal(m.StdU, 3),
	}
}

func globalRows(g MetricsSummary) [][2]interface{} {
	return [][2]interface{}{
		{"samples", g.Samples},
		{"mean_E", method.Decimal(g.MeanE, 3)},
		{"mean_N", method.Decimal(g.MeanN, 3)},
		{"mean_U", method.Decimal(g.MeanU, 3)},
		{"CEP50", method.Decimal(g.CEP50, 3)},
		{"CEP95", method.Decimal(g.CEP95, 3)},
		{"RMS_H", method.Decimal(g.RmsH, 3)},
		{"STD_U", method.Decimal(g.StdU, 3)},
		{"mean_TTSF", method.Decimal(g.MeanTTSF, 3)},
	}
}

// WriteReport prints the per-cycle table and the global metrics block.
func WriteReport(w io.Writer, perCycle []CycleMetrics, global MetricsSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintln(w, "\nMetrics per cycle"); err != nil {
		return err
	}
	for i, col := range cycleColumns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col)
	}
	fmt.Fprintln(tw, "\t")
	for _, m := range perCycle {
		for i, v := range cycleRow(m) {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, v)
		}
		fmt.Fprintln(tw, "\t")
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "\nGlobal metrics"); err != nil {
		return err
	}
	for _, kv := range globalRows(global) {
		if _, err := fmt.Fprintf(w, "%s: %v\n", kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// ExportWorkbook writes the metrics and the convergence series to an xlsx file.
func ExportWorkbook(xlsxPath string, perCycle []CycleMetrics, global MetricsSummary, conv []ConvergencePoint) error {
	xlsx := excelize.NewFile()
	defer func() {
		if err := xlsx.Close(); err != nil {
			log.Error(err)
		}
	}()

	if err := xlsx.SetSheetName("Sheet1", "Cycles"); err != nil {
		return err
	}
	if err := toExcelRow(xlsx, "Cycles", 1, toInterfaces(cycleColumns)); err != nil {
		return err
	}
	for i, m := range perCycle {
		if err := toExcelRow(xlsx, "Cycles", i+2, cycleRow(m)); err != nil {
			return err
		}
	}

	if _, err := xlsx.NewSheet("Global"); err != nil {
		return err
	}
	for i, kv := range globalRows(global) {
		if err := toExcelRow(xlsx, "Global", i+1, kv[:]); err != nil {
			return err
		}
	}

	if _, err := xlsx.NewSheet("Convergence"); err != nil {
		return err
	}
	if err := toExcelRow(xlsx, "Convergence", 1, []interface{}{"datetime", "r_cum_rms"}); err != nil {
		return err
	}
	for i, p := range conv {
		row := []interface{}{p.Time.Format(epochLayout), method.Decimal(p.Rms, 4)}
		if err := toExcelRow(xlsx, "Convergence", i+2, row); err != nil {
			return err
		}
	}

	if err := xlsx.SaveAs(xlsxPath); err != nil {
		return fmt.Errorf("save %s: %w", xlsxPath, err)
	}
	log.Info("workbook written to ", xlsxPath)
	return nil
}

// toExcelRow fills one sheet row starting at column A.
func toExcelRow(xlsx *excelize.File, sheetName string, row int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err = xlsx.SetCellValue(sheetName, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
