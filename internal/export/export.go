/*
Package export writes analyses to spreadsheet workbooks.
*/
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/shanehull/filinglens/internal/types"
)

const (
	SheetSentiment = "Sentiment"
	SheetKeywords  = "Keywords"
	SheetGraph     = "Graph"
)

// WriteWorkbook writes a as an .xlsx workbook with one sheet per series and
// one for the relation graph edges.
func WriteWorkbook(w io.Writer, a *types.Analysis) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSentiment); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetKeywords, SheetGraph} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	sentiment := [][]any{{"year", "score"}}
	for _, p := range a.Sentiment {
		sentiment = append(sentiment, []any{int(p.Year), p.Value})
	}

	keywords := [][]any{{"text", "count", "relevance", "readability", "year"}}
	for _, k := range a.Keywords {
		keywords = append(keywords, []any{k.Text, k.Count, k.Relevance, k.Readability, int(a.KeywordYear)})
	}

	edges := [][]any{{"source", "target", "label", "x0", "y0", "x1", "y1"}}
	if a.Graph != nil {
		for _, e := range a.Graph.Edges {
			edges = append(edges, []any{e.Source, e.Target, e.Label, e.X0, e.Y0, e.X1, e.Y1})
		}
	}

	for sheet, rows := range map[string][][]any{
		SheetSentiment: sentiment,
		SheetKeywords:  keywords,
		SheetGraph:     edges,
	} {
		if err := writeRows(f, sheet, rows); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
