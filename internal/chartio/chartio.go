// Package chartio converts chart series between their wire shapes and
// trendline.PolyLine. Chart series arrive either as [x,y] pairs or as bare
// y-values on a categorical axis, with null marking gaps.
package chartio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	trendline "github.com/vigneshwaranr/highcharts-trendline"
)

// ParseJSON decodes a JSON series into points. Elements may be mixed:
// a 2-element [x,y] array, a bare number (y at the element's index), or
// null (missing sample, decoded as a NaN point so the fitter skips it).
func ParseJSON(data []byte) (trendline.PolyLine, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("series must be a JSON array: %w", err)
	}
	points := make(trendline.PolyLine, 0, len(raw))
	for i, el := range raw {
		if string(el) == "null" {
			points = append(points, trendline.Point{X: math.NaN(), Y: math.NaN()})
			continue
		}
		var pair []float64
		if err := json.Unmarshal(el, &pair); err == nil {
			if len(pair) != 2 {
				return nil, fmt.Errorf("element %d: pair needs exactly 2 values, got %d", i, len(pair))
			}
			points = append(points, trendline.Point{X: pair[0], Y: pair[1]})
			continue
		}
		var y float64
		if err := json.Unmarshal(el, &y); err == nil {
			points = append(points, trendline.Point{X: float64(i), Y: y})
			continue
		}
		return nil, fmt.Errorf("element %d: expected [x,y], number or null, got %s", i, el)
	}
	return points, nil
}

// ReadCSV reads a series with either "x,y" rows or a single y column
// (categorical axis, x = row index). A non-numeric first row is treated as a
// header and skipped.
func ReadCSV(r io.Reader) (trendline.PolyLine, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	points := make(trendline.PolyLine, 0, len(rows))
	idx := 0
	for rowNum, row := range rows {
		if len(row) == 0 {
			continue
		}
		if rowNum == 0 && !numericRow(row) {
			continue
		}
		switch len(row) {
		case 1:
			y, err := strconv.ParseFloat(row[0], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", rowNum+1, err)
			}
			points = append(points, trendline.Point{X: float64(idx), Y: y})
		default:
			x, err := strconv.ParseFloat(row[0], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", rowNum+1, err)
			}
			y, err := strconv.ParseFloat(row[1], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", rowNum+1, err)
			}
			points = append(points, trendline.Point{X: x, Y: y})
		}
		idx++
	}
	return points, nil
}

func numericRow(row []string) bool {
	for _, cell := range row {
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return false
		}
	}
	return true
}

// WriteCSV writes a line as "x,y" rows.
func WriteCSV(w io.Writer, line trendline.PolyLine) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"x", "y"})
	for _, p := range line {
		cw.Write([]string{
			strconv.FormatFloat(p.X, 'g', -1, 64),
			strconv.FormatFloat(p.Y, 'g', -1, 64),
		})
	}
	cw.Flush()
	return cw.Error()
}
