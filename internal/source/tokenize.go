package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/prayerboard/internal/schedule"
)

// Tokenize splits CSV text into a grid without treating any row as a header.
//
// encoding/csv drops blank lines, but the sheet uses them as section breaks,
// so each skipped line is put back as a row holding one empty cell. A
// trailing line break ends in one more empty row. Rows may have different
// widths.
func Tokenize(data []byte) (schedule.RawGrid, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	grid := schedule.RawGrid{}
	nextLine := 1 // physical line following the last record read
	var offset int64

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTokenization, err)
		}

		line, _ := r.FieldPos(0)
		for i := nextLine; i < line; i++ {
			grid = append(grid, blankRow())
		}
		grid = append(grid, record)

		end := r.InputOffset()
		nextLine += bytes.Count(data[offset:end], []byte{'\n'})
		offset = end
	}

	// Everything after the last record is blank lines. A line break opens one
	// more (empty) line, so "a\nb\n" has three rows.
	tail := bytes.Count(data[offset:], []byte{'\n'})
	if len(data) > 0 && (offset == 0 || data[offset-1] == '\n') {
		tail++
	}
	for ; tail > 0; tail-- {
		grid = append(grid, blankRow())
	}

	return grid, nil
}

func blankRow() []string {
	return []string{""}
}
