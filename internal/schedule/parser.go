package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedInput is returned when the grid is too short to hold a date row,
// a header row and at least one data row.
var ErrMalformedInput = errors.New("malformed schedule: data is too short or empty")

// DefaultArea is assigned to mosques listed before the first area header.
const DefaultArea = "General"

// minRows is the date row + header row + one body row.
const minRows = 3

// Fixed sheet positions.
const (
	lastUpdatedRow = 0
	headerRow      = 1
	firstBodyRow   = 2
	nameCol        = 0
	firstTimeCol   = 1
	urduNameCol    = 6
)

// absentMarker is what spreadsheet exports write into empty numeric cells.
const absentMarker = "nan"

type parseMode int

const (
	modeMainTable parseMode = iota
	modeFooter
)

// parser holds the state of a single Parse call.
type parser struct {
	labels PrayerContext
	mode   parseMode
	area   string
	result *ParseResult
}

// Parse classifies the rows of grid into mosques, area headers and footer notes.
//
// Rows 0 and 1 are fixed: row 0 column 0 is the last-updated marker and row 1
// columns 1-5 carry the prayer labels. Every later row is handled by the
// current mode. The switch to footer mode happens once, on the first row whose
// name cell reads "note", "notes" or contains "note:", and that row is itself
// treated as a footer row.
//
// Parse never returns a partial result.
func Parse(grid RawGrid) (*ParseResult, error) {
	if len(grid) < minRows {
		return nil, fmt.Errorf("%w: got %d rows, need at least %d", ErrMalformedInput, len(grid), minRows)
	}

	p := &parser{
		labels: headerLabels(grid[headerRow]),
		mode:   modeMainTable,
		area:   DefaultArea,
	}
	p.result = &ParseResult{
		LastUpdated:   lastUpdated(grid[lastUpdatedRow]),
		PrayerContext: p.labels,
		Mosques:       []Mosque{},
		FooterNotes:   []string{},
	}

	for _, row := range grid[firstBodyRow:] {
		if len(row) == 0 {
			continue
		}

		label := strings.TrimSpace(cell(row, nameCol))
		if p.mode == modeMainTable && isFooterMarker(label) {
			p.mode = modeFooter
		}

		switch p.mode {
		case modeFooter:
			p.footerRow(row)
		default:
			p.tableRow(label, row)
		}
	}

	return p.result, nil
}

// tableRow handles one row of the main schedule table.
func (p *parser) tableRow(label string, row []string) {
	var times [len(PrayerKeys)]string
	hasTime := false
	for i := range PrayerKeys {
		times[i] = cleanCell(cell(row, firstTimeCol+i))
		if times[i] != "" {
			hasTime = true
		}
	}

	switch {
	case !hasTime && label == "":
		// blank separator
	case !hasTime:
		p.area = label
	default:
		// A row with times but no name is kept with an empty NameEn.
		p.result.Mosques = append(p.result.Mosques, p.mosque(label, cleanCell(cell(row, urduNameCol)), times))
	}
}

func (p *parser) mosque(name, urdu string, times [len(PrayerKeys)]string) Mosque {
	m := Mosque{
		Area:   p.area,
		NameEn: name,
		NameUr: urdu,
		Times:  make(map[PrayerKey]PrayerSlot, len(PrayerKeys)),
	}
	for i, key := range PrayerKeys {
		m.Times[key] = PrayerSlot{Time: times[i], Label: p.labels[key]}
	}
	return m
}

// footerRow flattens a footer row into one note.
func (p *parser) footerRow(row []string) {
	parts := make([]string, 0, len(row))
	for _, v := range row {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	if note := strings.Join(parts, " "); note != "" {
		p.result.FooterNotes = append(p.result.FooterNotes, note)
	}
}

func isFooterMarker(label string) bool {
	key := strings.ToLower(label)
	return strings.Contains(key, "note:") || key == "note" || key == "notes"
}

func headerLabels(row []string) PrayerContext {
	labels := make(PrayerContext, len(PrayerKeys))
	for i, key := range PrayerKeys {
		labels[key] = HeaderLabel(cell(row, firstTimeCol+i))
	}
	return labels
}

// HeaderLabel extracts the trailing segment of a header cell such as
// "Fajr - فجر". Cells without a dash yield the whole trimmed text.
func HeaderLabel(text string) string {
	if text == "" {
		return ""
	}
	parts := strings.Split(text, "-")
	return strings.TrimSpace(parts[len(parts)-1])
}

func lastUpdated(row []string) *string {
	v := cell(row, nameCol)
	if v == "" {
		return nil
	}
	return &v
}

// cleanCell trims v and maps the spreadsheet absence marker to "".
func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	if v == absentMarker {
		return ""
	}
	return v
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
