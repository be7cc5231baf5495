// Package schedule turns the published prayer-time spreadsheet into mosque records.
//
// The sheet has no type column. Three kinds of rows share one table and are
// told apart only by which cells are filled:
//
//   - area headers: a name and no times; they set the area of the rows below
//   - mosque rows: a name (column 0), five times (columns 1-5) and an Urdu
//     name (column 6)
//   - footer rows: everything from the first "Note:" row to the end
//
// [Parse] walks the rows once with a two-state machine (main table, footer).
// It performs no I/O and keeps no state between calls, so it is safe to call
// from concurrent fetches.
//
// The grouping helpers ([Areas], [MosqueNames], [GroupByArea]) back the area
// and mosque filters of the web page.
package schedule
