// Package dataset discovers and parses delimited sensor-current chunk files.
//
// A chunk file is delimited text with a header row. The index column
// row_num and the channel columns nmac3..nmac6 are parsed as float64;
// every other column is kept as raw text.
//
//	files, err := dataset.Discover("data_chunks", ".csv")
//	tbl, err := dataset.Load(files[0], dataset.WithRequired(dataset.RequiredColumns...))
//	if errors.Is(err, dataset.ErrMissingColumns) {
//		// skip the file
//	}
//	win := tbl.Window(0, 1024)
package dataset
