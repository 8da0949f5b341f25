package export

// Dataset is a rendered table, one row per agenda entry.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}
