package model

// Table is a materialized result set. Column order and names come from the
// result set itself.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewTable creates a table with the given columns and no rows
func NewTable(columns []string) *Table {
	if columns == nil {
		columns = []string{}
	}
	return &Table{
		Columns: columns,
		Rows:    [][]any{},
	}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
