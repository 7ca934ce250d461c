package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/yourorg/trading-admin/internal/model"
)

// scanTable materializes every row of a result set in its own column order.
// Byte slices, which drivers use for decimals and strings, become strings.
func scanTable(rows *sqlx.Rows) (*model.Table, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	table := model.NewTable(columns)
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return table, nil
}
