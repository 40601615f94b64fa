package datasets

import (
	"fmt"
	"strings"
)

// CreateTableSQL generates a CREATE TABLE statement with explicit column
// types. types may be shorter than columns; missing entries default to TEXT.
func CreateTableSQL(tableName string, columnNames, types []string) string {
	var builder strings.Builder
	builder.Grow(len(tableName) + len(columnNames)*20)

	builder.WriteString("CREATE TABLE ")
	builder.WriteString(tableName)
	builder.WriteString(" (")
	for i, name := range columnNames {
		colType := "TEXT"
		if i < len(types) && types[i] != "" {
			colType = types[i]
		}
		builder.WriteString(name)
		builder.WriteByte(' ')
		builder.WriteString(colType)
		if i < len(columnNames)-1 {
			builder.WriteString(", ")
		}
	}
	builder.WriteByte(')')
	return builder.String()
}

// InsertSQL generates a placeholder INSERT statement for the table.
func InsertSQL(table string, fields []string) (string, error) {
	if table == "" || len(fields) == 0 {
		return "", fmt.Errorf("table name and fields are required")
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(fields, ","),
		strings.Repeat("?,", len(fields)-1)+"?",
	), nil
}
