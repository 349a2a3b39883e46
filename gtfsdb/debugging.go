package gtfsdb

import (
	"fmt"

	"github.com/jamespfennell/gtfs"

	"editor.datatools.dev/internal/logging"
)

func staticDataCounts(staticData *gtfs.Static) map[string]int {
	return map[string]int{
		"stops":  len(staticData.Stops),
		"trips":  len(staticData.Trips),
		"shapes": len(staticData.Shapes),
	}
}

func (c *Client) tableNames() (tables []string, err error) {
	rows, err := c.DB.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, fmt.Errorf("failed to query table names: %w", err)
	}
	defer logging.CaptureDeferred(&err, rows.Close, c.config.logger(), "table_names")

	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}

// TableCounts returns the row count of every table in the store.
func (c *Client) TableCounts() (map[string]int, error) {
	tables, err := c.tableNames()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, table := range tables {
		var count int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		if err := c.DB.QueryRow(query).Scan(&count); err != nil {
			return nil, err
		}
		counts[table] = count
	}

	return counts, nil
}
