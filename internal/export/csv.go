package export

import (
	"encoding/csv"
	"fmt"
	"os"
)

type CSV struct{}

func (CSV) Ext() string { return ".csv" }

func (CSV) Write(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
