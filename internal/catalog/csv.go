package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/clipqa/annotation-service/internal/domain"
)

const (
	columnNarrationID = "narration_id"
	columnNarration   = "narration"
)

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string) ([]domain.WorkItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog csv: %w", err)
	}
	defer f.Close()

	items, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// ReadCSV parses a headered catalog CSV. Only the narration_id and narration
// columns are used; rows without a narration_id are skipped. URLs are left
// empty for the catalog to fill in.
func ReadCSV(r io.Reader) ([]domain.WorkItem, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("catalog csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idCol, labelCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case columnNarrationID:
			idCol = i
		case columnNarration:
			labelCol = i
		}
	}
	if idCol < 0 || labelCol < 0 {
		return nil, fmt.Errorf("catalog csv needs %q and %q columns", columnNarrationID, columnNarration)
	}

	var items []domain.WorkItem
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if idCol >= len(rec) {
			continue
		}
		id := strings.TrimSpace(rec[idCol])
		if id == "" {
			continue
		}
		label := ""
		if labelCol < len(rec) {
			label = rec[labelCol]
		}
		items = append(items, domain.WorkItem{NarrationID: id, Narration: label})
	}
	return items, nil
}
