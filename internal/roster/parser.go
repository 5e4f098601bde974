package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Row is one candidate student from a roster CSV.
type Row struct {
	Name        string
	Email       string
	AdmissionNo string
	Department  string
}

var requiredHeaders = []string{"name", "email", "admission_no", "department"}

// Parse reads a roster CSV and returns its rows in file order. The header
// line must contain name, email, admission_no and department (any order,
// case-insensitive); extra columns are ignored. Blank lines are skipped.
func Parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, h := range requiredHeaders {
		if _, ok := index[h]; !ok {
			return nil, fmt.Errorf("missing required column %q", h)
		}
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := Row{
			Name:        field(record, index["name"]),
			Email:       field(record, index["email"]),
			AdmissionNo: field(record, index["admission_no"]),
			Department:  field(record, index["department"]),
		}
		if row.Name == "" && row.Email == "" && row.AdmissionNo == "" && row.Department == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
