package roster

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"Name, Email ,admission_no,department,extra",
		"Jane Doe,jane@example.com,ADM001,Computer Science,ignored",
		",,,",
		"John Smith , john@example.com ,ADM002,Mechanical Engineering",
	}, "\n")

	rows, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Name != "Jane Doe" || rows[0].Email != "jane@example.com" ||
		rows[0].AdmissionNo != "ADM001" || rows[0].Department != "Computer Science" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Name != "John Smith" || rows[1].Email != "john@example.com" {
		t.Fatalf("fields not trimmed: %+v", rows[1])
	}
}

func TestParseHeaderAnyOrder(t *testing.T) {
	input := "department,admission_no,email,name\nCS,ADM9,a@b.c,Amy\n"
	rows, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Amy" || rows[0].Department != "CS" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestParseMissingColumn(t *testing.T) {
	input := "name,email,department\nJane,jane@example.com,CS\n"
	if _, err := Parse(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for missing admission_no column")
	}
}

func TestParseEmptyInput(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}
