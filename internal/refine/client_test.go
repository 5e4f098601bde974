package refine

import (
	"context"
	"testing"
	"time"
)

func TestPolish(t *testing.T) {
	cases := []struct {
		name       string
		text       string
		department string
		want       string
	}{
		{"normalizes whitespace and casing", "  fixed   the   pump ", "", "Fixed the pump."},
		{"keeps existing terminator", "inspected the site!", "", "Inspected the site!"},
		{"appends department hint", "wrote unit tests", "Computer Science", "Wrote unit tests. (Computer Science)"},
		{"empty input", "   ", "CS", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Polish(tc.text, tc.department); got != tc.want {
				t.Fatalf("Polish(%q, %q) = %q, want %q", tc.text, tc.department, got, tc.want)
			}
		})
	}
}

func TestRefineHonorsContext(t *testing.T) {
	client := NewClient(time.Minute, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := client.Refine(ctx, "some text", ""); err == nil {
		t.Fatal("expected context deadline error")
	}
}

func TestRefineReturnsPolishedText(t *testing.T) {
	client := NewClient(time.Millisecond, nil)
	got, err := client.Refine(context.Background(), "repaired  the  conveyor", "")
	if err != nil {
		t.Fatalf("Refine() error: %v", err)
	}
	if got != "Repaired the conveyor." {
		t.Fatalf("Refine() = %q", got)
	}
}
