package storage

import (
	"strings"
	"testing"
)

func TestValidateUpload(t *testing.T) {
	cases := []struct {
		name        string
		cat         Category
		contentType string
		filename    string
		size        int64
		wantErr     bool
	}{
		{"png logo ok", CategoryLogo, "image/png", "logo.png", 1024, false},
		{"logo over limit", CategoryLogo, "image/png", "logo.png", MaxLogoSize + 1, true},
		{"pdf evidence ok", CategoryEvidence, "application/pdf", "scan.pdf", 1024, false},
		{"pdf rejected as logo", CategoryLogo, "application/pdf", "scan.pdf", 1024, true},
		{"csv roster ok", CategoryRoster, "text/csv", "roster.csv", 1024, false},
		{"excel mime roster ok", CategoryRoster, "application/vnd.ms-excel", "roster.csv", 1024, false},
		{"roster over limit", CategoryRoster, "text/csv", "roster.csv", MaxRosterSize + 1, true},
		{"extension fallback when mime generic", CategoryEvidence, "application/octet-stream", "photo.JPG", 1024, false},
		{"exe rejected everywhere", CategoryEvidence, "application/octet-stream", "run.exe", 1024, true},
		{"unknown category", Category("video"), "video/mp4", "a.mp4", 1024, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUpload(tc.cat, tc.contentType, tc.filename, tc.size)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateUpload(%q, %q, %q, %d) error = %v, wantErr %v",
					tc.cat, tc.contentType, tc.filename, tc.size, err, tc.wantErr)
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey(CategoryLogo, "school-1", "logo.png")
	if key != "logos/school-1/logo.png" {
		t.Fatalf("ObjectKey() = %q", key)
	}
	if !strings.HasPrefix(ObjectKey(CategoryEvidence, "s", "x"), "evidence/") {
		t.Fatal("evidence keys must live under evidence/")
	}
}
