package storage

import "testing"

func TestParseURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{
			name:       "bucket and nested path",
			uri:        "gs://docs-bucket/uploads/app-form.pdf",
			wantBucket: "docs-bucket",
			wantObject: "uploads/app-form.pdf",
		},
		{
			name:       "object at bucket root",
			uri:        "gs://docs-bucket/statement.pdf",
			wantBucket: "docs-bucket",
			wantObject: "statement.pdf",
		},
		{
			name:    "missing scheme",
			uri:     "docs-bucket/statement.pdf",
			wantErr: true,
		},
		{
			name:    "bucket only",
			uri:     "gs://docs-bucket",
			wantErr: true,
		},
		{
			name:    "empty object path",
			uri:     "gs://docs-bucket/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseURI(%q) expected error", tt.uri)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURI(%q): %v", tt.uri, err)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("ParseURI(%q) = (%q, %q), want (%q, %q)",
					tt.uri, bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"gs://bucket/folder/file.pdf", "file.pdf"},
		{"gs://bucket/file.pdf", "file.pdf"},
		{"gs://bucket", "bucket"},
		{"plain-name.pdf", "plain-name.pdf"},
	}

	for _, tt := range tests {
		if got := Filename(tt.uri); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
