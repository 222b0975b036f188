package bodyenc_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wireform/bodyenc"
)

func TestParseContentDisposition(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input   string
		want    bodyenc.ContentDisposition
		wantErr error
	}{
		"name and filename": {
			input: `Content-Disposition: form-data; name="file2"; filename="a.html"`,
			want: bodyenc.ContentDisposition{
				Type:     "form-data",
				Name:     "file2",
				Filename: "a.html",
			},
		},
		"name only": {
			input: `Content-Disposition: form-data; name="example"`,
			want: bodyenc.ContentDisposition{
				Type: "form-data",
				Name: "example",
			},
		},
		"hyphenated name": {
			input: `Content-Disposition: form-data; name="hello-world"`,
			want: bodyenc.ContentDisposition{
				Type: "form-data",
				Name: "hello-world",
			},
		},
		"trailing semicolon": {
			input: `Content-Disposition: form-data; name="hello-world";`,
			want: bodyenc.ContentDisposition{
				Type: "form-data",
				Name: "hello-world",
			},
		},
		"without header label": {
			input: `form-data; name="field"; filename="data.bin"`,
			want: bodyenc.ContentDisposition{
				Type:     "form-data",
				Name:     "field",
				Filename: "data.bin",
			},
		},
		"attachment type": {
			input: `attachment; name="report"; filename="report.pdf"`,
			want: bodyenc.ContentDisposition{
				Type:     "attachment",
				Name:     "report",
				Filename: "report.pdf",
			},
		},
		"missing name": {
			input:   `Content-Disposition: form-data; filename="a.html"`,
			wantErr: bodyenc.ErrInvalidContentDisposition,
		},
		"bare type": {
			input:   `form-data`,
			wantErr: bodyenc.ErrInvalidContentDisposition,
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := bodyenc.ParseContentDisposition(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got: %v", tt.wantErr, err)
			}
			if tt.wantErr == nil {
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("(-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestExtractBoundary(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input   string
		want    string
		wantErr error
	}{
		"simple boundary": {
			input: "multipart/form-data; boundary=---------------------1321321",
			want:  "---------------------1321321",
		},
		"boundary with leading hyphens kept verbatim": {
			input: "multipart/form-data; boundary=--4ed15c90-6b4b-457f-99d8-e965c76679dd",
			want:  "--4ed15c90-6b4b-457f-99d8-e965c76679dd",
		},
		"boundary followed by parameter": {
			input: "multipart/form-data; boundary=xyz; charset=utf-8",
			want:  "xyz",
		},
		"mixed alphanumeric boundary": {
			input: "multipart/form-data; boundary=-------------AAAA12345",
			want:  "-------------AAAA12345",
		},
		"multipart mixed": {
			input: "multipart/mixed; boundary=frontier",
			want:  "frontier",
		},
		"no boundary parameter": {
			input:   "multipart/form-data",
			wantErr: bodyenc.ErrBoundaryNotFound,
		},
		"not multipart": {
			input:   "application/json; boundary=xyz",
			wantErr: bodyenc.ErrBoundaryNotFound,
		},
		"empty": {
			input:   "",
			wantErr: bodyenc.ErrBoundaryNotFound,
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := bodyenc.ExtractBoundary(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got: %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
