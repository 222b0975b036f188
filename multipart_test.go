package bodyenc_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wireform/bodyenc"
)

var formPartFixtures = []bodyenc.FormPart{
	{Name: "text1", Data: []byte("text default")},
	{Name: "text2", Data: []byte("aωb")},
	{Name: "file1", Data: []byte("Content of a.txt.\n"), ContentType: "text/plain", Filename: "a.txt"},
	{Name: "file2", Data: []byte("<!DOCTYPE html><title>Content of a.html.</title>\n"), ContentType: "text/html", Filename: "a.html"},
	{Name: "file3", Data: []byte("aωb"), ContentType: "application/octet-stream", Filename: "binary"},
}

func TestMultipartFormData_Stream(t *testing.T) {
	t.Parallel()

	const boundary = "---------------------0000000000000000000000001"
	data, err := bodyenc.NewMultipartFormDataWithBoundary(boundary, formPartFixtures)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, err := bodyenc.Drain(data.Stream())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := strings.Join([]string{
		"--" + boundary,
		`Content-Disposition: form-data; name="text1"`,
		"",
		"text default",
		"--" + boundary,
		`Content-Disposition: form-data; name="text2"`,
		"",
		"aωb",
		"--" + boundary,
		`Content-Disposition: form-data; name="file1"; filename="a.txt"`,
		"Content-Type: text/plain",
		"",
		"Content of a.txt.",
		"",
		"--" + boundary,
		`Content-Disposition: form-data; name="file2"; filename="a.html"`,
		"Content-Type: text/html",
		"",
		"<!DOCTYPE html><title>Content of a.html.</title>",
		"",
		"--" + boundary,
		`Content-Disposition: form-data; name="file3"; filename="binary"`,
		"Content-Type: application/octet-stream",
		"",
		"aωb",
		"--" + boundary + "--",
	}, "\r\n")

	if diff := cmp.Diff(want, string(body)); diff != "" {
		t.Errorf("body (-want +got):\n%s", diff)
	}
}

func TestMultipartFormData_StreamIsLazy(t *testing.T) {
	t.Parallel()

	data, err := bodyenc.NewMultipartFormDataWithBoundary("b0undary", formPartFixtures)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One chunk per part, plus the terminator.
	src := data.Stream()
	for i := 0; i <= len(formPartFixtures); i++ {
		if _, err := src.Next(); err != nil {
			t.Fatalf("chunk %d: unexpected error: %v", i, err)
		}
	}
	if _, err := src.Next(); err == nil {
		t.Error("expected io.EOF after terminator")
	}
}

func TestMultipartFormData_ContentType(t *testing.T) {
	t.Parallel()

	data, err := bodyenc.NewMultipartFormData(formPartFixtures)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	contentType := data.ContentType()
	boundary, err := bodyenc.ExtractBoundary(contentType)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if boundary != data.Boundary() {
		t.Errorf("extracted boundary %q, want %q", boundary, data.Boundary())
	}
}

func TestMultipartFormData_QuoteEscaping(t *testing.T) {
	t.Parallel()

	parts := []bodyenc.FormPart{
		{Name: `na"me`, Data: []byte("x"), Filename: `fi\le"`},
	}
	data, err := bodyenc.NewMultipartFormDataWithBoundary("b0undary", parts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, err := bodyenc.Drain(data.Stream())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `Content-Disposition: form-data; name="na\"me"; filename="fi\\le\""`
	if !bytes.Contains(body, []byte(want)) {
		t.Errorf("body %q does not contain %q", body, want)
	}
}

func TestNewMultipartFormDataWithBoundary_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"empty":    "",
		"too long": strings.Repeat("a", 70),
		"bad rune": "abc\x01def",
		"with at":  "abc@def",
	}
	for name, boundary := range tests {
		boundary := boundary
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := bodyenc.NewMultipartFormDataWithBoundary(boundary, nil); err == nil {
				t.Errorf("boundary %q: expected error", boundary)
			}
		})
	}
}

func TestRandomBoundary(t *testing.T) {
	t.Parallel()

	entropy := strings.NewReader("0123456789abcdefghij0123456789abcdefghij")
	boundary, err := bodyenc.RandomBoundary(entropy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 30 bytes of entropy hex encode to 60 characters.
	if len(boundary) != 60 {
		t.Errorf("len(boundary) = %d, want 60", len(boundary))
	}
	if boundary != "303132333435363738396162636465666768696a30313233343536373839" {
		t.Errorf("unexpected boundary %q", boundary)
	}

	// Pure function of its entropy: same reader state, same boundary.
	again, err := bodyenc.RandomBoundary(strings.NewReader("0123456789abcdefghij0123456789abcdefghij"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != boundary {
		t.Errorf("boundaries differ: %q vs %q", again, boundary)
	}
}

func TestRandomBoundary_ShortEntropy(t *testing.T) {
	t.Parallel()

	if _, err := bodyenc.RandomBoundary(strings.NewReader("short")); err == nil {
		t.Error("expected error for short entropy")
	}
}
