package format

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSortFiles(t *testing.T) {
	files := []File{
		{Name: "songs/song10.msq"},
		{Name: "song2.json"},
		{Name: "intro.msq"},
		{Name: "song2.5.msq"},
		{Name: "outro.json"},
	}
	SortFiles(files)
	want := []string{"intro.msq", "outro.json", "song2.json", "song2.5.msq", "songs/song10.msq"}
	for i, f := range files {
		if f.Name != want[i] {
			t.Fatalf("order[%d] = %s, want %s", i, f.Name, want[i])
		}
	}
}

func TestKindOf(t *testing.T) {
	if KindOf("a/B.MSQ") != KindCompact {
		t.Fatalf("upper-case .MSQ should be compact")
	}
	if KindOf("song.json") != KindStructured || KindOf("song.yaml") != KindStructured {
		t.Fatalf("other extensions are structured")
	}
}

func TestParseDispatch(t *testing.T) {
	a, err := Parse(KindCompact, sampleCompact)
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	if _, ok := a.(*Compact); !ok {
		t.Fatalf("compact parse returned %T", a)
	}
	if _, err := Parse(KindStructured, "{"); err == nil {
		t.Fatalf("expected structured error")
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.msq" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sampleCompact))
	}))
	defer srv.Close()

	kind, text, err := Fetch(context.Background(), srv.Client(), srv.URL+"/tune.msq?x=1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if kind != KindCompact || text != sampleCompact {
		t.Fatalf("fetch = %v %q", kind, text)
	}
	if _, _, err := Fetch(context.Background(), srv.Client(), srv.URL+"/missing.msq"); err == nil {
		t.Fatalf("expected HTTP error")
	}
}
