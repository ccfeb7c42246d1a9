package listing

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewEntry(t *testing.T) {
	tests := []struct {
		path     string
		wantName string
		wantExt  string
		wantKind Kind
	}{
		{"/pics/Holiday.JPG", "Holiday.JPG", ".jpg", KindImage},
		{`C:\Users\u\clip.mp4`, "clip.mp4", ".mp4", KindVideo},
		{"/mnt/c/docs/readme.txt", "readme.txt", ".txt", KindOther},
		{"/pics/scan.tiff", "scan.tiff", ".tiff", KindImage},
		{"noext", "noext", "", KindOther},
	}
	for _, tt := range tests {
		e := NewEntry(3, tt.path, " 1024 ")
		if e.Name != tt.wantName || e.Ext != tt.wantExt || e.Kind != tt.wantKind {
			t.Errorf("NewEntry(%q) = {Name:%q Ext:%q Kind:%v}, want {%q %q %v}",
				tt.path, e.Name, e.Ext, e.Kind, tt.wantName, tt.wantExt, tt.wantKind)
		}
		if e.Index != 3 || e.DeclaredSize != "1024" {
			t.Errorf("NewEntry(%q) Index=%d DeclaredSize=%q", tt.path, e.Index, e.DeclaredSize)
		}
	}
}

func TestReadCSV(t *testing.T) {
	in := "\ufeffFile Path,File Size (bytes),Owner\n" +
		"/a/one.png,100,me\n" +
		",5,skipped\n" +
		"\"/a/two, with comma.jpg\",,me\n" +
		"/a/three.mp4\n"
	entries, err := ReadCSV(strings.NewReader(in), ',')
	if err != nil {
		t.Fatalf("ReadCSV() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	want := []struct{ path, size string }{
		{"/a/one.png", "100"},
		{"/a/two, with comma.jpg", ""},
		{"/a/three.mp4", ""},
	}
	for i, w := range want {
		if entries[i].Path != w.path || entries[i].DeclaredSize != w.size || entries[i].Index != i {
			t.Errorf("entry %d = %+v, want path %q size %q", i, entries[i], w.path, w.size)
		}
	}
}

func TestReadCSV_NoSizeColumn(t *testing.T) {
	entries, err := ReadCSV(strings.NewReader("File Path\n/x.png\n"), ',')
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].DeclaredSize != "" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestReadCSV_NoPathColumn(t *testing.T) {
	for _, in := range []string{"", "Name,Size\nx,1\n"} {
		if _, err := ReadCSV(strings.NewReader(in), ','); !errors.Is(err, ErrNoPathColumn) {
			t.Errorf("ReadCSV(%q) err = %v, want ErrNoPathColumn", in, err)
		}
	}
}

func TestLoad_TSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.tsv")
	if err := os.WriteFile(path, []byte("File Size (bytes)\tFile Path\n7\t/t/a.gif\n"), 0644); err != nil {
		t.Fatal(err)
	}
	entries, err := Load(context.Background(), path, DefaultSQLiteOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Path != "/t/a.gif" || entries[0].DeclaredSize != "7" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestLoad_Unsupported(t *testing.T) {
	if _, err := Load(context.Background(), "/tmp/list.xlsx", DefaultSQLiteOptions()); err == nil {
		t.Error("Load(.xlsx) should fail")
	}
}

func createDB(t *testing.T, ddl string, rows ...[]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("create table: %v", err)
	}
	for _, r := range rows {
		ph := strings.TrimSuffix(strings.Repeat("?,", len(r)), ",")
		table := strings.Fields(ddl)[2]
		if _, err := db.Exec("INSERT INTO "+table+" VALUES ("+ph+")", r...); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return path
}

func TestLoadSQLite(t *testing.T) {
	path := createDB(t, "CREATE TABLE files (path TEXT, size INTEGER)",
		[]any{"/db/b.png", 2048},
		[]any{"", 1},
		[]any{"/db/a.mov", nil},
	)
	entries, err := Load(context.Background(), path, DefaultSQLiteOptions())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Path != "/db/b.png" || entries[0].DeclaredSize != "2048" || !entries[0].IsImage() {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Path != "/db/a.mov" || entries[1].DeclaredSize != "" || entries[1].Kind != KindVideo {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

func TestLoadSQLite_CustomColumns(t *testing.T) {
	path := createDB(t, "CREATE TABLE media (location TEXT)", []any{"/m/x.webp"})
	entries, err := LoadSQLite(context.Background(), path, SQLiteOptions{Table: "media", PathColumn: "location"})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Path != "/m/x.webp" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestLoadSQLite_RejectsBadIdentifiers(t *testing.T) {
	opts := SQLiteOptions{Table: "files; DROP TABLE files", PathColumn: "path"}
	if _, err := LoadSQLite(context.Background(), "unused.db", opts); err == nil {
		t.Error("LoadSQLite() accepted an unsafe table name")
	}
}

func TestWatcher_SignalsManifestChange(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "list.csv")
	if err := os.WriteFile(manifest, []byte("File Path\n/a.png\n"), 0644); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(manifest)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Stop()

	// Unrelated file in the same directory.
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-w.Events():
		t.Fatal("event for unrelated file")
	case <-time.After(300 * time.Millisecond):
	}

	if err := os.WriteFile(manifest, []byte("File Path\n/a.png\n/b.png\n"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-w.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for manifest change event")
	}
}

func TestWatcher_StopClosesEvents(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "list.csv")
	w, err := NewWatcher(manifest)
	if err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
	select {
	case _, ok := <-w.Events():
		if ok {
			t.Error("received event after Stop")
		}
	case <-time.After(time.Second):
		t.Fatal("Events() not closed after Stop")
	}
}

func TestNewWatcher_MissingDirectory(t *testing.T) {
	if _, err := NewWatcher("/nonexistent/dir/list.csv"); err == nil {
		t.Error("NewWatcher() should fail for a missing directory")
	}
}
