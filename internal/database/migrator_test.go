package database

import (
	"reflect"
	"testing"
	"testing/fstest"
)

func TestPendingFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/002_indexes.sql":  {Data: []byte("select 1")},
		"sql/001_init.sql":     {Data: []byte("select 1")},
		"sql/003_reset_db.sql": {Data: []byte("drop table x")},
		"sql/README.md":        {Data: []byte("docs")},
		"sql/004_settings.sql": {Data: []byte("select 1")},
	}

	got, err := PendingFiles(fsys, "sql", map[string]bool{"002_indexes.sql": true})
	if err != nil {
		t.Fatalf("PendingFiles: %v", err)
	}
	want := []string{"001_init.sql", "004_settings.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("PendingFiles = %v, want %v", got, want)
	}

	if _, err := PendingFiles(fsys, "missing", nil); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestJoinPath(t *testing.T) {
	if joinPath(".", "a.sql") != "a.sql" || joinPath("m/", "a.sql") != "m/a.sql" {
		t.Fatal("unexpected join")
	}
}
