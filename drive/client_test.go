package drive

import (
	"context"
	"testing"
)

func TestListQuery(t *testing.T) {
	got := listQuery("folder-1", "")
	want := "'folder-1' in parents and trashed = false"
	if got != want {
		t.Errorf("listQuery = %q, want %q", got, want)
	}

	got = listQuery("folder-1", "transcript5.txt")
	want = "'folder-1' in parents and trashed = false and name = 'transcript5.txt'"
	if got != want {
		t.Errorf("listQuery with filter = %q, want %q", got, want)
	}
}

func TestClient_MissingCredentials(t *testing.T) {
	c := NewClient(nil)
	if _, err := c.ListFiles(context.Background(), "folder-1", ""); err == nil {
		t.Error("expected configuration error for missing credentials")
	}
}

func TestClient_MalformedCredentials(t *testing.T) {
	c := NewClient([]byte("{not json"))
	if _, err := c.ListFiles(context.Background(), "folder-1", ""); err == nil {
		t.Error("expected configuration error for malformed credentials")
	}
}
