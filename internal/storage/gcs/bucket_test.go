package gcs

import (
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

func sliceIterator(items []*storage.ObjectAttrs) func() (*storage.ObjectAttrs, error) {
	i := 0
	return func() (*storage.ObjectAttrs, error) {
		if i >= len(items) {
			return nil, iterator.Done
		}
		item := items[i]
		i++
		return item, nil
	}
}

func TestCollectMapsPrefixesAndObjects(t *testing.T) {
	updated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []*storage.ObjectAttrs{
		{Name: "bags/", Size: 0},
		{Name: "bags/a.png", Size: 2048, ContentType: "image/png", Updated: updated},
		{Prefix: "bags/vintage/"},
		{Name: "bags/z.svg", Size: 12, ContentType: "image/svg+xml"},
	}
	entries, err := collect(sliceIterator(items), "bags/", 0, 100)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %+v", entries)
	}
	if entries[0].Name != "a.png" || entries[0].IsDir() || *entries[0].Metadata.Size != 2048 {
		t.Fatalf("unexpected file entry %+v", entries[0])
	}
	if entries[0].UpdatedAt != "2024-03-01T12:00:00Z" {
		t.Fatalf("unexpected updated_at %s", entries[0].UpdatedAt)
	}
	if entries[1].Name != "vintage" || !entries[1].IsDir() {
		t.Fatalf("unexpected dir entry %+v", entries[1])
	}
}

func TestCollectOffsetAndLimit(t *testing.T) {
	var items []*storage.ObjectAttrs
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		items = append(items, &storage.ObjectAttrs{Name: n + ".png"})
	}
	entries, err := collect(sliceIterator(items), "", 2, 2)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "c.png" || entries[1].Name != "d.png" {
		t.Fatalf("unexpected page %+v", entries)
	}
	entries, _ = collect(sliceIterator(items), "", 4, 2)
	if len(entries) != 1 || entries[0].Name != "e.png" {
		t.Fatalf("unexpected last page %+v", entries)
	}
}

func TestPublicURLAndPrefix(t *testing.T) {
	if got := publicURL("designs", "bags/a b.png"); got != "https://storage.googleapis.com/designs/bags/a%20b.png" {
		t.Fatalf("unexpected public url %s", got)
	}
	b := &Bucket{name: "designs"}
	if b.PublicURL("a.png") != "" {
		t.Fatalf("private bucket should not expose public url")
	}
	if dirPrefix("/bags/") != "bags/" || dirPrefix("") != "" {
		t.Fatalf("unexpected dir prefix")
	}
}
