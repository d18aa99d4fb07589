package toolchain

import (
	"testing"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c, err := OpenDiskCache("typewatch-test")
	if err != nil {
		t.Fatal(err)
	}

	key := Combine(Digest{1, 2, 3})
	payload := &DiskPayload{
		Schema: diskCacheSchemaVersion,
		Dir:    ".",
		Digest: key,
		Diags: []DiskDiagnostic{
			{Severity: 1, Code: 3001, Path: "a.go", Line: 3, Col: 5, Message: "cannot use"},
		},
	}
	if err := c.Put(key, payload); err != nil {
		t.Fatal(err)
	}

	var got DiskPayload
	ok, err := c.Get(key, &got)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got.Diags) != 1 || got.Diags[0].Message != "cannot use" {
		t.Errorf("payload mangled: %+v", got)
	}
}

func TestDiskCacheMiss(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c, err := OpenDiskCache("typewatch-test")
	if err != nil {
		t.Fatal(err)
	}
	var got DiskPayload
	ok, err := c.Get(Digest{9}, &got)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected miss on unknown digest")
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c, err := OpenDiskCache("typewatch-test")
	if err != nil {
		t.Fatal(err)
	}
	key := Combine(Digest{4, 5, 6})
	payload := &DiskPayload{Schema: diskCacheSchemaVersion, Dir: ".", Digest: key}
	if err := c.Put(key, payload); err != nil {
		t.Fatal(err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}

	var got DiskPayload
	ok, err := c.Get(key, &got)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected miss after DropAll")
	}
}

func TestCombineDeterministic(t *testing.T) {
	a := Combine(Digest{1}, Digest{2}, Digest{3})
	b := Combine(Digest{1}, Digest{2}, Digest{3})
	if a != b {
		t.Error("Combine must be deterministic")
	}
	c := Combine(Digest{1}, Digest{3}, Digest{2})
	if a == c {
		t.Error("Combine must be order-sensitive")
	}
}
