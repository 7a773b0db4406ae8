package fs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/tracker/pkg/core"
)

func sampleBundle() core.Bundle {
	order := 0
	return core.Bundle{
		Values: core.MarkedMap{"obj_42": true, "obj_7": false},
		Lists: []core.List{{
			ID:    3,
			Name:  "Shrines",
			Query: "map_type == 'Shrine'",
			Order: &order,
			Items: map[string]core.ListItem{
				"obj_42": {HashID: "obj_42", Name: "Oman Au", MapName: "Great Plateau", MapType: "Shrine", Pos: [3]float64{1.5, 2, -3}, Marked: true},
			},
		}},
		Version: core.SchemaVersion,
		Name:    core.StoreName,
	}
}

func TestSerializers(t *testing.T) {
	want := sampleBundle()

	for ext, s := range DefaultSerializers() {
		t.Run(ext, func(t *testing.T) {
			data, err := s.Serialize(want)
			if err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}
			got, err := s.Parse(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}

			if got.Name != core.StoreName || got.Version != core.SchemaVersion {
				t.Errorf("header mismatch: %q v%d", got.Name, got.Version)
			}
			if !got.Values["obj_42"] || len(got.Values) != 2 {
				t.Errorf("values mismatch: %v", got.Values)
			}
			if len(got.Lists) != 1 {
				t.Fatalf("expected 1 list, got %d", len(got.Lists))
			}
			item := got.Lists[0].Items["obj_42"]
			if item.Pos != [3]float64{1.5, 2, -3} || item.MapName != "Great Plateau" {
				t.Errorf("item mismatch: %+v", item)
			}
			if got.Lists[0].Order == nil || *got.Lists[0].Order != 0 {
				t.Errorf("order lost: %v", got.Lists[0].Order)
			}
		})
	}
}

func TestSerializers_InvalidInput(t *testing.T) {
	for ext, s := range DefaultSerializers() {
		t.Run(ext, func(t *testing.T) {
			_, err := s.Parse(strings.NewReader("{not: [valid"))
			if !errors.Is(err, core.ErrInvalidBundle) {
				t.Errorf("expected ErrInvalidBundle, got %v", err)
			}
		})
	}
}

func TestSerializerFor(t *testing.T) {
	cases := map[string]any{
		"backup.json": &JSONSerializer{},
		"backup.YAML": &YAMLSerializer{},
		"backup.yml":  &YAMLSerializer{},
		"backup":      &JSONSerializer{},
	}
	for path, want := range cases {
		got := SerializerFor(path)
		switch want.(type) {
		case *JSONSerializer:
			if _, ok := got.(*JSONSerializer); !ok {
				t.Errorf("%s: expected JSON, got %T", path, got)
			}
		case *YAMLSerializer:
			if _, ok := got.(*YAMLSerializer); !ok {
				t.Errorf("%s: expected YAML, got %T", path, got)
			}
		}
	}
}

func TestBundleFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("Round Trip", func(t *testing.T) {
		path := filepath.Join(dir, "backup.yaml")
		if err := WriteBundle(path, sampleBundle()); err != nil {
			t.Fatalf("WriteBundle failed: %v", err)
		}
		got, err := ReadBundle(path)
		if err != nil {
			t.Fatalf("ReadBundle failed: %v", err)
		}
		if len(got.Lists) != 1 || got.Lists[0].ID != 3 {
			t.Errorf("unexpected lists: %+v", got.Lists)
		}
	})

	t.Run("Rejects Newer Version", func(t *testing.T) {
		path := filepath.Join(dir, "future.json")
		if err := os.WriteFile(path, []byte(`{"values":{},"lists":[],"version":99,"name":"Checklist"}`), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadBundle(path); !errors.Is(err, core.ErrInvalidBundle) {
			t.Errorf("expected ErrInvalidBundle, got %v", err)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		if _, err := ReadBundle(filepath.Join(dir, "nope.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
