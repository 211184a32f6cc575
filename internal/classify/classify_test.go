package classify

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCategorize(t *testing.T) {
	cases := []struct {
		name string
		want Category
	}{
		{"photo.heic", HEIC},
		{"photo.HEIC", HEIC},
		{"photo.heif", HEIC},
		{"clip.mov", MOV},
		{"clip.MOV", MOV},
		{"clip.mp4", MP4},
		{"clip.mpg", MP4},
		{"clip.MPEG", MP4},
		{"photo.jpg", None},
		{"notes.txt", None},
		{"heic", None}, // no extension
		{"archive.heic.bak", None},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Categorize(tc.name); got != tc.want {
				t.Fatalf("Categorize(%q) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestIsReservedFolder(t *testing.T) {
	for _, name := range []string{"heic", "Mov", "MP4", "HEIC", "mpg"} {
		want := name != "mpg"
		if got := IsReservedFolder(name); got != want {
			t.Errorf("IsReservedFolder(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestFileBase(t *testing.T) {
	f := File{Name: "IMG_0042.HEIC", Category: HEIC}
	if got := f.Base(); got != "IMG_0042" {
		t.Fatalf("Base() = %q, want IMG_0042", got)
	}
}

func TestClassifySelectsOnlyTrackedFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.heic", "b.HEIF", "c.mov", "d.mp4", "e.mpg", "f.jpg", "g.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Subdirectories must not be classified, even with a tracked extension.
	if err := os.Mkdir(filepath.Join(dir, "folder.mov"), 0o755); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	files, counts := Classify(entries)

	if counts.HEIC != 2 || counts.MOV != 1 || counts.MP4 != 2 {
		t.Fatalf("counts = %+v", counts)
	}
	if counts.Total() != 5 {
		t.Fatalf("Total() = %d, want 5", counts.Total())
	}
	if len(files) != 5 {
		t.Fatalf("len(files) = %d, want 5", len(files))
	}
	for _, f := range files {
		if f.Category == None {
			t.Fatalf("untracked file selected: %+v", f)
		}
		if f.Name == "folder.mov" {
			t.Fatal("directory classified as file")
		}
	}
}

func TestClassifyEmptyDirectory(t *testing.T) {
	entries, err := os.ReadDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	files, counts := Classify(entries)
	if len(files) != 0 || counts.Total() != 0 {
		t.Fatalf("expected no selections, got %d files, counts %+v", len(files), counts)
	}
}

func TestCountsEqual(t *testing.T) {
	a := Counts{HEIC: 1, MOV: 2, MP4: 3}
	if !a.Equal(Counts{HEIC: 1, MOV: 2, MP4: 3}) {
		t.Fatal("expected equal counts")
	}
	if a.Equal(Counts{HEIC: 1, MOV: 2, MP4: 4}) {
		t.Fatal("expected unequal counts")
	}
}
