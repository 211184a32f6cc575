package classify

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Category identifies one of the file kinds the organizer relocates.
type Category int

const (
	// None marks files the organizer ignores entirely.
	None Category = iota
	// HEIC covers Apple high-efficiency images (.heic, .heif).
	HEIC
	// MOV covers QuickTime videos (.mov).
	MOV
	// MP4 covers MPEG videos (.mp4, .mpg, .mpeg).
	MP4
)

// Categories lists the tracked categories in processing order.
var Categories = []Category{HEIC, MOV, MP4}

// String returns the category's lowercase name, which doubles as the name of
// the subfolder the category's files are archived into.
func (c Category) String() string {
	switch c {
	case HEIC:
		return "heic"
	case MOV:
		return "mov"
	case MP4:
		return "mp4"
	default:
		return "none"
	}
}

// Folder returns the reserved subfolder name for the category.
func (c Category) Folder() string { return c.String() }

var extensions = map[string]Category{
	".heic": HEIC,
	".heif": HEIC,
	".mov":  MOV,
	".mp4":  MP4,
	".mpg":  MP4,
	".mpeg": MP4,
}

// Categorize maps a file name to its category by extension, case-insensitively.
func Categorize(name string) Category {
	ext := strings.ToLower(filepath.Ext(name))
	if cat, ok := extensions[ext]; ok {
		return cat
	}
	return None
}

// IsReservedFolder reports whether a directory name (case-insensitive) is one
// of the organizer's own output folders. Such directories are never traversal
// targets; this keeps already-archived content from being reprocessed.
func IsReservedFolder(name string) bool {
	switch strings.ToLower(name) {
	case "heic", "mov", "mp4":
		return true
	default:
		return false
	}
}

// File is a directory entry selected for processing, tagged with its category.
type File struct {
	Name     string
	Category Category
}

// Base returns the file name without its extension.
func (f File) Base() string {
	return strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
}

// Counts tallies files per tracked category.
type Counts struct {
	HEIC int
	MOV  int
	MP4  int
}

// Get returns the tally for a category.
func (c Counts) Get(cat Category) int {
	switch cat {
	case HEIC:
		return c.HEIC
	case MOV:
		return c.MOV
	case MP4:
		return c.MP4
	default:
		return 0
	}
}

func (c *Counts) add(cat Category) {
	switch cat {
	case HEIC:
		c.HEIC++
	case MOV:
		c.MOV++
	case MP4:
		c.MP4++
	}
}

// Total returns the number of files across all tracked categories.
func (c Counts) Total() int { return c.HEIC + c.MOV + c.MP4 }

// Equal reports whether two tallies match in every category.
func (c Counts) Equal(other Counts) bool { return c == other }

// Classify inspects a directory snapshot and selects the direct file entries
// that belong to a tracked category. Subdirectories and unmatched files are
// excluded from the result entirely. The returned counts are the pre-move
// expected tallies for the directory.
func Classify(entries []fs.DirEntry) ([]File, Counts) {
	var files []File
	var counts Counts
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		cat := Categorize(entry.Name())
		if cat == None {
			continue
		}
		files = append(files, File{Name: entry.Name(), Category: cat})
		counts.add(cat)
	}
	return files, counts
}
