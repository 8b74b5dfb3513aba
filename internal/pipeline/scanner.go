package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Source represents a discovered image file.
type Source struct {
	// AbsPath is the absolute path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the input directory, with forward slashes.
	RelPath string
	// Key is the asset key: relpath without extension, or the full relpath
	// when another source shares the same stem.
	Key string
	// Ext is the normalized extension: png, jpeg, webp, gif, bmp or tiff.
	Ext string
	// Size is the file size in bytes.
	Size int64
}

// imageExtensions maps recognized file extensions to their normalized name.
var imageExtensions = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".webp": "webp",
	".gif":  "gif",
	".bmp":  "bmp",
	".tiff": "tiff",
	".tif":  "tiff",
}

// ScanImages walks the input directory and returns all image sources,
// ordered by key.
func ScanImages(inputDir string) ([]Source, error) {
	var sources []Source

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories.
			if path != inputDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		name, ok := imageExtensions[ext]
		if !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}

		sources = append(sources, Source{
			AbsPath: path,
			RelPath: filepath.ToSlash(relPath),
			Key:     filepath.ToSlash(strings.TrimSuffix(relPath, filepath.Ext(relPath))),
			Ext:     name,
			Size:    info.Size(),
		})
		return nil
	})

	disambiguateKeys(sources)
	sort.Slice(sources, func(i, j int) bool { return sources[i].Key < sources[j].Key })
	return sources, err
}

// disambiguateKeys gives sources that share a stem (logo.png, logo.jpg)
// their full relative path as key so no asset overwrites another.
func disambiguateKeys(sources []Source) {
	count := make(map[string]int, len(sources))
	for _, s := range sources {
		count[s.Key]++
	}
	for i := range sources {
		if count[sources[i].Key] > 1 {
			sources[i].Key = sources[i].RelPath
		}
	}
}
