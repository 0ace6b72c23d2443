package render

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
	".mkv": true,
}

// manim writes per-animation fragments here before concatenating them.
const partialMoviesDir = "partial_movie_files"

// VideoArtifact is a video file found on disk.
type VideoArtifact struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// SizeMB is the size in mebibytes.
func (v VideoArtifact) SizeMB() float64 {
	return float64(v.Size) / (1024 * 1024)
}

// FindVideos walks dir for files with a known video extension and returns
// them newest first. manim nests its output under media/videos/..., so the
// walk is recursive; partial movie fragments are skipped.
func FindVideos(dir string) ([]VideoArtifact, error) {
	var videos []VideoArtifact

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			// The renderer may still be rotating files; skip what vanished.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if d.Name() == partialMoviesDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !videoExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		videos = append(videos, VideoArtifact{
			Path:    path,
			Name:    d.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(videos, func(i, j int) bool {
		if !videos[i].ModTime.Equal(videos[j].ModTime) {
			return videos[i].ModTime.After(videos[j].ModTime)
		}
		return videos[i].Path < videos[j].Path
	})
	return videos, nil
}
