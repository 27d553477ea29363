package transcribe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tcolgate/mp3"
)

// AllowedExtensions are the audio types the server accepts
var AllowedExtensions = []string{".mp3", ".wav", ".m4a", ".flac", ".ogg", ".webm"}

// AudioInfo describes a local audio file before upload
type AudioInfo struct {
	Path      string
	Filename  string
	Extension string
	Size      int64

	// Duration is only known for MP3 files; zero otherwise
	Duration time.Duration
}

// IsAllowedAudio reports whether the server will accept the file's type
func IsAllowedAudio(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// InspectAudio gathers size and duration. MP3 files are measured directly;
// other formats fall back to ffprobe when it is installed.
func InspectAudio(path string) (*AudioInfo, error) {
	if path == "" {
		return nil, ErrNoFile
	}
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not an audio file", path)
	}

	info := &AudioInfo{
		Path:      path,
		Filename:  filepath.Base(path),
		Extension: strings.ToLower(filepath.Ext(path)),
		Size:      fileInfo.Size(),
	}

	// Duration is best-effort; a file we cannot measure still uploads
	if info.Extension == ".mp3" {
		if d, err := MP3Duration(path); err == nil {
			info.Duration = d
		}
	}
	if info.Duration == 0 {
		if d, err := ProbeDuration(path); err == nil {
			info.Duration = d
		}
	}

	return info, nil
}

// MP3Duration sums frame durations across the whole file
func MP3Duration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d := mp3.NewDecoder(f)
	var (
		frame   mp3.Frame
		skipped int
		total   time.Duration
	)
	for {
		if err := d.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		total += frame.Duration()
	}
	return total, nil
}

// FormatSize renders a byte count for display
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}

// FormatDuration renders a duration as H:MM:SS or M:SS
func FormatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
