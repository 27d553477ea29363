package transcribe

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SubtitleFormat specifies the output format for subtitles
type SubtitleFormat string

const (
	SubtitleFormatSRT SubtitleFormat = "srt"
	SubtitleFormatVTT SubtitleFormat = "vtt"
)

// FormatSRT formats segments as SRT (SubRip Text)
func FormatSRT(segments []Segment) string {
	var sb strings.Builder

	for i, seg := range segments {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatSRTTimestamp(seconds(seg.Start)),
			formatSRTTimestamp(seconds(seg.End))))
		sb.WriteString(strings.TrimSpace(seg.Text))
		sb.WriteString("\n\n")
	}

	return strings.TrimSpace(sb.String())
}

// FormatVTT formats segments as WebVTT
func FormatVTT(segments []Segment) string {
	var sb strings.Builder

	sb.WriteString("WEBVTT\n\n")

	for i, seg := range segments {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatVTTTimestamp(seconds(seg.Start)),
			formatVTTTimestamp(seconds(seg.End))))
		sb.WriteString(strings.TrimSpace(seg.Text))
		sb.WriteString("\n\n")
	}

	return strings.TrimSpace(sb.String())
}

// FormatSubtitles formats segments in the given format
func FormatSubtitles(segments []Segment, format SubtitleFormat) string {
	switch format {
	case SubtitleFormatVTT:
		return FormatVTT(segments)
	default:
		return FormatSRT(segments)
	}
}

// SubtitleFormatFor picks the format from a file extension (.vtt or SRT)
func SubtitleFormatFor(path string) SubtitleFormat {
	if strings.EqualFold(filepath.Ext(path), ".vtt") {
		return SubtitleFormatVTT
	}
	return SubtitleFormatSRT
}

// SubtitlePath places a subtitle file next to the audio file
func SubtitlePath(audioPath string, format SubtitleFormat) string {
	ext := filepath.Ext(audioPath)
	return strings.TrimSuffix(audioPath, ext) + "." + string(format)
}

// WriteSubtitleFile writes segments to path in the format implied by its
// extension.
func WriteSubtitleFile(path string, segments []Segment) error {
	if len(segments) == 0 {
		return fmt.Errorf("no segments to write")
	}
	content := FormatSubtitles(segments, SubtitleFormatFor(path))
	if err := os.WriteFile(path, []byte(content+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}
	return nil
}

func seconds(v float64) time.Duration {
	return time.Duration(math.Round(v*1000)) * time.Millisecond
}

// formatSRTTimestamp formats a duration as SRT timestamp (HH:MM:SS,mmm)
func formatSRTTimestamp(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	ms := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// formatVTTTimestamp formats a duration as VTT timestamp (HH:MM:SS.mmm)
func formatVTTTimestamp(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	ms := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
