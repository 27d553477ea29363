// Package transcribe provides a Go client for a Whisper transcription server
// exposing a single multipart endpoint, POST /transcribe.
package transcribe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLanguage is sent when no language is selected; the server
	// auto-detects the spoken language.
	DefaultLanguage = "auto"

	// NoSpeechPlaceholder is displayed in place of an empty transcript
	NoSpeechPlaceholder = "[No speech detected]"

	// DefaultErrorMessage is used when a failed response carries no error text
	DefaultErrorMessage = "Failed to transcribe file"
)

// ErrNoFile is returned when a request is submitted without an audio file.
var ErrNoFile = errors.New("Choose an audio file first")

// Request is a single upload. It is not kept after the submission completes.
type Request struct {
	// FilePath is the local path to the audio file to upload
	FilePath string

	// Language is a language code or "auto".
	// Defaults to DefaultLanguage when empty
	Language string

	// Model is the Whisper model identifier.
	// Left out of the form entirely when empty
	Model string
}

// Response is the decoded body of a successful transcription
type Response struct {
	// Text is the full transcript
	Text string `json:"text"`

	// Language is the language reported by the server, if any
	Language string `json:"language,omitempty"`

	// Segments are the timestamped sub-spans of the transcript, in order
	Segments []Segment `json:"segments,omitempty"`
}

// DisplayText returns the transcript, or NoSpeechPlaceholder when it is empty.
func (r *Response) DisplayText() string {
	if r == nil || r.Text == "" {
		return NoSpeechPlaceholder
	}
	return r.Text
}

// Segment is a timestamped span of the transcript
type Segment struct {
	// Start is the start time in seconds
	Start float64 `json:"start"`

	// End is the end time in seconds
	End float64 `json:"end"`

	// Text is the text spoken in this span
	Text string `json:"text"`
}

// Range renders the segment bounds as "<start>s → <end>s:".
func (s Segment) Range() string {
	return formatSeconds(s.Start) + "s → " + formatSeconds(s.End) + "s:"
}

// String renders the range followed by the segment text
func (s Segment) String() string {
	return s.Range() + " " + s.Text
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// APIError is a failure reported by the server with a non-success status
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return DefaultErrorMessage
	}
	return e.Message
}

// LanguageOption is an entry of the language selector
type LanguageOption struct {
	Value string
	Label string
}

// Languages are the selectable spoken languages, auto-detection first.
var Languages = []LanguageOption{
	{Value: "auto", Label: "Auto-detect"},
	{Value: "en", Label: "English"},
	{Value: "id", Label: "Indonesian"},
}

// NormalizeLanguage maps a language code or label ("EN", "english",
// "Auto-detect") to its selector value. An empty value is DefaultLanguage.
func NormalizeLanguage(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return DefaultLanguage, nil
	}
	for _, l := range Languages {
		if v == l.Value || v == strings.ToLower(l.Label) {
			return l.Value, nil
		}
	}
	return "", fmt.Errorf("unsupported language %q (choose one of %s)", value, languageValues())
}

func languageValues() string {
	values := make([]string, len(Languages))
	for i, l := range Languages {
		values[i] = l.Value
	}
	return strings.Join(values, ", ")
}

// LanguageIndex returns the position of value in Languages, or 0.
func LanguageIndex(value string) int {
	value = strings.ToLower(strings.TrimSpace(value))
	for i, l := range Languages {
		if l.Value == value {
			return i
		}
	}
	return 0
}
