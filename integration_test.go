//go:build integration
// +build integration

package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"whisperform/transcribe"
)

func binaryPath(t *testing.T) string {
	t.Helper()
	binaryName := "whisperform"
	if runtime.GOOS == "windows" {
		binaryName = "whisperform.exe"
	}
	if _, err := os.Stat(binaryName); os.IsNotExist(err) {
		t.Skip("Binary not found, skipping CLI integration test. Run 'go build' first.")
	}
	return "./" + binaryName
}

// TestIntegration_LiveServer uploads a real file to a running Whisper server
func TestIntegration_LiveServer(t *testing.T) {
	serverURL := os.Getenv("WHISPERFORM_TEST_URL")
	audio := os.Getenv("WHISPERFORM_TEST_AUDIO")
	if serverURL == "" || audio == "" {
		t.Skip("WHISPERFORM_TEST_URL or WHISPERFORM_TEST_AUDIO not set, skipping integration test")
	}

	client, err := transcribe.NewClient(serverURL, transcribe.WithDebug(true))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	model := os.Getenv("WHISPERFORM_TEST_MODEL")
	if model == "" {
		model = "tiny"
	}

	start := time.Now()
	resp, err := client.Transcribe(ctx, &transcribe.Request{
		FilePath: audio,
		Language: transcribe.DefaultLanguage,
		Model:    model,
	})
	if err != nil {
		t.Fatalf("Transcription failed: %v", err)
	}

	t.Logf("Transcribed %s in %s (language %q, %d segments)",
		filepath.Base(audio), time.Since(start).Round(time.Millisecond), resp.Language, len(resp.Segments))
	t.Logf("Transcript: %s", resp.DisplayText())

	for i, seg := range resp.Segments {
		if seg.End < seg.Start {
			t.Errorf("Segment %d ends before it starts: %s", i, seg.Range())
		}
		if i > 0 && seg.Start < resp.Segments[i-1].Start {
			t.Errorf("Segment %d is out of order", i)
		}
	}
}

// TestIntegration_CLIOneShot runs the binary against a mock server
func TestIntegration_CLIOneShot(t *testing.T) {
	binary := binaryPath(t)

	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			http.NotFound(w, r)
			return
		}
		file, _, err := r.FormFile("audio")
		if err != nil {
			http.Error(w, `{"error":"missing audio"}`, http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)
		received = string(data)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"mock transcript","language":"en","segments":[{"start":0,"end":1.25,"text":"mock transcript"}]}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	audio := filepath.Join(dir, "clip.wav")
	if err := os.WriteFile(audio, []byte("RIFF-mock"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command(binary, "-url", server.URL, "-file", audio, "-srt", "-vtt")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("One-shot command failed: %v\nOutput: %s", err, string(output))
	}

	if received != "RIFF-mock" {
		t.Errorf("Server received %q", received)
	}
	outputStr := string(output)
	for _, expected := range []string{"mock transcript", "0s → 1.25s:"} {
		if !strings.Contains(outputStr, expected) {
			t.Errorf("Output missing %q", expected)
		}
	}

	srt, err := os.ReadFile(filepath.Join(dir, "clip.srt"))
	if err != nil {
		t.Fatalf("Expected .srt file: %v", err)
	}
	if !strings.Contains(string(srt), "00:00:00,000 --> 00:00:01,250") {
		t.Errorf("Unexpected SRT content:\n%s", srt)
	}

	vtt, err := os.ReadFile(filepath.Join(dir, "clip.vtt"))
	if err != nil {
		t.Fatalf("Expected .vtt file: %v", err)
	}
	if !strings.HasPrefix(string(vtt), "WEBVTT") {
		t.Errorf("Unexpected VTT content:\n%s", vtt)
	}
}

// TestIntegration_CLIServerError checks the exit status on a failed upload
func TestIntegration_CLIServerError(t *testing.T) {
	binary := binaryPath(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer server.Close()

	audio := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(audio, []byte("ID3"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command(binary, "-url", server.URL, "-file", audio, "-copy")
	output, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("Expected non-zero exit\nOutput: %s", string(output))
	}
	if !strings.Contains(string(output), "model not loaded") {
		t.Errorf("Expected server message in output, got: %s", string(output))
	}
}

// TestIntegration_CLIHelp tests that the CLI help is working
func TestIntegration_CLIHelp(t *testing.T) {
	binary := binaryPath(t)

	cmd := exec.Command(binary, "--help")
	output, err := cmd.CombinedOutput()
	if err != nil {
		// --help might return non-zero exit code on some systems
		t.Logf("Help command output: %s", string(output))
	}

	outputStr := string(output)
	expectedStrings := []string{
		"whisperform",
		"-file",
		"-url",
		"-model",
		"-srt",
		"WHISPERFORM_URL",
		"WHISPER_MODELS",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(outputStr, expected) {
			t.Errorf("Help output missing expected string: %s", expected)
		}
	}
}

// TestIntegration_CLIVersion tests the version command
func TestIntegration_CLIVersion(t *testing.T) {
	binary := binaryPath(t)

	cmd := exec.Command(binary, "--version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Version command failed: %v\nOutput: %s", err, string(output))
	}
	if !strings.Contains(string(output), "whisperform") {
		t.Error("Version output should contain 'whisperform'")
	}
}

// TestIntegration_InvalidURL checks that a bad server URL shows the setup help
func TestIntegration_InvalidURL(t *testing.T) {
	binary := binaryPath(t)

	cmd := exec.Command(binary, "-url", "localhost:5000", "-file", "missing.wav")
	output, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatal("Expected non-zero exit for an invalid URL")
	}
	if !strings.Contains(string(output), "WHISPERFORM_URL") {
		t.Errorf("Expected configuration help, got: %s", string(output))
	}
}
