package transcribe

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrProbeUnavailable is returned when ffprobe is not installed
var ErrProbeUnavailable = errors.New("ffprobe not found")

// ffprobeBinary is looked up on PATH
var ffprobeBinary = "ffprobe"

// ProbeDuration asks ffprobe for the container duration of any media file
func ProbeDuration(path string) (time.Duration, error) {
	bin, err := exec.LookPath(ffprobeBinary)
	if err != nil {
		return 0, ErrProbeUnavailable
	}

	cmd := exec.Command(bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to probe audio: %w", err)
	}

	return parseProbeDuration(string(output))
}

func parseProbeDuration(output string) (time.Duration, error) {
	s := strings.TrimSpace(output)
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("no duration reported")
	}
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	if sec < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return time.Duration(sec * float64(time.Second)), nil
}
