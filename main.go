package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"whisperform/transcribe"
	"whisperform/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
)

// Build info - set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C9CFF")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4")).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8A8A8"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)

	logo = `
    ╭─────────────────────────────────────╮
    │  🎙  Whisperform - Audio Transcriber │
    ╰─────────────────────────────────────╯`
)

// cliFlags holds command-line overrides for the environment configuration
type cliFlags struct {
	URL      string
	Timeout  time.Duration
	Debug    bool
	File     string
	Language string
	Model    string
	SRT      bool
	VTT      bool
	Copy     bool
}

// debugLogFile receives log output while the full-screen UI owns the terminal
const debugLogFile = "whisperform-debug.log"

func main() {
	// Parse flags
	versionFlag := flag.Bool("version", false, "Print version information")
	shortVersionFlag := flag.Bool("v", false, "Print version information (short)")
	updateFlag := flag.Bool("update", false, "Update whisperform to the latest release")
	initFlag := flag.Bool("init", false, "Write a .env file with the current configuration")

	var f cliFlags
	flag.StringVar(&f.URL, "url", "", "Transcription server URL (overrides WHISPERFORM_URL)")
	flag.DurationVar(&f.Timeout, "timeout", 0, "Request timeout, e.g. 15m (overrides WHISPERFORM_TIMEOUT)")
	flag.BoolVar(&f.Debug, "debug", false, "Log requests and responses")
	flag.StringVar(&f.File, "file", "", "Transcribe this audio file without the interactive form")
	flag.StringVar(&f.Language, "language", "", "Language code: auto, en, id")
	flag.StringVar(&f.Model, "model", "", "Whisper model, e.g. medium")
	flag.BoolVar(&f.SRT, "srt", false, "Save segments as an .srt file next to the audio (with -file)")
	flag.BoolVar(&f.VTT, "vtt", false, "Save segments as a .vtt file next to the audio (with -file)")
	flag.BoolVar(&f.Copy, "copy", false, "Copy the transcript to the clipboard (with -file)")

	flag.Usage = printUsage
	flag.Parse()

	if *versionFlag || *shortVersionFlag {
		fmt.Print(versionInfo())
		os.Exit(0)
	}

	// Load .env file if it exists (won't error if missing)
	_ = godotenv.Load()

	if *updateFlag {
		if err := runSelfUpdate(); err != nil {
			fmt.Println(errorStyle.Render("Error: " + err.Error()))
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := transcribe.LoadConfig()
	if err != nil {
		fmt.Println(errorStyle.Render("Error: " + err.Error()))
		fmt.Println(infoStyle.Render(transcribe.GetConfigHelp()))
		os.Exit(1)
	}
	cfg, err = applyFlags(cfg, f)
	if err != nil {
		fmt.Println(errorStyle.Render("Error: " + err.Error()))
		os.Exit(1)
	}

	if *initFlag {
		if err := writeDotEnv(".env", cfg); err != nil {
			fmt.Println(errorStyle.Render("Error: " + err.Error()))
			os.Exit(1)
		}
		fmt.Println(successStyle.Render("✅ Wrote .env"))
		os.Exit(0)
	}

	client, err := transcribe.NewClientFromConfig(cfg)
	if err != nil {
		fmt.Println(errorStyle.Render("Error: " + err.Error()))
		fmt.Println(infoStyle.Render(transcribe.GetConfigHelp()))
		os.Exit(1)
	}

	if f.File != "" {
		fmt.Println(titleStyle.Render(logo))
		if err := runTranscribe(client, cfg, f); err != nil {
			fmt.Println(errorStyle.Render("Error: " + err.Error()))
			os.Exit(1)
		}
		return
	}

	if cfg.Debug {
		logFile, err := tea.LogToFile(debugLogFile, "whisperform")
		if err != nil {
			fmt.Println(errorStyle.Render("Error: " + err.Error()))
			os.Exit(1)
		}
		defer logFile.Close()
	}

	err = tui.RunUploadUI(client, tui.UploadOptions{
		Models:   cfg.Catalog(),
		Model:    cfg.DefaultModel,
		Language: cfg.DefaultLanguage,
	})
	if err != nil {
		log.Printf("[DEBUG] UI exited with error: %v", err)
		fmt.Println(errorStyle.Render("Error: " + err.Error()))
		os.Exit(1)
	}

	fmt.Println(subtitleStyle.Render("\n🎙  Thanks for using Whisperform!"))
}

// applyFlags layers command-line values over the environment configuration
func applyFlags(cfg transcribe.Config, f cliFlags) (transcribe.Config, error) {
	if f.URL != "" {
		cfg.BaseURL = f.URL
	}
	if f.Timeout > 0 {
		cfg.Timeout = f.Timeout
	}
	if f.Debug {
		cfg.Debug = true
	}
	if f.Language != "" {
		lang, err := transcribe.NormalizeLanguage(f.Language)
		if err != nil {
			return cfg, fmt.Errorf("invalid -language: %w", err)
		}
		cfg.DefaultLanguage = lang
	}
	if f.Model != "" {
		cfg.DefaultModel = f.Model
	}
	return cfg, nil
}

// generateDotEnv renders cfg in .env syntax
func generateDotEnv(cfg transcribe.Config) (string, error) {
	env := map[string]string{
		"WHISPERFORM_URL":  cfg.BaseURL,
		"WHISPER_LANGUAGE": cfg.DefaultLanguage,
	}
	if len(cfg.Models) > 0 {
		env["WHISPER_MODELS"] = strings.Join(cfg.Models, ",")
	}
	if cfg.DefaultModel != "" {
		env["WHISPER_MODEL"] = cfg.DefaultModel
	}
	if cfg.Timeout > 0 {
		env["WHISPERFORM_TIMEOUT"] = cfg.Timeout.String()
	}
	if cfg.Debug {
		env["WHISPERFORM_DEBUG"] = "1"
	}

	content, err := godotenv.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to render .env: %w", err)
	}
	return "# Whisperform configuration\n" + content + "\n", nil
}

// writeDotEnv writes cfg to path, refusing to replace an existing file
func writeDotEnv(path string, cfg transcribe.Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}

	content, err := generateDotEnv(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func versionInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "whisperform %s\n", version)
	fmt.Fprintf(&b, "  commit: %s\n", commit)
	fmt.Fprintf(&b, "  built:  %s\n", date)
	fmt.Fprintf(&b, "  go:     %s\n", runtime.Version())
	fmt.Fprintf(&b, "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return b.String()
}

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "whisperform - upload audio to a Whisper server and read the transcript\n\n")
	fmt.Fprintf(out, "Usage:\n")
	fmt.Fprintf(out, "  whisperform                 open the interactive form\n")
	fmt.Fprintf(out, "  whisperform -file memo.mp3  transcribe one file and print the result\n\n")
	fmt.Fprintf(out, "Flags:\n")
	flag.PrintDefaults()
	fmt.Fprintf(out, "\nEnvironment:\n")
	fmt.Fprintf(out, "  WHISPERFORM_URL      server URL (default %s)\n", transcribe.DefaultBaseURL)
	fmt.Fprintf(out, "  WHISPER_MODELS       comma-separated model choices\n")
	fmt.Fprintf(out, "  WHISPER_MODEL        default model\n")
	fmt.Fprintf(out, "  WHISPER_LANGUAGE     default language\n")
	fmt.Fprintf(out, "  WHISPERFORM_TIMEOUT  request timeout (default %s)\n", transcribe.DefaultTimeout)
	fmt.Fprintf(out, "  WHISPERFORM_DEBUG    set to 1 for request logging\n")
}
