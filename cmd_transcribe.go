package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"whisperform/transcribe"
	"whisperform/tui"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/mattn/go-isatty"
)

// runTranscribe uploads f.File, prints the transcript and handles the
// subtitle and clipboard flags. On a terminal with no output flags it
// offers the follow-up actions interactively.
func runTranscribe(client *transcribe.Client, cfg transcribe.Config, f cliFlags) error {
	if !transcribe.IsAllowedAudio(f.File) {
		fmt.Println(infoStyle.Render(fmt.Sprintf(
			"⚠️  %s does not look like a supported audio file (%s)",
			filepath.Base(f.File), strings.Join(transcribe.AllowedExtensions, " "),
		)))
	}

	info, err := transcribe.InspectAudio(f.File)
	if err != nil {
		return err
	}
	fmt.Println(boxStyle.Render(audioSummary(info, client.BaseURL())))

	req := &transcribe.Request{
		FilePath: f.File,
		Language: cfg.DefaultLanguage,
		Model:    cfg.DefaultModel,
	}

	var resp *transcribe.Response
	var transcribeErr error
	err = spinner.New().
		Title("Uploading and transcribing...").
		Action(func() {
			resp, transcribeErr = client.Transcribe(context.Background(), req)
		}).
		Run()
	if err != nil {
		return err
	}
	if transcribeErr != nil {
		return transcribeErr
	}

	printResult(os.Stdout, resp)

	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !f.SRT && !f.VTT && !f.Copy && interactive {
		return askNextAction(f.File, resp)
	}

	if f.SRT {
		if err := saveSubtitles(f.File, resp, transcribe.SubtitleFormatSRT); err != nil {
			return err
		}
	}
	if f.VTT {
		if err := saveSubtitles(f.File, resp, transcribe.SubtitleFormatVTT); err != nil {
			return err
		}
	}
	if f.Copy {
		if err := copyTranscript(resp); err != nil {
			return err
		}
	}
	return nil
}

func audioSummary(info *transcribe.AudioInfo, server string) string {
	duration := "unknown"
	if info.Duration > 0 {
		duration = transcribe.FormatDuration(info.Duration)
	}
	return fmt.Sprintf(
		"🎧 %s\n📦 Size: %s\n⏱  Duration: %s\n🌐 Server: %s",
		info.Filename,
		transcribe.FormatSize(info.Size),
		duration,
		server,
	)
}

// printResult writes the transcript followed by one line per segment
func printResult(w io.Writer, resp *transcribe.Response) {
	fmt.Fprintln(w, successStyle.Render("✅ Transcription complete"))
	if resp.Language != "" {
		fmt.Fprintln(w, infoStyle.Render("Language: "+resp.Language))
	}
	fmt.Fprintln(w, boxStyle.Render(resp.DisplayText()))

	if len(resp.Segments) == 0 {
		return
	}
	fmt.Fprintln(w, subtitleStyle.Render(fmt.Sprintf("Segments (%d)", len(resp.Segments))))
	for _, seg := range resp.Segments {
		fmt.Fprintln(w, tui.RangeStyle.Render(seg.Range())+" "+seg.Text)
	}
}

func saveSubtitles(audioPath string, resp *transcribe.Response, format transcribe.SubtitleFormat) error {
	path := transcribe.SubtitlePath(audioPath, format)
	if err := transcribe.WriteSubtitleFile(path, resp.Segments); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("💾 Saved " + path))
	return nil
}

func copyTranscript(resp *transcribe.Response) error {
	if strings.TrimSpace(resp.Text) == "" {
		fmt.Println(infoStyle.Render("Nothing to copy."))
		return nil
	}
	if err := tui.SystemClipboard(resp.Text); err != nil {
		return fmt.Errorf("unable to copy transcript: %w", err)
	}
	fmt.Println(successStyle.Render("📋 Copied!"))
	return nil
}

// askNextAction offers the follow-up actions until the user exits
func askNextAction(audioPath string, resp *transcribe.Response) error {
	for {
		options := []huh.Option[string]{}
		if strings.TrimSpace(resp.Text) != "" {
			options = append(options, huh.NewOption("Copy transcript", "copy"))
		}
		if len(resp.Segments) > 0 {
			options = append(options,
				huh.NewOption("Save subtitles (.srt)", "srt"),
				huh.NewOption("Save subtitles (.vtt)", "vtt"),
			)
		}
		if len(options) == 0 {
			return nil
		}
		options = append(options, huh.NewOption("Exit", "exit"))

		var choice string
		selectNext := huh.NewSelect[string]().
			Title("What next?").
			Options(options...).
			Value(&choice)

		err := huh.NewForm(huh.NewGroup(selectNext)).
			WithTheme(huh.ThemeCatppuccin()).
			Run()
		if err != nil {
			if err == huh.ErrUserAborted {
				return nil
			}
			return err
		}

		switch choice {
		case "copy":
			err = copyTranscript(resp)
		case "srt":
			err = saveSubtitles(audioPath, resp, transcribe.SubtitleFormatSRT)
		case "vtt":
			err = saveSubtitles(audioPath, resp, transcribe.SubtitleFormatVTT)
		default:
			return nil
		}
		if err != nil {
			fmt.Println(errorStyle.Render("Error: " + err.Error()))
		}
	}
}
