package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh/spinner"
	"github.com/creativeprojects/go-selfupdate"
)

// defaultUpdateRepo is the GitHub repository releases are published to.
// WHISPERFORM_UPDATE_REPO overrides it for forks.
const defaultUpdateRepo = "whisperform/whisperform"

func updateRepo() string {
	if repo := os.Getenv("WHISPERFORM_UPDATE_REPO"); repo != "" {
		return repo
	}
	return defaultUpdateRepo
}

// runSelfUpdate replaces the running binary with the latest release
func runSelfUpdate() error {
	if version == "dev" {
		return fmt.Errorf("development builds cannot self-update; install a release build")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var latest *selfupdate.Release
	var found bool
	var detectErr error
	err := spinner.New().
		Title("Checking for updates...").
		Action(func() {
			latest, found, detectErr = selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(updateRepo()))
		}).
		Run()
	if err != nil {
		return err
	}
	if detectErr != nil {
		return fmt.Errorf("failed to check for updates: %w", detectErr)
	}
	if !found {
		return fmt.Errorf("no release found for %s", updateRepo())
	}
	if latest.LessOrEqual(version) {
		fmt.Println(infoStyle.Render(fmt.Sprintf("Already up to date (%s).", version)))
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	var updateErr error
	err = spinner.New().
		Title(fmt.Sprintf("Downloading %s...", latest.Version())).
		Action(func() {
			updateErr = selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe)
		}).
		Run()
	if err != nil {
		return err
	}
	if updateErr != nil {
		return fmt.Errorf("failed to update: %w", updateErr)
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("✅ Updated to %s", latest.Version())))
	return nil
}
