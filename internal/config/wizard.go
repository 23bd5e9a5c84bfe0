package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// detectSources looks for tracker exports in the working directory.
func detectSources() []string {
	var found []string
	for _, pattern := range []string{"*.csv", "*.xlsx"} {
		matches, _ := filepath.Glob(pattern)
		found = append(found, matches...)
	}
	return found
}

// RunWizard runs an interactive configuration wizard and saves the
// resulting Config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to tadash! Let's point it at your TA tracker.")
	fmt.Println()

	cfg := DefaultConfig()

	defaultSource := strings.Join(DefaultSources, ", ")
	if found := detectSources(); len(found) > 0 {
		fmt.Printf("Found %d export(s) here: %s\n\n", len(found), strings.Join(found, ", "))
		defaultSource = strings.Join(found, ", ")
	}

	// 1. Sources.
	sourcesPrompt := promptui.Prompt{
		Label:   "Tracker exports (comma-separated paths, globs or s3:// URIs)",
		Default: defaultSource,
	}
	sourcesStr, err := sourcesPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("sources: %w", err)
	}
	cfg.Data.Sources = splitAndTrim(sourcesStr)

	// 2. Metadata rows above the header.
	skipPrompt := promptui.Prompt{
		Label:    "Metadata rows above the header row",
		Default:  strconv.Itoa(cfg.Data.SkipRows),
		Validate: nonNegativeInt,
	}
	skipStr, err := skipPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("skip rows: %w", err)
	}
	cfg.Data.SkipRows, _ = strconv.Atoi(skipStr)

	// 3. S3 region, only when needed.
	if cfg.NeedsS3() {
		regionPrompt := promptui.Prompt{
			Label:   "AWS region for s3:// sources",
			Default: "us-east-1",
		}
		region, err := regionPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("s3 region: %w", err)
		}
		cfg.S3.Region = region
	}

	// 4. Server port.
	portPrompt := promptui.Prompt{
		Label:    "HTTP port for tadash serve",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validPort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 5. Load history.
	historyPrompt := promptui.Select{
		Label: "Keep a log of every tracker load?",
		Items: []string{"no", "yes (sqlite at " + cfg.History.Path + ")"},
	}
	historyIdx, _, err := historyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("history selection: %w", err)
	}
	cfg.History.Enabled = historyIdx == 1

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func nonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number >= 0")
	}
	return nil
}

func validPort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("enter a port between 1 and 65535")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and drops empty entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
