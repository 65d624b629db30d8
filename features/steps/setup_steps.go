//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mp4-splitter/cmd"
	"mp4-splitter/infrastructure/config"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir         string
	configPath      string
	originalContent string
	output          *bytes.Buffer
	err             error
}

var SharedSetupContext *setupContext

// MockPrompter implements cmd.Prompter for testing. Each kind of prompt
// answers from its own queue; an exhausted queue falls back to the default.
type MockPrompter struct {
	inputResponses       []string
	confirmResponses     []bool
	selectResponses      []string
	multiSelectResponses [][]string
	inputIndex           int
	confirmIndex         int
	selectIndex          int
	multiSelectIndex     int
}

func NewMockPrompter(inputs []string, confirms []bool) *MockPrompter {
	return &MockPrompter{
		inputResponses:   inputs,
		confirmResponses: confirms,
	}
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		if defaultValue != "" {
			return defaultValue, nil
		}
		return "", fmt.Errorf("no more input responses available for message: %s", message)
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

func (m *MockPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	if m.selectIndex >= len(m.selectResponses) {
		if defaultValue != "" {
			return defaultValue, nil
		}
		return "", fmt.Errorf("no more select responses available for message: %s", message)
	}
	response := m.selectResponses[m.selectIndex]
	m.selectIndex++
	return response, nil
}

func (m *MockPrompter) MultiSelect(message string, options []string, defaults []string) ([]string, error) {
	if m.multiSelectIndex >= len(m.multiSelectResponses) {
		return defaults, nil
	}
	response := m.multiSelectResponses[m.multiSelectIndex]
	m.multiSelectIndex++
	return response, nil
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		// Create temp directory for each scenario
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		SharedSetupContext = &setupContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config", "config.yaml"),
			output:     &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		// Cleanup temp directory
		if SharedSetupContext != nil && SharedSetupContext.tempDir != "" {
			os.RemoveAll(SharedSetupContext.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup command with inputs:$`, iRunTheSetupCommandWithInputs)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, iRunTheSetupCommandWithConfirmation)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)" and inputs:$`, iRunTheSetupCommandWithConfirmationAndInputs)
	ctx.Step(`^a config file should exist$`, aConfigFileShouldExist)
	ctx.Step(`^the config should have output_directory "([^"]*)"$`, theConfigShouldHaveOutputDirectory)
	ctx.Step(`^the config should have source_directory "([^"]*)"$`, theConfigShouldHaveSourceDirectory)
	ctx.Step(`^the config should have probe_backend "([^"]*)"$`, theConfigShouldHaveProbeBackend)
	ctx.Step(`^the config should have server port (\d+)$`, theConfigShouldHaveServerPort)
	ctx.Step(`^the config should have folder_id "([^"]*)"$`, theConfigShouldHaveFolderID)
	ctx.Step(`^history should be (enabled|disabled) in the config$`, historyShouldBeInTheConfig)
	ctx.Step(`^the config should send email from "([^"]*)" signed "([^"]*)"$`, theConfigShouldSendEmailFrom)
	ctx.Step(`^the config should email (\d+) recipients?$`, theConfigShouldEmailRecipients)
	ctx.Step(`^the setup should fail with "([^"]*)"$`, theSetupShouldFailWith)
	ctx.Step(`^the setup should be cancelled$`, theSetupShouldBeCancelled)
	ctx.Step(`^the existing config should be unchanged$`, theExistingConfigShouldBeUnchanged)
}

func noConfigFileExistsForSetup() error {
	// Just ensure the config path directory exists but no config file
	return os.MkdirAll(filepath.Dir(SharedSetupContext.configPath), 0755)
}

func aConfigFileAlreadyExistsForSetup() error {
	s := SharedSetupContext
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}

	content := `paths:
  output_directory: "/original/output"
ffmpeg:
  path: "/usr/bin/ffmpeg"
server:
  port: 9000
`
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0644)
}

// parseInputTable splits answers by prompt kind. Prompts starting with
// "record" or "upload" are confirmations and "probe" is a selection.
func parseInputTable(table *godog.Table) *MockPrompter {
	m := &MockPrompter{}
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		prompt := strings.ToLower(row.Cells[0].Value)
		value := row.Cells[1].Value

		switch {
		case strings.HasPrefix(prompt, "record"), strings.HasPrefix(prompt, "upload"), strings.HasPrefix(prompt, "email"):
			m.confirmResponses = append(m.confirmResponses, strings.ToLower(value) == "y")
		case strings.HasPrefix(prompt, "probe"):
			m.selectResponses = append(m.selectResponses, value)
		default:
			m.inputResponses = append(m.inputResponses, value)
		}
	}
	return m
}

func iRunTheSetupCommandWithInputs(table *godog.Table) error {
	s := SharedSetupContext
	s.err = cmd.RunSetupWithPrompter(parseInputTable(table), s.configPath, s.output)
	return nil
}

func iRunTheSetupCommandWithConfirmation(confirm string) error {
	s := SharedSetupContext
	prompter := NewMockPrompter(nil, []bool{strings.ToLower(confirm) == "y"})
	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath, s.output)
	return nil
}

func iRunTheSetupCommandWithConfirmationAndInputs(confirm string, table *godog.Table) error {
	s := SharedSetupContext
	prompter := parseInputTable(table)

	// Prepend the overwrite confirmation
	prompter.confirmResponses = append([]bool{strings.ToLower(confirm) == "y"}, prompter.confirmResponses...)

	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath, s.output)
	return nil
}

func loadSetupConfig() (*config.Config, error) {
	s := SharedSetupContext
	if s.err != nil {
		return nil, fmt.Errorf("setup command failed: %w", s.err)
	}
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func aConfigFileShouldExist() error {
	s := SharedSetupContext
	if s.err != nil {
		return fmt.Errorf("setup command failed: %w", s.err)
	}
	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist at %s", s.configPath)
	}
	return nil
}

func theConfigShouldHaveOutputDirectory(expected string) error {
	cfg, err := loadSetupConfig()
	if err != nil {
		return err
	}
	if cfg.Paths.OutputDirectory != expected {
		return fmt.Errorf("expected output_directory %q, got %q", expected, cfg.Paths.OutputDirectory)
	}
	return nil
}

func theConfigShouldHaveSourceDirectory(expected string) error {
	cfg, err := loadSetupConfig()
	if err != nil {
		return err
	}
	if cfg.Paths.SourceDirectory != expected {
		return fmt.Errorf("expected source_directory %q, got %q", expected, cfg.Paths.SourceDirectory)
	}
	return nil
}

func theConfigShouldHaveProbeBackend(expected string) error {
	cfg, err := loadSetupConfig()
	if err != nil {
		return err
	}
	if cfg.FFmpeg.ProbeBackend != expected {
		return fmt.Errorf("expected probe_backend %q, got %q", expected, cfg.FFmpeg.ProbeBackend)
	}
	return nil
}

func theConfigShouldHaveServerPort(expected int) error {
	cfg, err := loadSetupConfig()
	if err != nil {
		return err
	}
	if cfg.Server.Port != expected {
		return fmt.Errorf("expected server port %d, got %d", expected, cfg.Server.Port)
	}
	return nil
}

func theConfigShouldHaveFolderID(expected string) error {
	cfg, err := loadSetupConfig()
	if err != nil {
		return err
	}
	if cfg.Google.FolderID != expected {
		return fmt.Errorf("expected folder_id %q, got %q", expected, cfg.Google.FolderID)
	}
	return nil
}

func theConfigShouldSendEmailFrom(address, name string) error {
	cfg, err := loadSetupConfig()
	if err != nil {
		return err
	}
	if cfg.Notify.FromAddress != address || cfg.Notify.FromName != name {
		return fmt.Errorf("expected sender %q signed %q, got %q signed %q", address, name, cfg.Notify.FromAddress, cfg.Notify.FromName)
	}
	return nil
}

func theConfigShouldEmailRecipients(n int) error {
	cfg, err := loadSetupConfig()
	if err != nil {
		return err
	}
	if len(cfg.Notify.Recipients) != n {
		return fmt.Errorf("expected %d recipients, got %v", n, cfg.Notify.Recipients)
	}
	return nil
}

func historyShouldBeInTheConfig(state string) error {
	cfg, err := loadSetupConfig()
	if err != nil {
		return err
	}
	if cfg.History.Enabled != (state == "enabled") {
		return fmt.Errorf("expected history %s, got enabled=%v", state, cfg.History.Enabled)
	}
	return nil
}

func theSetupShouldFailWith(message string) error {
	s := SharedSetupContext
	if s.err == nil {
		return fmt.Errorf("expected setup to fail with %q", message)
	}
	if !strings.Contains(s.err.Error(), message) {
		return fmt.Errorf("expected error containing %q, got %q", message, s.err.Error())
	}
	return nil
}

func theSetupShouldBeCancelled() error {
	s := SharedSetupContext
	if s.err != nil {
		return fmt.Errorf("setup command failed: %w", s.err)
	}
	if !strings.Contains(s.output.String(), "Setup cancelled.") {
		return fmt.Errorf("expected setup to be cancelled, output:\n%s", s.output.String())
	}
	return nil
}

func theExistingConfigShouldBeUnchanged() error {
	s := SharedSetupContext
	content, err := os.ReadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if string(content) != s.originalContent {
		return fmt.Errorf("config content was changed")
	}
	return nil
}
