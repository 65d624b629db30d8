package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"mp4-splitter/domain/notification"
	"mp4-splitter/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
	MultiSelect(message string, options []string, defaults []string) ([]string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	if defaultValue != "" {
		prompt.Default = defaultValue
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) MultiSelect(message string, options []string, defaults []string) ([]string, error) {
	var result []string
	prompt := &survey.MultiSelect{
		Message: message,
		Options: options,
		Default: defaults,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up your configuration file
with default directories, the ffmpeg binary, the HTTP API address,
export history and Google Drive settings.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath
	}
	return RunSetupWithPrompter(DefaultPrompter, path, os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, output OutputWriter) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(output, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(output, "Welcome to mp4-splitter setup!")
	fmt.Fprintln(output)

	cfg := config.Default()

	// Paths section
	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}

	// FFmpeg section
	if err := promptFFmpeg(prompter, cfg); err != nil {
		return err
	}

	// Server and history section
	if err := promptServer(prompter, cfg); err != nil {
		return err
	}

	// Google section
	if err := promptGoogle(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Save configuration
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(output)
	fmt.Fprintf(output, "Configuration saved to %s\n", configPath)
	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	sourceDir, err := prompter.Input("Directory containing source videos (optional):", cfg.Paths.SourceDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Paths.SourceDirectory = sourceDir

	outputDir, err := prompter.Input("Default output directory for segments:", "output")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if outputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	cfg.Paths.OutputDirectory = outputDir

	return nil
}

func promptFFmpeg(prompter Prompter, cfg *config.Config) error {
	path, err := prompter.Input("Path to ffmpeg:", cfg.FFmpeg.Path)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if path == "" {
		return fmt.Errorf("ffmpeg path is required")
	}
	cfg.FFmpeg.Path = path

	backend, err := prompter.Select("Metadata probe:", []string{config.ProbeFFprobe, config.ProbeOpenCV}, cfg.FFmpeg.ProbeBackend)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.FFmpeg.ProbeBackend = backend

	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	port, err := prompter.Input("HTTP API port:", strconv.Itoa(cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("port must be a number: %q", port)
	}
	cfg.Server.Port = n

	keep, err := prompter.Confirm("Record export history?", cfg.History.Enabled)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.History.Enabled = keep

	return nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	useDrive, err := prompter.Confirm("Upload segments to Google Drive?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if !useDrive {
		return nil
	}

	credentials, err := prompter.Input("Path to OAuth client credentials JSON:", cfg.Google.CredentialsFile)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if credentials == "" {
		return fmt.Errorf("credentials file is required")
	}
	cfg.Google.CredentialsFile = credentials

	folderID, err := prompter.Input("Google Drive folder ID:", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if folderID == "" {
		return fmt.Errorf("folder ID is required")
	}
	cfg.Google.FolderID = folderID

	return promptNotify(prompter, cfg)
}

func promptNotify(prompter Prompter, cfg *config.Config) error {
	useEmail, err := prompter.Confirm("Email the segment links through Gmail after uploading?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if !useEmail {
		return nil
	}

	from, err := prompter.Input("Send from (your Gmail address):", cfg.Notify.FromAddress)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	sender, err := notification.ParseRecipient(from)
	if err != nil {
		return err
	}
	cfg.Notify.FromAddress = sender.Address

	name, err := prompter.Input("Sign emails as:", sender.Name)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Notify.FromName = name

	list, err := prompter.Input("Recipients (comma separated):", strings.Join(cfg.Notify.Recipients, ", "))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	var recipients []string
	for _, r := range strings.Split(list, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	if len(recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	if _, err := notification.ParseRecipients(recipients); err != nil {
		return err
	}
	cfg.Notify.Recipients = recipients

	return nil
}
