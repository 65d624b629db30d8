package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"mp4-splitter/application/session"
	"mp4-splitter/domain/split"
	"mp4-splitter/infrastructure/project"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
)

var (
	markSource  string
	markOutput  string
	markProject string
)

var markCmd = &cobra.Command{
	Use:   "mark",
	Short: "Mark split points interactively and export",
	Long: `Open a video and build its split points step by step.

Each added point closes a segment that starts where the previous one ended.
Boundaries can be edited afterwards, segments left out of the export,
and the session saved as a project file to resume later.

Example:
  mp4-splitter mark --source talk.mp4 --output out
  mp4-splitter mark --project talk.yaml`,
	RunE: runMark,
}

func init() {
	rootCmd.AddCommand(markCmd)
	markCmd.Flags().StringVar(&markSource, "source", "", "Source video file")
	markCmd.Flags().StringVar(&markOutput, "output", "", "Output directory (defaults to paths.output_directory)")
	markCmd.Flags().StringVar(&markProject, "project", "", "Project file to resume from and save to")
}

// Menu actions
const (
	actionAddPoint = "Add split point"
	actionAddTail  = "Add final segment (to end of video)"
	actionEdit     = "Edit a boundary"
	actionSelect   = "Choose segments to export"
	actionSave     = "Save project"
	actionExport   = "Export"
	actionQuit     = "Quit"
)

var markActions = []string{
	actionAddPoint,
	actionAddTail,
	actionEdit,
	actionSelect,
	actionSave,
	actionExport,
	actionQuit,
}

// MarkOptions holds the inputs of an interactive session
type MarkOptions struct {
	Source  string
	Output  string
	Project string
}

// timeInputPrompter is implemented by prompters that can reject input before returning it
type timeInputPrompter interface {
	InputValidated(message, defaultValue string, validate func(string) error) (string, error)
}

// InputValidated asks until validate accepts the answer
func (p *SurveyPrompter) InputValidated(message, defaultValue string, validate func(string) error) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	check := func(ans interface{}) error {
		s, _ := ans.(string)
		return validate(s)
	}
	if err := survey.AskOne(prompt, &result, survey.WithValidator(check)); err != nil {
		return "", err
	}
	return result, nil
}

func runMark(cmd *cobra.Command, args []string) error {
	c, err := requireConfig()
	if err != nil {
		return err
	}
	log := GetLogger()
	ctx := cmd.Context()

	backend, err := newBackend(c, log)
	if err != nil {
		return err
	}
	if err := verifyFFmpeg(ctx, backend); err != nil {
		return err
	}

	db, err := openHistory(c, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	sess := newSession(backend, log, historyOption(db)...)
	opts := MarkOptions{
		Source:  resolveSource(c, markSource),
		Output:  resolveOutput(c, markOutput),
		Project: markProject,
	}
	return RunMarkWithDependencies(ctx, sess, DefaultPrompter, opts, os.Stdout)
}

// RunMarkWithDependencies runs the interactive session with injected dependencies (for testing)
func RunMarkWithDependencies(
	ctx context.Context,
	sess *session.Session,
	prompter Prompter,
	opts MarkOptions,
	output OutputWriter,
) error {
	if err := openMarkSession(ctx, sess, opts, output); err != nil {
		return err
	}
	if opts.Output != "" && sess.State().OutputDir == "" {
		sess.SetOutputDir(opts.Output)
	}

	m := &marker{ctx: ctx, sess: sess, prompter: prompter, out: output, project: opts.Project}
	for {
		fmt.Fprintln(output)
		printIntervals(output, sess.Intervals())
		fmt.Fprintln(output)

		action, err := prompter.Select("What next?", markActions, "")
		if err != nil {
			return m.cancelled(err)
		}

		if action == actionQuit {
			fmt.Fprintln(output, "Bye.")
			return nil
		}

		if err := m.run(action); err != nil {
			if isInterrupt(err) {
				continue
			}
			if isUserError(err) {
				fmt.Fprintf(output, "Error: %v\n", err)
				continue
			}
			return err
		}
	}
}

func openMarkSession(ctx context.Context, sess *session.Session, opts MarkOptions, output OutputWriter) error {
	if opts.Project != "" && opts.Source == "" {
		doc, err := project.Load(opts.Project)
		if err != nil {
			return err
		}
		if err := sess.Restore(ctx, *doc); err != nil {
			return fmt.Errorf("failed to restore project: %w", err)
		}
	} else {
		if opts.Source == "" {
			return fmt.Errorf("--source or --project is required")
		}
		if _, err := sess.LoadVideo(ctx, opts.Source); err != nil {
			return fmt.Errorf("failed to load video: %w", err)
		}
	}

	if info := sess.Info(); info != nil {
		fmt.Fprintf(output, "Loaded %s\n", info.String())
	}
	return nil
}

// marker carries one interactive session's collaborators
type marker struct {
	ctx      context.Context
	sess     *session.Session
	prompter Prompter
	out      OutputWriter
	project  string
}

func (m *marker) run(action string) error {
	switch action {
	case actionAddPoint:
		return m.addPoint()
	case actionAddTail:
		if _, err := m.sess.AddTail(); err != nil {
			return err
		}
		fmt.Fprintln(m.out, "Added final segment.")
		return nil
	case actionEdit:
		return m.editBoundary()
	case actionSelect:
		return m.chooseSegments()
	case actionSave:
		return m.save()
	case actionExport:
		return m.export()
	}
	return fmt.Errorf("unknown action %q", action)
}

func (m *marker) addPoint() error {
	suggest := ""
	if ivs := m.sess.Intervals(); len(ivs) > 0 && ivs[len(ivs)-1].EndMs != nil {
		suggest = split.FormatTime(*ivs[len(ivs)-1].EndMs)
	}

	text, err := m.askTime("Split point (HH:MM:SS.mmm):", suggest)
	if err != nil {
		return err
	}
	iv, err := m.sess.AddPointText(text)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Added segment %s - %s\n", split.FormatTime(iv.StartMs), split.FormatOptional(iv.EndMs))
	return nil
}

func (m *marker) editBoundary() error {
	ivs := m.sess.Intervals()
	if len(ivs) == 0 {
		fmt.Fprintln(m.out, "No split points to edit.")
		return nil
	}

	labels := intervalLabels(ivs)
	choice, err := m.prompter.Select("Which segment?", labels, "")
	if err != nil {
		return err
	}
	index := indexOf(labels, choice)
	if index < 0 {
		return fmt.Errorf("%w: %q", split.ErrIndexOutOfRange, choice)
	}

	which, err := m.prompter.Select("Which boundary?", []string{split.Start.String(), split.End.String()}, "")
	if err != nil {
		return err
	}
	boundary, ok := split.ParseBoundary(which)
	if !ok {
		return fmt.Errorf("unknown boundary %q", which)
	}

	current := split.FormatTime(ivs[index].StartMs)
	if boundary == split.End {
		current = ""
		if ivs[index].EndMs != nil {
			current = split.FormatTime(*ivs[index].EndMs)
		}
	}

	text, err := m.prompter.Input(fmt.Sprintf("New %s (HH:MM:SS.mmm):", boundary), current)
	if err != nil {
		return err
	}
	return m.sess.EditBoundary(index, boundary, text)
}

func (m *marker) chooseSegments() error {
	ivs := m.sess.Intervals()
	if len(ivs) == 0 {
		fmt.Fprintln(m.out, "No split points to choose from.")
		return nil
	}

	labels := intervalLabels(ivs)
	var defaults []string
	for i, iv := range ivs {
		if iv.Selected {
			defaults = append(defaults, labels[i])
		}
	}

	chosen, err := m.prompter.MultiSelect("Segments to export:", labels, defaults)
	if err != nil {
		return err
	}
	keep := make(map[string]bool, len(chosen))
	for _, c := range chosen {
		keep[c] = true
	}
	for i, label := range labels {
		if err := m.sess.ToggleSelected(i, keep[label]); err != nil {
			return err
		}
	}
	return nil
}

func (m *marker) save() error {
	path, err := m.prompter.Input("Project file:", m.project)
	if err != nil {
		return err
	}
	if path == "" {
		return &split.ConfigurationError{Message: "project file path is required"}
	}
	if err := project.Save(m.sess.Snapshot(), path); err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return nil
	}
	m.project = path
	fmt.Fprintf(m.out, "Saved project to %s\n", path)
	return nil
}

func (m *marker) export() error {
	if m.sess.State().OutputDir == "" {
		dir, err := m.prompter.Input("Output directory:", "")
		if err != nil {
			return err
		}
		if dir != "" {
			m.sess.SetOutputDir(dir)
		}
	}

	result, err := m.sess.Export(m.ctx, newConsoleObserver(m.out))
	if err != nil {
		return err
	}
	for _, seg := range result.Segments {
		fmt.Fprintf(m.out, "  %s\n", seg.OutputPath)
	}
	return nil
}

// askTime reads a timestamp, validating it while typing when the prompter supports that
func (m *marker) askTime(message, defaultValue string) (string, error) {
	validate := func(s string) error {
		_, err := split.ParseTime(s)
		return err
	}
	if vp, ok := m.prompter.(timeInputPrompter); ok {
		return vp.InputValidated(message, defaultValue, validate)
	}
	return m.prompter.Input(message, defaultValue)
}

// cancelled turns Ctrl-C at the main menu into a normal exit
func (m *marker) cancelled(err error) error {
	if isInterrupt(err) {
		fmt.Fprintln(m.out, "Bye.")
		return nil
	}
	return fmt.Errorf("prompt cancelled: %w", err)
}

func intervalLabels(ivs []split.Interval) []string {
	labels := make([]string, len(ivs))
	for i, iv := range ivs {
		labels[i] = fmt.Sprintf("%d: %s - %s", i+1, split.FormatTime(iv.StartMs), split.FormatOptional(iv.EndMs))
	}
	return labels
}

func indexOf(items []string, item string) int {
	for i, s := range items {
		if s == item {
			return i
		}
	}
	return -1
}

func isInterrupt(err error) bool {
	return errors.Is(err, terminal.InterruptErr)
}

// isUserError reports errors the session loop shows and recovers from
func isUserError(err error) bool {
	return split.IsParseError(err) ||
		split.IsConfigurationError(err) ||
		split.IsExportError(err) ||
		errors.Is(err, split.ErrIndexOutOfRange) ||
		errors.Is(err, split.ErrOpenTail)
}
