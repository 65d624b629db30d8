//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mp4-splitter/application/export"
	"mp4-splitter/application/session"
	"mp4-splitter/cmd"
	"mp4-splitter/domain/split"
	"mp4-splitter/domain/video"
	"mp4-splitter/infrastructure/ffmpeg"
	"mp4-splitter/infrastructure/filesystem"

	"github.com/cucumber/godog"
)

// scriptedAnswer is one scripted reply to a prompt
type scriptedAnswer struct {
	kind  string // select, input or multiselect
	value string
}

// scriptedPrompter answers prompts from a script in order. Select answers of
// the form "#N" pick the N-th option; multiselect answers list 1-based option numbers.
type scriptedPrompter struct {
	script []scriptedAnswer
	next   int
}

func (p *scriptedPrompter) take(kind, message string) (string, error) {
	if p.next >= len(p.script) {
		return "", fmt.Errorf("script exhausted at %s prompt %q", kind, message)
	}
	a := p.script[p.next]
	if a.kind != kind {
		return "", fmt.Errorf("script expected a %s prompt, got %s prompt %q", a.kind, kind, message)
	}
	p.next++
	return a.value, nil
}

func (p *scriptedPrompter) Input(message string, defaultValue string) (string, error) {
	return p.take("input", message)
}

func (p *scriptedPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	v, err := p.take("confirm", message)
	if err != nil {
		return false, err
	}
	return strings.ToLower(v) == "y", nil
}

func (p *scriptedPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	v, err := p.take("select", message)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(v, "#") {
		n, err := strconv.Atoi(v[1:])
		if err != nil || n < 1 || n > len(options) {
			return "", fmt.Errorf("no option %s in %v", v, options)
		}
		return options[n-1], nil
	}
	return v, nil
}

func (p *scriptedPrompter) MultiSelect(message string, options []string, defaults []string) ([]string, error) {
	v, err := p.take("multiselect", message)
	if err != nil {
		return nil, err
	}
	var chosen []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > len(options) {
			return nil, fmt.Errorf("no option %s in %v", part, options)
		}
		chosen = append(chosen, options[n-1])
	}
	return chosen, nil
}

// markContext holds test state for interactive session scenarios
type markContext struct {
	tempDir    string
	sourcePath string
	outputDir  string
	ffmpeg     *fakeFFmpeg
	prober     *fakeProber
	sess       *session.Session
	output     *bytes.Buffer
	err        error
}

// SharedMarkContext is reset before each scenario via Before hook
var SharedMarkContext *markContext

func InitializeMarkScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "mark-test-*")
		if err != nil {
			return c, err
		}
		outputDir := filepath.Join(tempDir, "out")
		SharedMarkContext = &markContext{
			tempDir:   tempDir,
			outputDir: outputDir,
			ffmpeg:    &fakeFFmpeg{outputDir: outputDir},
			prober:    &fakeProber{info: video.Info{Width: 1280, Height: 720, FPS: 25, HasAudio: true}},
			output:    &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedMarkContext != nil {
			os.RemoveAll(SharedMarkContext.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a video "([^"]*)" lasting "([^"]*)" to mark$`, aVideoLastingToMark)
	ctx.Step(`^I mark the video answering:$`, iMarkTheVideoAnswering)
	ctx.Step(`^I resume the project "([^"]*)" answering:$`, iResumeTheProjectAnswering)
	ctx.Step(`^the session should end normally$`, theSessionShouldEndNormally)
	ctx.Step(`^the session should have split points:$`, theSessionShouldHaveSplitPoints)
	ctx.Step(`^the marked output directory should contain "([^"]*)"$`, theMarkedOutputDirectoryShouldContain)
	ctx.Step(`^the marked output directory should not contain "([^"]*)"$`, theMarkedOutputDirectoryShouldNotContain)
	ctx.Step(`^the session output should contain "([^"]*)"$`, theSessionOutputShouldContain)
}

func aVideoLastingToMark(name, duration string) error {
	s := SharedMarkContext
	ms, err := split.ParseTime(duration)
	if err != nil {
		return err
	}
	s.prober.info.DurationMs = ms
	s.sourcePath = filepath.Join(s.tempDir, name)
	return os.WriteFile(s.sourcePath, []byte("fake mp4"), 0644)
}

func (s *markContext) script(table *godog.Table) *scriptedPrompter {
	p := &scriptedPrompter{}
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		value := strings.ReplaceAll(row.Cells[1].Value, "{tmp}", s.tempDir)
		p.script = append(p.script, scriptedAnswer{kind: row.Cells[0].Value, value: value})
	}
	return p
}

func (s *markContext) run(opts cmd.MarkOptions, prompter cmd.Prompter) {
	backend := ffmpeg.NewBackend(
		ffmpeg.WithCommandRunner(s.ffmpeg),
		ffmpeg.WithProber(s.prober),
	)
	s.sess = session.New(export.NewDriver(backend, filesystem.NewChecker()))
	s.err = cmd.RunMarkWithDependencies(context.Background(), s.sess, prompter, opts, s.output)
}

func iMarkTheVideoAnswering(table *godog.Table) error {
	s := SharedMarkContext
	s.run(cmd.MarkOptions{Source: s.sourcePath, Output: s.outputDir}, s.script(table))
	return nil
}

func iResumeTheProjectAnswering(name string, table *godog.Table) error {
	s := SharedMarkContext
	s.output.Reset()
	s.run(cmd.MarkOptions{Project: filepath.Join(s.tempDir, name)}, s.script(table))
	return nil
}

func theSessionShouldEndNormally() error {
	s := SharedMarkContext
	if s.err != nil {
		return fmt.Errorf("expected session to end normally, got: %v\noutput:\n%s", s.err, s.output.String())
	}
	return nil
}

func theSessionShouldHaveSplitPoints(table *godog.Table) error {
	s := SharedMarkContext
	got := s.sess.Intervals()
	want := table.Rows[1:]
	if len(got) != len(want) {
		return fmt.Errorf("expected %d split points, got %d", len(want), len(got))
	}
	for i, row := range want {
		start, end, selected := row.Cells[0].Value, row.Cells[1].Value, row.Cells[2].Value
		if g := split.FormatTime(got[i].StartMs); g != start {
			return fmt.Errorf("point %d: expected start %s, got %s", i+1, start, g)
		}
		if g := split.FormatOptional(got[i].EndMs); g != end {
			return fmt.Errorf("point %d: expected end %s, got %s", i+1, end, g)
		}
		if g := strconv.FormatBool(got[i].Selected); g != selected {
			return fmt.Errorf("point %d: expected selected %s, got %s", i+1, selected, g)
		}
	}
	return nil
}

func theMarkedOutputDirectoryShouldContain(name string) error {
	s := SharedMarkContext
	if _, err := os.Stat(filepath.Join(s.outputDir, name)); err != nil {
		return fmt.Errorf("expected %s in output directory: %v", name, err)
	}
	return nil
}

func theMarkedOutputDirectoryShouldNotContain(name string) error {
	s := SharedMarkContext
	if _, err := os.Stat(filepath.Join(s.outputDir, name)); err == nil {
		return fmt.Errorf("did not expect %s in output directory", name)
	}
	return nil
}

func theSessionOutputShouldContain(text string) error {
	s := SharedMarkContext
	if !strings.Contains(s.output.String(), text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, s.output.String())
	}
	return nil
}
