//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mp4-splitter/application/export"
	"mp4-splitter/application/session"
	"mp4-splitter/cmd"
	"mp4-splitter/domain/distribution"
	"mp4-splitter/domain/split"
	"mp4-splitter/domain/video"
	"mp4-splitter/infrastructure/ffmpeg"
	"mp4-splitter/infrastructure/filesystem"
	"mp4-splitter/infrastructure/logging"
	"mp4-splitter/infrastructure/sqlite"

	"github.com/cucumber/godog"
)

// fakeFFmpeg stands in for the ffmpeg binary: it records every invocation and
// creates the files it would have written
type fakeFFmpeg struct {
	outputDir string
	calls     [][]string
	encodes   int
	failOn    int // 1-based encode number that fails, 0 for none
}

func (f *fakeFFmpeg) Run(ctx context.Context, name string, args ...string) error {
	f.calls = append(f.calls, args)

	isEncode := false
	for _, a := range args {
		if a == "libx264" {
			isEncode = true
		}
	}
	if isEncode {
		f.encodes++
		if f.failOn > 0 && f.encodes == f.failOn {
			return fmt.Errorf("exit status 1: Conversion failed!")
		}
	}

	for _, a := range args {
		if strings.HasPrefix(a, f.outputDir+string(filepath.Separator)) {
			if err := os.WriteFile(a, []byte("data"), 0644); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *fakeFFmpeg) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return []byte("ffmpeg version 7.0"), nil
}

// fakeProber reports fixed metadata
type fakeProber struct {
	info video.Info
}

func (p *fakeProber) Probe(ctx context.Context, path string) (video.Info, error) {
	info := p.info
	info.Filename = filepath.Base(path)
	return info, nil
}

// uploadRecorder records the paths handed to the uploader
type uploadRecorder struct {
	paths []string
}

func (u *uploadRecorder) UploadSegments(ctx context.Context, paths []string) ([]distribution.UploadResult, error) {
	u.paths = append(u.paths, paths...)
	results := make([]distribution.UploadResult, len(paths))
	for i, p := range paths {
		results[i] = distribution.UploadResult{FileID: fmt.Sprintf("file-%d", i+1), FileName: filepath.Base(p)}
	}
	return results, nil
}

// splitContext holds test state for split scenarios
type splitContext struct {
	tempDir    string
	sourcePath string
	outputDir  string
	ffmpeg     *fakeFFmpeg
	prober     *fakeProber
	db         *sqlite.DB
	uploader   *uploadRecorder
	opts       cmd.SplitOptions
	output     *bytes.Buffer
	err        error
}

// SharedSplitContext is reset before each scenario via Before hook
var SharedSplitContext *splitContext

func InitializeSplitScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "split-test-*")
		if err != nil {
			return c, err
		}
		outputDir := filepath.Join(tempDir, "out")
		SharedSplitContext = &splitContext{
			tempDir:   tempDir,
			outputDir: outputDir,
			ffmpeg:    &fakeFFmpeg{outputDir: outputDir},
			prober:    &fakeProber{info: video.Info{Width: 1920, Height: 1080, FPS: 30, HasAudio: true}},
			output:    &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		s := SharedSplitContext
		if s != nil {
			if s.db != nil {
				s.db.Close()
			}
			os.RemoveAll(s.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a source video "([^"]*)" lasting "([^"]*)"$`, aSourceVideoLasting)
	ctx.Step(`^the source video has no audio$`, theSourceVideoHasNoAudio)
	ctx.Step(`^export history is enabled$`, exportHistoryIsEnabled)
	ctx.Step(`^ffmpeg fails on segment (\d+)$`, ffmpegFailsOnSegment)
	ctx.Step(`^I split at "([^"]*)"$`, iSplitAt)
	ctx.Step(`^I split at "([^"]*)" with a tail$`, iSplitAtWithATail)
	ctx.Step(`^I split at "([^"]*)" with a tail skipping segment (\d+)$`, iSplitAtWithATailSkipping)
	ctx.Step(`^I split at "([^"]*)" with a tail and upload$`, iSplitAtWithATailAndUpload)
	ctx.Step(`^I split at "([^"]*)" saving the project to "([^"]*)"$`, iSplitAtSavingTheProject)
	ctx.Step(`^I split using the project "([^"]*)"$`, iSplitUsingTheProject)
	ctx.Step(`^I split without an output directory at "([^"]*)"$`, iSplitWithoutAnOutputDirectory)
	ctx.Step(`^the split should succeed$`, theSplitShouldSucceed)
	ctx.Step(`^the split should fail with a (parse|configuration|export) error$`, theSplitShouldFailWith)
	ctx.Step(`^the output directory should contain:$`, theOutputDirectoryShouldContain)
	ctx.Step(`^the output directory should not contain "([^"]*)"$`, theOutputDirectoryShouldNotContain)
	ctx.Step(`^no temporary audio files should remain$`, noTemporaryAudioFilesShouldRemain)
	ctx.Step(`^ffmpeg should have encoded (\d+) segments?$`, ffmpegShouldHaveEncoded)
	ctx.Step(`^ffmpeg should have been called with "([^"]*)"$`, ffmpegShouldHaveBeenCalledWith)
	ctx.Step(`^the split output should contain "([^"]*)"$`, theSplitOutputShouldContain)
	ctx.Step(`^(\d+) files? should have been uploaded$`, filesShouldHaveBeenUploaded)
	ctx.Step(`^the history should list a "([^"]*)" run with (\d+) segments?$`, theHistoryShouldListARun)
	ctx.Step(`^the project file "([^"]*)" should exist$`, theProjectFileShouldExist)
}

func aSourceVideoLasting(name, duration string) error {
	s := SharedSplitContext
	ms, err := split.ParseTime(duration)
	if err != nil {
		return err
	}
	s.prober.info.DurationMs = ms
	s.sourcePath = filepath.Join(s.tempDir, name)
	return os.WriteFile(s.sourcePath, []byte("fake mp4"), 0644)
}

func theSourceVideoHasNoAudio() error {
	SharedSplitContext.prober.info.HasAudio = false
	return nil
}

func exportHistoryIsEnabled() error {
	s := SharedSplitContext
	db, err := sqlite.New(filepath.Join(s.tempDir, "history.db"), logging.Discard())
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func ffmpegFailsOnSegment(n int) error {
	SharedSplitContext.ffmpeg.failOn = n
	return nil
}

func (s *splitContext) run() {
	backend := ffmpeg.NewBackend(
		ffmpeg.WithCommandRunner(s.ffmpeg),
		ffmpeg.WithProber(s.prober),
	)
	driver := export.NewDriver(backend, filesystem.NewChecker())

	var opts []session.Option
	if s.db != nil {
		opts = append(opts, session.WithHistory(s.db), session.WithClock(time.Now))
	}
	sess := session.New(driver, opts...)

	var uploader cmd.SegmentUploader
	if s.uploader != nil {
		uploader = s.uploader
	}

	if s.opts.Source == "" && s.opts.Project == "" {
		s.opts.Source = s.sourcePath
	}
	s.err = cmd.RunSplitWithDependencies(context.Background(), sess, uploader, nil, s.opts, s.output)
}

func splitPoints(list string) []string {
	var out []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func iSplitAt(points string) error {
	s := SharedSplitContext
	s.opts = cmd.SplitOptions{Output: s.outputDir, At: splitPoints(points)}
	s.run()
	return nil
}

func iSplitAtWithATail(points string) error {
	s := SharedSplitContext
	s.opts = cmd.SplitOptions{Output: s.outputDir, At: splitPoints(points), Tail: true}
	s.run()
	return nil
}

func iSplitAtWithATailSkipping(points string, skip int) error {
	s := SharedSplitContext
	s.opts = cmd.SplitOptions{Output: s.outputDir, At: splitPoints(points), Tail: true, Skip: []int{skip}}
	s.run()
	return nil
}

func iSplitAtWithATailAndUpload(points string) error {
	s := SharedSplitContext
	s.uploader = &uploadRecorder{}
	s.opts = cmd.SplitOptions{Output: s.outputDir, At: splitPoints(points), Tail: true}
	s.run()
	return nil
}

func iSplitAtSavingTheProject(points, name string) error {
	s := SharedSplitContext
	s.opts = cmd.SplitOptions{Output: s.outputDir, At: splitPoints(points), Project: filepath.Join(s.tempDir, name)}
	s.run()
	return nil
}

func iSplitUsingTheProject(name string) error {
	s := SharedSplitContext
	// a fresh output directory proves the project's directory is used
	s.ffmpeg = &fakeFFmpeg{outputDir: s.outputDir}
	if err := os.RemoveAll(s.outputDir); err != nil {
		return err
	}
	s.output.Reset()
	s.opts = cmd.SplitOptions{Project: filepath.Join(s.tempDir, name)}
	s.run()
	return nil
}

func iSplitWithoutAnOutputDirectory(points string) error {
	s := SharedSplitContext
	s.opts = cmd.SplitOptions{At: splitPoints(points)}
	s.run()
	return nil
}

func theSplitShouldSucceed() error {
	s := SharedSplitContext
	if s.err != nil {
		return fmt.Errorf("expected success, got: %v\noutput:\n%s", s.err, s.output.String())
	}
	return nil
}

func theSplitShouldFailWith(kind string) error {
	s := SharedSplitContext
	if s.err == nil {
		return fmt.Errorf("expected a %s error, got success", kind)
	}
	var ok bool
	switch kind {
	case "parse":
		ok = split.IsParseError(s.err)
	case "configuration":
		ok = split.IsConfigurationError(s.err)
	case "export":
		ok = split.IsExportError(s.err)
	}
	if !ok {
		return fmt.Errorf("expected a %s error, got: %v", kind, s.err)
	}
	return nil
}

func theOutputDirectoryShouldContain(table *godog.Table) error {
	s := SharedSplitContext
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		name := row.Cells[0].Value
		if _, err := os.Stat(filepath.Join(s.outputDir, name)); err != nil {
			return fmt.Errorf("expected %s in output directory: %v", name, err)
		}
	}
	return nil
}

func theOutputDirectoryShouldNotContain(name string) error {
	s := SharedSplitContext
	if _, err := os.Stat(filepath.Join(s.outputDir, name)); err == nil {
		return fmt.Errorf("did not expect %s in output directory", name)
	}
	return nil
}

func noTemporaryAudioFilesShouldRemain() error {
	s := SharedSplitContext
	matches, err := filepath.Glob(filepath.Join(s.outputDir, "*.temp_audio.m4a"))
	if err != nil {
		return err
	}
	if len(matches) > 0 {
		return fmt.Errorf("temporary audio files remain: %v", matches)
	}
	return nil
}

func ffmpegShouldHaveEncoded(n int) error {
	s := SharedSplitContext
	if s.ffmpeg.encodes != n {
		return fmt.Errorf("expected %d encodes, got %d", n, s.ffmpeg.encodes)
	}
	return nil
}

func ffmpegShouldHaveBeenCalledWith(arg string) error {
	s := SharedSplitContext
	for _, call := range s.ffmpeg.calls {
		for _, a := range call {
			if a == arg {
				return nil
			}
		}
	}
	return fmt.Errorf("no ffmpeg call contained %q: %v", arg, s.ffmpeg.calls)
}

func theSplitOutputShouldContain(text string) error {
	s := SharedSplitContext
	if !strings.Contains(s.output.String(), text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, s.output.String())
	}
	return nil
}

func filesShouldHaveBeenUploaded(n int) error {
	s := SharedSplitContext
	if s.uploader == nil || len(s.uploader.paths) != n {
		got := 0
		if s.uploader != nil {
			got = len(s.uploader.paths)
		}
		return fmt.Errorf("expected %d uploads, got %d", n, got)
	}
	return nil
}

func theHistoryShouldListARun(status string, segments int) error {
	s := SharedSplitContext
	if s.db == nil {
		return fmt.Errorf("history is not enabled in this scenario")
	}

	var out bytes.Buffer
	if err := cmd.RunHistoryWithDependencies(context.Background(), s.db, 10, &out); err != nil {
		return err
	}
	if !strings.Contains(out.String(), status) {
		return fmt.Errorf("expected history to contain %q, got:\n%s", status, out.String())
	}

	runs, err := s.db.ListRuns(context.Background(), 10)
	if err != nil {
		return err
	}
	if len(runs) != 1 {
		return fmt.Errorf("expected 1 run, got %d", len(runs))
	}
	if len(runs[0].Segments) != segments {
		return fmt.Errorf("expected %d segments, got %d", segments, len(runs[0].Segments))
	}
	return nil
}

func theProjectFileShouldExist(name string) error {
	s := SharedSplitContext
	if _, err := os.Stat(filepath.Join(s.tempDir, name)); err != nil {
		return fmt.Errorf("project file %s does not exist: %v", name, err)
	}
	return nil
}
