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

type configContext struct {
	tempDir    string
	configPath string
	cfg        *config.Config
	output     *bytes.Buffer
	err        error
}

// SharedConfigContext is reset before each scenario via Before hook
var SharedConfigContext *configContext

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		SharedConfigContext = &configContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config.yaml"),
			output:     &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedConfigContext != nil {
			os.RemoveAll(SharedConfigContext.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a configuration file with:$`, aConfigurationFileWith)
	ctx.Step(`^no configuration file exists$`, noConfigurationFileExists)
	ctx.Step(`^I load the configuration$`, iLoadTheConfiguration)
	ctx.Step(`^I run config get "([^"]*)"$`, iRunConfigGet)
	ctx.Step(`^I run config set "([^"]*)" to "([^"]*)"$`, iRunConfigSet)
	ctx.Step(`^I run config list$`, iRunConfigList)
	ctx.Step(`^the config command should succeed$`, theConfigCommandShouldSucceed)
	ctx.Step(`^the config command should fail with "([^"]*)"$`, theConfigCommandShouldFailWith)
	ctx.Step(`^the config output should contain "([^"]*)"$`, theConfigOutputShouldContain)
	ctx.Step(`^the saved config should have "([^"]*)" set to "([^"]*)"$`, theSavedConfigShouldHave)
	ctx.Step(`^the loaded config should have "([^"]*)" set to "([^"]*)"$`, theLoadedConfigShouldHave)
}

func aConfigurationFileWith(doc *godog.DocString) error {
	s := SharedConfigContext
	if err := os.WriteFile(s.configPath, []byte(doc.Content), 0644); err != nil {
		return err
	}
	return iLoadTheConfiguration()
}

func noConfigurationFileExists() error {
	return nil
}

func iLoadTheConfiguration() error {
	s := SharedConfigContext
	s.cfg, s.err = config.LoadOrDefault(s.configPath)
	return nil
}

func iRunConfigGet(key string) error {
	s := SharedConfigContext
	if s.cfg == nil {
		return fmt.Errorf("configuration not loaded: %v", s.err)
	}
	s.err = cmd.RunConfigGetWithDependencies(s.cfg, s.configPath, key, s.output)
	return nil
}

func iRunConfigSet(key, value string) error {
	s := SharedConfigContext
	if s.cfg == nil {
		return fmt.Errorf("configuration not loaded: %v", s.err)
	}
	s.err = cmd.RunConfigSetWithDependencies(s.cfg, s.configPath, key, value, s.output)
	return nil
}

func iRunConfigList() error {
	s := SharedConfigContext
	if s.cfg == nil {
		return fmt.Errorf("configuration not loaded: %v", s.err)
	}
	s.err = cmd.RunConfigListWithDependencies(s.cfg, s.configPath, s.output)
	return nil
}

func theConfigCommandShouldSucceed() error {
	s := SharedConfigContext
	if s.err != nil {
		return fmt.Errorf("expected success, got: %v", s.err)
	}
	return nil
}

func theConfigCommandShouldFailWith(message string) error {
	s := SharedConfigContext
	if s.err == nil {
		return fmt.Errorf("expected failure containing %q", message)
	}
	if !strings.Contains(s.err.Error(), message) {
		return fmt.Errorf("expected error containing %q, got %q", message, s.err.Error())
	}
	return nil
}

func theConfigOutputShouldContain(text string) error {
	s := SharedConfigContext
	if !strings.Contains(s.output.String(), text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, s.output.String())
	}
	return nil
}

func theSavedConfigShouldHave(key, expected string) error {
	s := SharedConfigContext
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to load saved config: %w", err)
	}
	value, err := config.NewConfigManager(cfg, s.configPath).Get(key)
	if err != nil {
		return err
	}
	if value != expected {
		return fmt.Errorf("expected %s = %q, got %q", key, expected, value)
	}
	return nil
}

func theLoadedConfigShouldHave(key, expected string) error {
	s := SharedConfigContext
	if s.cfg == nil {
		return fmt.Errorf("configuration not loaded: %v", s.err)
	}
	value, err := config.NewConfigManager(s.cfg, s.configPath).Get(key)
	if err != nil {
		return err
	}
	if value != expected {
		return fmt.Errorf("expected %s = %q, got %q", key, expected, value)
	}
	return nil
}
