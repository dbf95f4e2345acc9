package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"replcheck/pkg/log"
	"replcheck/pkg/model"
	"replcheck/pkg/system"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no config file is
// given on the command line.
const DefaultFile = "replcheck.yaml"

// Default returns the built-in suite: the /help scenario against ./esa.
func Default() *model.Suite {
	suite := Resolve(model.Suite{
		Defaults: model.Target{
			Command:   "./esa",
			Args:      []string{"--repl"},
			Dir:       ".",
			Timeout:   model.DefaultTimeout.String(),
			Transport: model.TransportPipe,
		},
		Checks: []model.Check{
			{
				Name:        "help",
				Description: "/help command",
				Input:       []string{"/help", "", "/exit", ""},
				Expect: model.Expectation{
					StderrContains: []string{"Available commands:"},
				},
			},
		},
	})
	return &suite
}

// Exists reports whether filename is present on system.AppFs.
func Exists(filename string) bool {
	ok, err := afero.Exists(system.AppFs, filename)
	return err == nil && ok
}

// LoadConfig reads a suite, merges its includes, resolves every check
// against the suite defaults and validates the result.
func LoadConfig(filename string, logger log.Logger) (*model.Suite, error) {
	suite, err := loadConfigFile(filename)
	if err != nil {
		return nil, err
	}

	if errs := validateIncludes(suite.Includes); len(errs) > 0 {
		return nil, errs
	}

	if len(suite.Includes) > 0 {
		suite, err = processIncludes(suite, filename, logger)
		if err != nil {
			return nil, err
		}
	}

	resolved := Resolve(suite)
	if errs := resolved.Validate(); len(errs) > 0 {
		return nil, errs
	}

	logger.Debug("Loaded check suite", "file", filename, "checks", len(resolved.Checks))
	return &resolved, nil
}

// Resolve returns a copy of the suite whose checks carry every target field.
func Resolve(suite model.Suite) model.Suite {
	resolved := model.Suite{Defaults: suite.Defaults}
	for _, c := range suite.Checks {
		resolved.Checks = append(resolved.Checks, c.Resolve(suite.Defaults))
	}
	return resolved
}

func processIncludes(suite model.Suite, baseFile string, logger log.Logger) (model.Suite, error) {
	stack := make(map[string]bool) // files on the current include path
	return processIncludesRecursive(suite, baseFile, stack, logger)
}

// processIncludesRecursive merges the includes of suite depth-first. A file
// may be included from several branches; only a file that includes itself
// through the current path is a cycle.
func processIncludesRecursive(suite model.Suite, baseFile string, stack map[string]bool, logger log.Logger) (model.Suite, error) {
	result := &model.Suite{}

	absBase, err := filepath.Abs(baseFile)
	if err != nil {
		return model.Suite{}, fmt.Errorf("failed to resolve absolute path for %s: %w", baseFile, err)
	}
	if stack[absBase] {
		return model.Suite{}, fmt.Errorf("circular include detected: %s", baseFile)
	}
	stack[absBase] = true
	defer delete(stack, absBase)

	for _, includePath := range suite.Includes {
		resolvedPath := resolvePath(baseFile, includePath)

		included, err := loadConfigFile(resolvedPath)
		if err != nil {
			return model.Suite{}, fmt.Errorf("failed to load include '%s': %w", includePath, err)
		}

		if len(included.Includes) > 0 {
			included, err = processIncludesRecursive(included, resolvedPath, stack, logger)
			if err != nil {
				return model.Suite{}, err
			}
		}

		result = mergeSuites(result, &included, logger)
	}

	// The including file has the highest priority.
	result = mergeSuites(result, &suite, logger)

	return *result, nil
}

func loadConfigFile(filename string) (model.Suite, error) {
	f, err := afero.ReadFile(system.AppFs, filename)
	if err != nil {
		return model.Suite{}, err
	}

	var suite model.Suite
	if err := yaml.Unmarshal(f, &suite); err != nil {
		return model.Suite{}, fmt.Errorf("parsing %s: %w", filename, err)
	}

	// Paths are relative to the file that declares them.
	suite.Defaults.Dir = resolveOptionalPath(filename, suite.Defaults.Dir)
	for i := range suite.Checks {
		suite.Checks[i].Dir = resolveOptionalPath(filename, suite.Checks[i].Dir)
		if g := suite.Checks[i].Golden; g != nil && g.Path != "" {
			g.Path = resolvePath(filename, g.Path)
		}
	}

	return suite, nil
}

func resolvePath(baseFile, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(baseFile), path)
}

func resolveOptionalPath(baseFile, path string) string {
	if path == "" {
		return ""
	}
	return resolvePath(baseFile, path)
}

// mergeSuites merges two suites. Defaults are overridden field by field,
// checks are last-wins by name and keep the position they were first
// declared at.
func mergeSuites(base, override *model.Suite, logger log.Logger) *model.Suite {
	return &model.Suite{
		Defaults: mergeTargets(base.Defaults, override.Defaults),
		Checks:   mergeChecks(base.Checks, override.Checks, logger),
	}
}

func mergeTargets(base, override model.Target) model.Target {
	result := base
	if override.Command != "" {
		result.Command = override.Command
		result.Args = override.Args
	} else if override.Args != nil {
		result.Args = override.Args
	}
	if override.Dir != "" {
		result.Dir = override.Dir
	}
	if len(override.Env) > 0 {
		result.Env = append(append([]string(nil), base.Env...), override.Env...)
	}
	if override.Timeout != "" {
		result.Timeout = override.Timeout
	}
	if override.Transport != "" {
		result.Transport = override.Transport
	}
	return result
}

func mergeChecks(base, override []model.Check, logger log.Logger) []model.Check {
	index := make(map[string]int)
	result := []model.Check{}

	for _, c := range base {
		index[c.Name] = len(result)
		result = append(result, c)
	}

	for _, c := range override {
		if i, exists := index[c.Name]; exists {
			logger.Warn("Check overridden", "check", c.Name)
			result[i] = c
			continue
		}
		index[c.Name] = len(result)
		result = append(result, c)
	}

	return result
}

func validateIncludes(includes []string) model.ValidationErrors {
	var errs model.ValidationErrors
	for i, include := range includes {
		if strings.TrimSpace(include) == "" {
			errs = append(errs, model.ValidationError{Field: fmt.Sprintf("includes[%d]", i), Message: "include path cannot be empty"})
		}
	}
	return errs
}
