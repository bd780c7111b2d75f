package test

import (
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"gopkg.in/godo.v2/glob"
	yaml "gopkg.in/yaml.v2"
	"pokertable.io/server/logging"
)

var testDriverLogger = logging.GetZeroLogger("test::testdriver", nil)

type ScriptTestResult struct {
	Filename string
	Passed   bool
	Failures []error
	Disabled bool
}

func (s *ScriptTestResult) addError(e error) {
	s.Failures = append(s.Failures, e)
}

type TestDriver struct {
	ScriptResult map[string]*ScriptTestResult
	ScriptFiles  []string
}

func NewTestDriver() *TestDriver {
	return &TestDriver{
		ScriptResult: make(map[string]*ScriptTestResult),
		ScriptFiles:  make([]string, 0),
	}
}

func ReadTableScript(filename string) (*TableScript, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to load file: %s", filename)
	}
	var script TableScript
	if err := yaml.UnmarshalStrict(data, &script); err != nil {
		return nil, errors.Wrapf(err, "Loading yaml failed: %s", filename)
	}
	return &script, nil
}

func (t *TestDriver) RunTableScript(filename string) error {
	testDriverLogger.Info().Msgf("Running table script: %s", filename)
	result := &ScriptTestResult{Filename: filename, Failures: make([]error, 0)}
	t.ScriptResult[filename] = result
	t.ScriptFiles = append(t.ScriptFiles, filename)

	script, err := ReadTableScript(filename)
	if err != nil {
		result.addError(err)
		return err
	}
	if script.Disabled {
		result.Disabled = true
		return nil
	}

	run, err := newScriptRun(script)
	if err != nil {
		result.addError(err)
		return err
	}
	if err := run.run(); err != nil {
		err = errors.Wrapf(err, "Script %s failed", filename)
		result.addError(err)
		return err
	}
	result.Passed = true
	return nil
}

// ReportResult prints a summary of every script run so far and returns true
// when none of them failed.
func (t *TestDriver) ReportResult() bool {
	passed := true
	data := pterm.TableData{{"Script", "Result"}}
	for _, scriptFile := range t.ScriptFiles {
		result := t.ScriptResult[scriptFile]
		switch {
		case result.Disabled:
			data = append(data, []string{scriptFile, "disabled"})
		case len(result.Failures) != 0:
			passed = false
			data = append(data, []string{scriptFile, "FAILED"})
		default:
			data = append(data, []string{scriptFile, "passed"})
		}
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		testDriverLogger.Error().Msgf("Unable to render script results: %v", err)
	}

	for _, scriptFile := range t.ScriptFiles {
		for _, e := range t.ScriptResult[scriptFile].Failures {
			pterm.Error.Printfln("%s", e.Error())
		}
	}
	return passed
}

func RunTableScriptTests(fileOrDir string, testName string) error {
	info, err := os.Stat(fileOrDir)
	if err != nil {
		return errors.Wrapf(err, "Unable to read %s", fileOrDir)
	}
	scriptFiles := []string{fileOrDir}
	if info.IsDir() {
		scriptFiles, err = scriptFilesInDir(fileOrDir)
		if err != nil {
			return err
		}
	}

	testDriver := NewTestDriver()
	for _, file := range scriptFiles {
		if testName != "" && !strings.Contains(file, testName) {
			continue
		}
		testDriver.RunTableScript(file)
	}

	if !testDriver.ReportResult() {
		return fmt.Errorf("One or more table scripts failed")
	}
	pterm.Success.Printfln("%d table script(s) passed", len(testDriver.ScriptFiles))
	return nil
}

func scriptFilesInDir(dirName string) ([]string, error) {
	pattern := fmt.Sprintf("%s/**/*.yaml", dirName)
	globFiles, _, err := glob.Glob([]string{pattern})
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to get table script files from dir: %s", dirName)
	}
	var files []string
	for _, file := range globFiles {
		if file.IsDir() {
			continue
		}
		files = append(files, file.Path)
	}
	return files, nil
}
