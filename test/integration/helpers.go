//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	ShopName    string
	APIVersion  string
	ShopifyPath string
	Verbose     bool
	// AllowWrites enables the tests that create and delete resources.
	AllowWrites bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		ShopName:    os.Getenv("SHOPIFY_NAME"),
		APIVersion:  os.Getenv("SHOPIFY_VERSION"),
		ShopifyPath: getShopifyPath(),
		Verbose:     os.Getenv("SHOPIFY_IT_VERBOSE") == "true",
		AllowWrites: os.Getenv("SHOPIFY_IT_WRITES") == "true",
	}
}

// getShopifyPath determines the path to the shopify binary
func getShopifyPath() string {
	if path := os.Getenv("SHOPIFY_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../shopify",
		"./shopify",
		"../shopify",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "shopify"
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.ShopName == "" || config.APIVersion == "" {
		t.Skip("SHOPIFY_NAME or SHOPIFY_VERSION not set, skipping integration test")
	}

	if os.Getenv("SHOPIFY_PASS") == "" && os.Getenv("SHOPIFY_TOKEN") == "" {
		t.Skip("SHOPIFY_PASS or SHOPIFY_TOKEN not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.ShopifyPath); err != nil {
		t.Skipf("shopify binary not found at %s, skipping integration test", config.ShopifyPath)
	}
}

// CommandRunner provides utilities for running shopify commands
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a shopify command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a shopify command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.CommandContext(runner.t.Context(), runner.config.ShopifyPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.ShopifyPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunJSON executes a shopify command with JSON output and decodes it into out.
func (runner *CommandRunner) RunJSON(out interface{}, args ...string) error {
	stdout, stderr, err := runner.Run(append(args, "--output", "json")...)
	if err != nil {
		return fmt.Errorf("%w: %s", err, stderr)
	}

	decoder := json.NewDecoder(strings.NewReader(stdout))
	decoder.UseNumber()

	return decoder.Decode(out)
}

// GenerateTestName creates a unique test resource name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().Unix())
}

// CleanupResource attempts to delete a test resource
func (runner *CommandRunner) CleanupResource(resource, id string) {
	stdout, stderr, err := runner.Run("delete", resource, id)
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for %s %s: %s\nStderr: %s", resource, id, stdout, stderr)
	}
}

// AssertJSONOutput validates that output is valid JSON
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	var result interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &result), "Output should be valid JSON")
}
