package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/vk/flatcomp/internal/app"
	"github.com/vk/flatcomp/internal/hclconf"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	OutDir    string
	App       *app.App
}

// CompileOptions tunes a single harness invocation.
type CompileOptions struct {
	// Entry is the entry file path relative to the temporary project root.
	Entry string
	// ConfigFile names an .hcl file from the files map to load as config.
	ConfigFile string
	// Service, when non-nil, is served over a local HTTP listener and its
	// port is wired into the app as the compile service port.
	Service http.Handler
	// Port overrides the compile service port. Ignored when Service is set.
	Port int
	SourceMaps bool
}

// RunCompile provides a standardized harness for end-to-end compile tests.
// It materializes the given files under a temporary project root, runs one
// full compile pass from Entry, and captures logs, the returned error, and
// the output directory for inspection.
func RunCompile(t *testing.T, files map[string]string, opts CompileOptions) *HarnessResult {
	t.Helper()
	return RunCompileWithContext(context.Background(), t, files, opts)
}

// RunCompileWithContext is RunCompile with a caller-provided context.
func RunCompileWithContext(ctx context.Context, t *testing.T, files map[string]string, opts CompileOptions) *HarnessResult {
	t.Helper()

	// 1. Create a temporary root directory for the test project.
	tmpDir := t.TempDir()
	outDir := filepath.Join(tmpDir, "out")
	require.NoError(t, os.Mkdir(outDir, 0755))

	// 2. Write all project files, creating subdirectories as needed.
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	// 3. Start the fake compile service, if the test provides one, and
	//    point the app at its ephemeral port.
	port := opts.Port
	if opts.Service != nil {
		server := httptest.NewServer(opts.Service)
		t.Cleanup(server.Close)
		port = portOf(t, server)
	}

	configPath := ""
	if opts.ConfigFile != "" {
		configPath = filepath.Join(tmpDir, opts.ConfigFile)
	}

	appConfig := &app.Config{
		EntryPath:  filepath.Join(tmpDir, opts.Entry),
		ConfigPath: configPath,
		OutDir:     outDir,
		Port:       port,
		SourceMaps: opts.SourceMaps,
		LogLevel:   "debug",
		LogFormat:  "text",
	}

	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				if os.Getenv("FLATCOMP_TEST_LOGS") == "true" {
					t.Logf("--- HARNESS RECOVERED PANIC ---\n%q", fmt.Sprintf("%v", r))
				}
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, appConfig, hclconf.NewLoader())
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
			OutDir:    outDir,
		}
	}

	runErr := testApp.Run(ctx)

	if os.Getenv("FLATCOMP_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		OutDir:    outDir,
		App:       testApp,
	}
}

// ServiceFunc adapts a per-file response function into a compile service
// handler. The function receives the requested absolute path and the raw
// request body and returns the JSON document to serve.
func ServiceFunc(fn func(path string, body []byte) []byte) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		path := gjson.GetBytes(body, "path").String()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(fn(path, body))
	})
}

// ReadOutput reads one emitted file from the harness output directory.
func ReadOutput(t *testing.T, result *HarnessResult, relPath string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(result.OutDir, relPath))
	require.NoError(t, err, "expected output file %q to exist", relPath)
	return string(data)
}

// OutputFiles lists all files below the harness output directory, with
// paths relative to it and separators normalized to forward slashes.
func OutputFiles(t *testing.T, result *HarnessResult) []string {
	t.Helper()
	var out []string
	err := filepath.Walk(result.OutDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(result.OutDir, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	return out
}

// portOf extracts the ephemeral TCP port a test server listens on.
func portOf(t *testing.T, server *httptest.Server) int {
	t.Helper()
	_, portStr, err := net.SplitHostPort(server.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return port
}
