package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"syscall"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/vk/flatcomp/internal/ast"
	"github.com/vk/flatcomp/internal/ctxlog"
)

// Remote delegates compilation to the compile service listening on
// localhost. The request is the configured options bundle with the file
// path added; the response is either an AST document or an error object.
// No timeout is imposed: a slow service stalls the run rather than
// corrupting it, and a connection failure surfaces as a top-level error.
type Remote struct {
	client  *http.Client
	url     string
	port    int
	options json.RawMessage
}

// NewRemote creates a backend talking to the service on the given port.
// options may be nil.
func NewRemote(port int, options json.RawMessage) *Remote {
	return &Remote{
		client:  &http.Client{},
		url:     fmt.Sprintf("http://localhost:%d/", port),
		port:    port,
		options: options,
	}
}

// Compile sends the compile request and decodes the response. An error
// reported by the service aborts the whole run: it means the compiled
// source itself is invalid, not just one file.
func (r *Remote) Compile(ctx context.Context, absPath string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Requesting compilation from service.", "path", absPath, "port", r.port)

	body := r.options
	if len(body) == 0 {
		body = json.RawMessage(`{}`)
	}
	body, err := sjson.SetBytes(body, "path", absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build compile request for %s: %w", absPath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create compile request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return nil, fmt.Errorf(
				"cannot reach the compile service at %s (is the compiler daemon running on port %d?): %w",
				r.url, r.port, err)
		}
		return nil, fmt.Errorf("compile request for %s failed: %w", absPath, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read compile response for %s: %w", absPath, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("compile service returned status %s for %s", resp.Status, absPath)
	}
	if svcErr := gjson.GetBytes(payload, "error"); svcErr.Exists() {
		return nil, fmt.Errorf("compile service reported an error for %s: %s", absPath, svcErr.String())
	}

	doc := ast.Document(payload)
	logger.Debug("Received AST from service.", "path", absPath, "imports", len(doc.Imports()))
	return &Result{Doc: doc, Logs: doc.Logs()}, nil
}
