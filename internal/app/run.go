package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vk/flatcomp/internal/compiler"
	"github.com/vk/flatcomp/internal/ctxlog"
	"github.com/vk/flatcomp/internal/diag"
	"github.com/vk/flatcomp/internal/sink"
	"github.com/vk/flatcomp/internal/watch"
)

// Run executes the main application logic: one compile pass, or a loop of
// passes in watch mode. The returned error is nil exactly when the caller
// may exit with a success status.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	session, err := a.compileOnce(ctx)
	if err != nil && !a.appConfig.Watch {
		return err
	}

	if a.appConfig.Watch {
		return a.watchLoop(ctx, session)
	}

	if session.Logs().Failed() {
		return fmt.Errorf("compilation finished with %d error(s)",
			len(session.Logs().Entries(diag.SeverityError)))
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// compileOnce runs a single traversal with a fresh session and reports its
// diagnostics. The session is returned even on fatal errors so watch mode
// can keep watching whatever was visited before the abort.
func (a *App) compileOnce(ctx context.Context) (*compiler.Session, error) {
	a.logger.Info("🚀 Starting compilation.", "entry", a.appConfig.EntryPath, "out_dir", a.model.OutDir)

	session := compiler.NewSession(a.model, a.registry, sink.New(a.model.OutDir, a.model.SourceMaps))
	if err := session.Run(ctx, a.appConfig.EntryPath); err != nil {
		return session, fmt.Errorf("compilation aborted: %w", err)
	}

	session.Logs().Report(a.logger)
	a.logger.Info("🏁 Compilation finished.", "files", session.Graph().Len())
	return session, nil
}

// watchLoop recompiles from scratch whenever a previously visited file
// changes. Each pass gets a brand-new session, so allocation and traversal
// state never leak between passes.
func (a *App) watchLoop(ctx context.Context, last *compiler.Session) error {
	watcher, err := watch.New()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	for {
		if err := watcher.SetDirs(dirsOf(last.Visited())); err != nil {
			return err
		}
		a.logger.Info("👀 Watching for changes.", "dirs", len(dirsOf(last.Visited())))

		if err := watcher.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		session, err := a.compileOnce(ctx)
		if err != nil {
			// Fatal errors don't end watch mode; the next change may fix them.
			a.logger.Error("Compilation pass failed.", "error", err)
		}
		last = session
	}
}

// dirsOf collapses file paths to their unique parent directories.
func dirsOf(paths []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, p := range paths {
		dir := filepath.Dir(filepath.FromSlash(p))
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
