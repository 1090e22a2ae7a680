package app

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/rtree/internal/config"
	"github.com/kk-code-lab/rtree/internal/fs"
	"github.com/kk-code-lab/rtree/internal/logging"
	statepkg "github.com/kk-code-lab/rtree/internal/state"
	inputui "github.com/kk-code-lab/rtree/internal/ui/input"
	renderui "github.com/kk-code-lab/rtree/internal/ui/render"
	"go.uber.org/zap"
)

const startupTimeout = 2 * time.Second

// Options configures a new Application.
type Options struct {
	Config config.Config
	// Store persists the panel width; nil disables persistence.
	Store  statepkg.KVStore
	Logger *zap.Logger
	// Reveal is a path selected at startup, relative to the working directory.
	Reveal string
}

// Application represents the running app.
type Application struct {
	screen   tcell.Screen
	source   fs.Source
	disk     *fs.DiskSource
	watcher  *fs.Watcher
	state    *statepkg.PanelState
	reducer  *statepkg.PanelReducer
	renderer *renderui.Renderer
	input    *inputui.InputHandler
	host     *terminalHost
	actionCh chan statepkg.Action
	logger   *zap.Logger

	prompt     *activePrompt
	events     []statepkg.Event
	showHelp   bool
	shouldQuit bool

	editorCmd  []string
	openEditor func(path string) error
}

// NewApplication mounts paths as roots and takes over the terminal.
func NewApplication(paths []string, opts Options) (*Application, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.L()
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}

	disk := fs.NewDiskSource(fs.WithLogger(logger), fs.WithGitStatus(opts.Config.Panel.GitStatus))
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout*time.Duration(len(paths)))
	defer cancel()
	for _, p := range paths {
		if _, err := disk.AddRoot(ctx, p); err != nil {
			return nil, err
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	// Parse mouse sequences so modified clicks don't leak as key events.
	screen.EnableMouse()
	screen.EnableFocus()

	app := newApplication(screen, disk, opts)
	app.disk = disk

	if opts.Config.Watch.Enabled {
		watcher, err := fs.NewWatcher(opts.Config.Debounce(), logger)
		if err != nil {
			logger.Warn("file watching disabled", zap.Error(err))
		} else {
			app.watcher = watcher
			for _, root := range disk.Roots() {
				watcher.WatchRoot(root, disk.Dirs(root))
			}
		}
	}

	if opts.Reveal != "" {
		app.reveal(opts.Reveal)
	}
	return app, nil
}

// newApplication wires the panel to screen and src and applies the startup
// actions.
func newApplication(screen tcell.Screen, src fs.Source, opts Options) *Application {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = logging.L()
	}

	actionCh := make(chan statepkg.Action, 32)
	state := statepkg.NewPanelState(cfg.Panel.DefaultWidth)
	state.Focused = true
	state.SetDispatch(func(action statepkg.Action) {
		select {
		case actionCh <- action:
		default:
			go func() { actionCh <- action }()
		}
	})

	clipboardCmd, _ := detectClipboard()
	editorCmd, _ := detectEditorCommand()

	app := &Application{
		screen:    screen,
		source:    src,
		state:     state,
		actionCh:  actionCh,
		logger:    logger,
		editorCmd: editorCmd,
	}
	app.openEditor = app.openFileInEditor

	app.host = &terminalHost{app: app, clipboardCmd: clipboardCmd, goos: runtime.GOOS}
	reducerOpts := []statepkg.ReducerOption{
		statepkg.WithHost(app.host),
		statepkg.WithLogger(logger),
		statepkg.WithShowIgnored(cfg.Panel.ShowIgnored),
	}
	if opts.Store != nil {
		reducerOpts = append(reducerOpts, statepkg.WithStore(opts.Store))
	}
	app.reducer = statepkg.NewPanelReducer(src, reducerOpts...)
	app.renderer = renderui.NewRenderer(screen, src, cfg.Display())
	app.input = inputui.NewInputHandler(actionCh, app.renderer)

	src.SetChangeHandler(app.onSourceChange)

	if opts.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		panel, ok, err := statepkg.LoadPanel(ctx, opts.Store)
		cancel()
		switch {
		case err != nil:
			logger.Warn("load panel state failed", zap.Error(err))
		case ok:
			app.apply(statepkg.PanelLoadedAction{Width: panel.Width})
		}
	}
	app.apply(statepkg.SnapshotChangedAction{})
	app.apply(statepkg.SelectFirstAction{})
	app.syncView()
	return app
}

// onSourceChange runs on whichever goroutine replaced the snapshot.
func (app *Application) onSourceChange(root fs.RootID) {
	if _, ok := app.source.Snapshot(root); !ok {
		if app.watcher != nil {
			app.watcher.UnwatchRoot(root)
		}
		app.dispatch(statepkg.RootRemovedAction{Root: root})
		return
	}
	if app.watcher != nil && app.disk != nil {
		app.watcher.WatchRoot(root, app.disk.Dirs(root))
	}
	app.dispatch(statepkg.SnapshotChangedAction{Root: root})
}

func (app *Application) dispatch(action statepkg.Action) {
	select {
	case app.actionCh <- action:
	default:
		go func() { app.actionCh <- action }()
	}
}

// reveal selects path, which must lie inside one of the roots.
func (app *Application) reveal(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		app.logger.Warn("reveal failed", zap.String("path", path), zap.Error(err))
		return
	}
	if _, entry, ok := fs.Lookup(app.source, abs); ok {
		app.apply(statepkg.RevealEntryAction{ID: entry.ID})
		app.syncView()
		return
	}
	app.state.StatusMessage = fmt.Sprintf("%s is not in the tree", path)
}

// Close cleans up resources.
func (app *Application) Close() error {
	app.answerPrompt(-1)
	app.reducer.Tasks().Close()
	if app.watcher != nil {
		_ = app.watcher.Close()
	}
	app.screen.Fini()
	return nil
}
