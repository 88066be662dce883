package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/vmsclient/internal/client/client"
	"github.com/dmitrijs2005/vmsclient/internal/client/config"
	"github.com/dmitrijs2005/vmsclient/internal/client/credentials"
	"github.com/dmitrijs2005/vmsclient/internal/client/models"
	"github.com/dmitrijs2005/vmsclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/vmsclient/internal/client/router"
	"github.com/dmitrijs2005/vmsclient/internal/client/services"
	"github.com/dmitrijs2005/vmsclient/internal/client/session"
	"github.com/dmitrijs2005/vmsclient/internal/client/transport"
	"github.com/dmitrijs2005/vmsclient/internal/filex"
	"github.com/dmitrijs2005/vmsclient/internal/logging"
)

// Session is the part of the session the CLI drives.
type Session interface {
	Snapshot() session.Snapshot
	Login(ctx context.Context, req models.LoginRequest) (*models.UserProfile, error)
	Register(ctx context.Context, req models.RegisterRequest) (string, error)
	Logout(ctx context.Context)
}

// Navigator is the part of the router the CLI drives.
type Navigator interface {
	Navigate(ctx context.Context, target string) (string, error)
	CurrentURL() string
}

type App struct {
	session Session
	nav     Navigator
	events  services.EventService
	reader  *bufio.Reader
	out     io.Writer
	log     logging.Logger
	closeFn func() error

	mu      sync.Mutex
	pending string // target of the navigation a command is running
}

// NewApp wires the credential store, session, router, auth transport and
// API client described by cfg, and restores the previous session.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	repo, closeFn, err := openRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := credentials.NewStore(repo, log)
	rtr := router.New(log)

	// The transport and the session depend on each other through the API
	// client; the closures are only called once requests are made.
	var sess *session.Session
	tr := transport.New(nil,
		transport.TokenFunc(func() string { return sess.Token() }),
		transport.ExpireFunc(func(ctx context.Context, returnURL string) bool { return sess.Expire(ctx, returnURL) }),
		rtr, log)

	api, err := client.NewHTTPClient(cfg.ServerURL, tr, cfg.RequestTimeout)
	if err != nil {
		_ = closeFn()
		return nil, err
	}

	sess = session.New(store, api, rtr, session.WithLogger(log))
	rtr.Handle(router.DefaultRoutes(sess, api, log)...)
	sess.Restore(ctx)

	app := &App{
		session: sess,
		nav:     rtr,
		events:  services.NewEventService(api, log),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		log:     log,
		closeFn: closeFn,
	}
	rtr.OnNavigate(app.onNavigate)
	return app, nil
}

func openRepository(ctx context.Context, cfg *config.Config) (metadata.Repository, func() error, error) {
	if cfg.Storage == config.StorageMemory {
		return metadata.NewMemoryRepository(), func() error { return nil }, nil
	}

	path, err := filex.EnsureParentDir(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("prepare database directory: %w", err)
	}
	db, err := client.InitDatabase(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing database: %w", err)
	}
	return metadata.NewSQLiteRepository(db), db.Close, nil
}

// Run starts the REPL on stdin and blocks until the user exits or ctx is
// cancelled.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.closeFn(); err != nil {
			a.log.Warn(ctx, "closing database", "error", err)
		}
	}()

	fmt.Fprintln(a.out, titleStyle.Render("Volunteer Management CLI")+" (type 'help' for commands)")
	if _, err := a.nav.Navigate(ctx, "/"); err != nil {
		a.log.Warn(ctx, "initial navigation failed", "error", err)
	}

	runREPL(ctx, a, a.prompt, a.reader)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().IsLoggedIn()
}
