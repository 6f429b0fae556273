package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"

	"github.com/avoskres/salondesk/internal/client/api"
	"github.com/avoskres/salondesk/internal/client/config"
	"github.com/avoskres/salondesk/internal/client/models"
	"github.com/avoskres/salondesk/internal/client/services"
	"github.com/avoskres/salondesk/internal/client/session"
	"github.com/avoskres/salondesk/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the SalonDesk terminal client together: config, local database,
// auth session, API client and the services the REPL commands call.
type App struct {
	config      *config.Config
	session     *session.AuthSession
	authService services.AuthService
	crmService  services.CRMService

	db     *sql.DB
	user   *models.User
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	db, err := session.InitDatabase(ctx, cfg.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	siteURL, err := url.Parse(cfg.ServerBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server base url: %w", err)
	}
	cookies, err := session.NewJarCookies(siteURL, cfg.BasePath)
	if err != nil {
		return nil, err
	}

	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	app := &App{
		config: cfg,
		db:     db,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	store := session.NewTokenStore(session.NewSQLiteKV(db), cookies)
	sess := session.NewAuthSession(store, app, cfg.BasePath, logger)

	apiClient, err := api.New(api.Config{
		BaseURL:     cfg.ServerBaseURL,
		MockMode:    cfg.MockMode,
		Timeout:     cfg.RequestTimeout,
		UploadField: cfg.UploadField,
	}, sess, cookies.Jar(), logger)
	if err != nil {
		return nil, err
	}

	app.session = sess
	app.authService = services.NewAuthService(apiClient, sess, logger)
	app.crmService = services.NewCRMService(apiClient)

	// Restore a previous session if a user blob survived the restart.
	if u, err := app.authService.CurrentUser(ctx); err == nil {
		app.user = u
	}

	return app, nil
}

// NavigateTo implements session.Navigator. In a terminal there is no page to
// load; landing on the login path means dropping to the logged-out prompt.
func (a *App) NavigateTo(path string) {
	a.user = nil
	fmt.Fprintf(a.out, "Session ended. Please log in again.\n")
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close releases the local database.
func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

func (a *App) getStatus() string {
	s := ""
	if a.user != nil {
		s = a.user.Email
	}
	if a.config.MockMode {
		if s != "" {
			s += " "
		}
		s += "demo"
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}
