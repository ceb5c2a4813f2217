package sqlguard

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/microsoft/go-mssqldb" // sqlserver driver registration

	"github.com/matehq/mate/internal/security"
)

// AuthMode selects how a connection authenticates.
type AuthMode string

// Credential modes. AuthIntegrated uses the operating user's ambient
// identity; AuthSQL uses an explicit username and password.
const (
	AuthIntegrated AuthMode = "windows"
	AuthSQL        AuthMode = "sql"
)

const (
	defaultQueryTimeout   = 30 * time.Second
	defaultConnectTimeout = 10 * time.Second
)

// ConnectOptions describes the target of a connect call.
type ConnectOptions struct {
	Server   string
	Database string
	Auth     AuthMode
	Username string
	Password string
}

// Conn is a live session against an external database. All statements on
// one connection id are serialized through execMu so a query in flight
// completes before the next begins on the same session.
type Conn struct {
	ID       string
	Server   string
	Database string
	Auth     AuthMode
	// ReadOnlyEnforced is always true for connections minted here; it is
	// recorded on the handle so the control surface can display it.
	ReadOnlyEnforced bool
	OpenedAt         time.Time

	db     *sql.DB
	execMu sync.Mutex
}

// ConnInfo is a serializable snapshot of a connection handle.
type ConnInfo struct {
	ID               string    `json:"id"`
	Server           string    `json:"server"`
	Database         string    `json:"database"`
	Auth             AuthMode  `json:"auth"`
	ReadOnlyEnforced bool      `json:"read_only_enforced"`
	OpenedAt         time.Time `json:"opened_at"`
}

// OpenFunc opens a database handle for a DSN. Tests substitute a fake.
type OpenFunc func(dsn string) (*sql.DB, error)

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// QueryTimeout bounds each statement's wait. Defaults to 30s.
	QueryTimeout time.Duration
	// ConnectTimeout bounds the connect-and-ping handshake. Defaults to 10s.
	ConnectTimeout time.Duration
	// Open overrides the sqlserver driver for tests.
	Open OpenFunc
	// Redactor receives connect passwords as literals so they never
	// surface in logs or audit output.
	Redactor *security.Redactor
	Audit    *security.AuditLogger
	Logger   *slog.Logger
}

// Manager owns the connection registry and every guarded operation.
// It is explicitly constructed and passed to its consumers — no
// process-wide singleton — so tests can run against isolated registries.
type Manager struct {
	mu    sync.RWMutex
	conns map[string]*Conn

	open           OpenFunc
	queryTimeout   time.Duration
	connectTimeout time.Duration
	redactor       *security.Redactor
	audit          *security.AuditLogger
	logger         *slog.Logger
}

// NewManager creates a Manager from cfg.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = defaultQueryTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	open := cfg.Open
	if open == nil {
		open = func(dsn string) (*sql.DB, error) {
			return sql.Open("sqlserver", dsn)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		conns:          make(map[string]*Conn),
		open:           open,
		queryTimeout:   cfg.QueryTimeout,
		connectTimeout: cfg.ConnectTimeout,
		redactor:       cfg.Redactor,
		audit:          cfg.Audit,
		logger:         logger,
	}
}

// Connect opens a session, verifies it with a ping, and registers a new
// handle. It returns the minted connection id.
func (m *Manager) Connect(ctx context.Context, opts ConnectOptions) (string, error) {
	if opts.Server == "" || opts.Database == "" {
		return "", fmt.Errorf("%w: server and database are required", ErrConnect)
	}

	switch opts.Auth {
	case AuthIntegrated:
		if runtime.GOOS != "windows" {
			return "", fmt.Errorf("%w: use sql authentication (username/password) instead", ErrIntegratedAuth)
		}
	case AuthSQL:
		if opts.Username == "" || opts.Password == "" {
			return "", fmt.Errorf("%w: username and password are required for sql authentication", ErrConnect)
		}
		if m.redactor != nil {
			m.redactor.AddLiteral(opts.Password)
		}
	default:
		return "", fmt.Errorf("%w: auth_method must be %q or %q", ErrConnect, AuthIntegrated, AuthSQL)
	}

	db, err := m.open(buildDSN(opts))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConnect, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, m.connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return "", fmt.Errorf("%w: %v", ErrConnect, err)
	}

	conn := &Conn{
		ID:               uuid.NewString(),
		Server:           opts.Server,
		Database:         opts.Database,
		Auth:             opts.Auth,
		ReadOnlyEnforced: true,
		OpenedAt:         time.Now(),
		db:               db,
	}

	m.mu.Lock()
	m.conns[conn.ID] = conn
	m.mu.Unlock()

	m.logger.Info("sql connection opened",
		"connection_id", conn.ID, "server", opts.Server, "database", opts.Database, "auth", string(opts.Auth))
	m.audit.Log(security.Event{
		Type:   security.EventConnect,
		Detail: fmt.Sprintf("%s/%s (%s)", opts.Server, opts.Database, opts.Auth),
		Metadata: map[string]string{
			"connection_id": conn.ID,
		},
	})

	return conn.ID, nil
}

// Disconnect closes and removes the handle for id. A second disconnect on
// the same id returns ErrNotFound without touching registry state.
func (m *Manager) Disconnect(id string) error {
	m.mu.Lock()
	conn, ok := m.conns[id]
	if ok {
		delete(m.conns, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	_ = conn.db.Close()
	m.logger.Info("sql connection closed", "connection_id", id)
	m.audit.Log(security.Event{
		Type:     security.EventDisconnect,
		Metadata: map[string]string{"connection_id": id},
	})
	return nil
}

// List returns snapshots of all registered handles.
func (m *Manager) List() []ConnInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]ConnInfo, 0, len(m.conns))
	for _, c := range m.conns {
		infos = append(infos, ConnInfo{
			ID:               c.ID,
			Server:           c.Server,
			Database:         c.Database,
			Auth:             c.Auth,
			ReadOnlyEnforced: c.ReadOnlyEnforced,
			OpenedAt:         c.OpenedAt,
		})
	}
	return infos
}

// CloseAll closes every handle. Called at process teardown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	conns := m.conns
	m.conns = make(map[string]*Conn)
	m.mu.Unlock()

	for _, c := range conns {
		_ = c.db.Close()
	}
}

// get returns the live handle for id, failing closed on unknown ids.
func (m *Manager) get(id string) (*Conn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conn, ok := m.conns[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return conn, nil
}

// buildDSN renders a sqlserver URL DSN for opts. Integrated auth omits
// user info entirely so the driver falls back to the ambient identity.
func buildDSN(opts ConnectOptions) string {
	u := &url.URL{
		Scheme: "sqlserver",
		Host:   opts.Server,
	}
	if opts.Auth == AuthSQL {
		u.User = url.UserPassword(opts.Username, opts.Password)
	}
	q := url.Values{}
	q.Set("database", opts.Database)
	q.Set("trustservercertificate", "true")
	u.RawQuery = q.Encode()
	return u.String()
}
