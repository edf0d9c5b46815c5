package tradoc

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tradocflow/tradocflow/internal/core/config"
	"github.com/tradocflow/tradocflow/internal/core/eventbus"
	"github.com/tradocflow/tradocflow/internal/core/git"
	"github.com/tradocflow/tradocflow/internal/core/notify"
	"github.com/tradocflow/tradocflow/internal/core/permission"
	"github.com/tradocflow/tradocflow/internal/store/jsonfile"
	"github.com/tradocflow/tradocflow/internal/store/tomlfile"
	"github.com/tradocflow/tradocflow/pkg/executil"
)

// eventBuffer is the bus buffer size; publishers never block, so a
// burst beyond this drops events rather than stalling a mutation.
const eventBuffer = 256

// App is the central entry point for all tradocflow operations.
// Commands and the TUI consume App instead of cherry-picking raw
// dependencies.
type App struct {
	Tasks         *TaskService
	Progress      *ProgressService
	Scan          *ScanService
	Notifications notify.Store
	Kanban        Kanban

	Store  *tomlfile.Store
	Bus    *eventbus.EventBus
	Config *config.Config

	cancelBus context.CancelFunc
}

// NewApp wires the full service graph from configuration: the TOML
// shard store, team-table permissions, the git executor, the event bus
// with its notification routing and kanban bridge, and the services on
// top. The bus dispatch loop is started; Stop shuts it down.
func NewApp(cfg *config.Config, log zerolog.Logger) *App {
	store := tomlfile.NewStore(cfg.RepoPath, "")

	resolver := permission.NewTeamResolver(store, cfg.Admins)
	perms := permission.NewEngine(resolver)

	var g git.Git = git.Noop{}
	if !cfg.Commit.Disabled {
		g = git.NewExecutor(cfg.GitPath, &executil.RealExecutor{})
	}

	bus := eventbus.New(eventBuffer)
	eventbus.RegisterDebugLogger(bus, log)
	eventbus.NewNotificationRouter(bus).Register()

	notifications := jsonfile.NewNotificationStore(cfg.NotificationsFile())
	RegisterNotificationSink(bus, notifications, log)

	kanban := NewLogKanban(log)
	RegisterKanbanBridge(bus, kanban, log)

	tasks := NewTaskService(store, perms, g, bus, cfg, cfg.User, log)

	busCtx, cancel := context.WithCancel(context.Background())
	go bus.Start(busCtx)

	return &App{
		Tasks:         tasks,
		Progress:      NewProgressService(store, log),
		Scan:          NewScanService(cfg, jsonfile.NewScanStore(cfg.ScansFile()), bus, log),
		Notifications: notifications,
		Kanban:        kanban,
		Store:         store,
		Bus:           bus,
		Config:        cfg,
		cancelBus:     cancel,
	}
}

// Stop shuts down the bus dispatch loop. Events already queued but not
// yet dispatched are dropped.
func (a *App) Stop() {
	if a.cancelBus != nil {
		a.cancelBus()
	}
}

// WatchShards starts a shard watcher over the store and bridges its
// events into cache eviction and shard.changed publications. Runs until
// ctx is cancelled.
func (a *App) WatchShards(ctx context.Context, log zerolog.Logger) error {
	watcher, err := tomlfile.NewShardWatcher(a.Store)
	if err != nil {
		return err
	}
	defer watcher.Close()

	return RunShardBridge(ctx, watcher, a.Tasks, a.Bus, log)
}
