package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"helmsman/internal/config"
	"helmsman/internal/gameplan"
	"helmsman/internal/logger"
	"helmsman/internal/market"
	"helmsman/internal/notify"
	"helmsman/internal/orchestrator"
	"helmsman/internal/risk"
	"helmsman/internal/runtime"
	"helmsman/internal/session"
	"helmsman/internal/store"
	transporthttp "helmsman/internal/transport/http"
)

// App wires the supervisor, session loop and status server together.
type App struct {
	cfg      *config.Config
	st       *store.Store
	orch     *orchestrator.Orchestrator
	loader   *gameplan.Loader
	notifier notify.TextNotifier
}

func New(cfg *config.Config) (*App, error) {
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	var notifier notify.TextNotifier = notify.Nop{}
	if cfg.Notify.Webhook.Enabled {
		notifier = notify.NewWebhook(cfg.Notify.Webhook.URL)
	}

	validator := gameplan.NewValidator(st)
	loader := gameplan.NewLoader(cfg.Gameplan.Path, validator)

	rt := newRuntimeAdapter(runtime.NewExecRuntime())
	health := runtime.NewHTTPHealthChecker(cfg.Gateway.HealthURL)
	orch := orchestrator.New(orchestrator.Config{
		GatewayProcess:     cfg.Gateway.ProcessName,
		GatewayCommand:     cfg.Gateway.StartCommand,
		BotProcess:         cfg.Bot.ProcessName,
		BotCommand:         cfg.Bot.StartCommand,
		HealthPollInterval: cfg.Gateway.PollInterval(),
		HealthTimeout:      cfg.Gateway.HealthTimeout(),
		BotGraceWindow:     cfg.Bot.GraceWindow(),
		FallbackPath:       cfg.Gameplan.FallbackPath,
	}, rt, health, loader, notifier)

	return &App{cfg: cfg, st: st, orch: orch, loader: loader, notifier: notifier}, nil
}

// Supervise runs the startup sequence once and returns its terminal outcome.
func (a *App) Supervise(ctx context.Context) orchestrator.Outcome {
	return a.orch.Run(ctx)
}

// RunBot loads the gameplan and runs the evaluation session. This is the
// entrypoint of the bot process the supervisor launches.
func (a *App) RunBot(ctx context.Context) error {
	return a.RunSession(ctx, a.loader.Load())
}

// RunSession runs the evaluation loop, gameplan watcher and status server
// until the context is cancelled.
func (a *App) RunSession(ctx context.Context, plan gameplan.Result) error {
	loc, err := time.LoadLocation(a.cfg.Account.Timezone)
	if err != nil {
		return err
	}
	now := time.Now().In(loc)

	guard := risk.NewGuard(plan.Plan.HardLimits, a.cfg.Account.BalanceUSD, a.cfg.Account.MaxWeeklyLossPct, now)
	if prev, ok, err := a.st.LatestRiskSnapshot(); err != nil {
		logger.Warnf("risk snapshot load failed: %v", err)
	} else if ok {
		guard.Restore(prev, now)
	}
	guard.SetSnapshotSink(a.st)
	guard.SetBreakerHandler(func(reason string) {
		// The breaker directive is downstream's signal to flatten and cancel;
		// this side alerts and records.
		if err := a.notifier.SendText("circuit breaker OPEN: " + reason + " - forcing closure of open positions"); err != nil {
			logger.Warnf("alert delivery failed: %v", err)
		}
	})

	source := market.NewHTTPSource(gatewayBaseURL(a.cfg.Gateway.HealthURL))
	sess := session.New(session.Config{
		Interval:     a.cfg.Session.Interval(),
		Staleness:    a.cfg.Session.Staleness(),
		LookbackBars: a.cfg.Session.LookbackBars,
		BalanceUSD:   a.cfg.Account.BalanceUSD,
	}, plan, guard, source, a.st, a.notifier)
	sess.SetPositionSource(source)

	g, gctx := errgroup.WithContext(ctx)
	if a.cfg.Gameplan.Watch {
		watcher, err := gameplan.NewWatcher(a.loader)
		if err != nil {
			logger.Warnf("gameplan watcher unavailable: %v", err)
		} else {
			watcher.Subscribe(sess.OnPlanChange)
			defer watcher.Close()
		}
	}
	g.Go(func() error { return sess.Run(gctx) })
	g.Go(func() error {
		server := transporthttp.NewServer(a.cfg.App.HTTPAddr, a.orch, sess, guard, a.st)
		return server.Run(gctx)
	})
	return g.Wait()
}

func (a *App) Close() error {
	return a.st.Close()
}
