package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"helmsman/internal/gameplan"
	"helmsman/internal/logger"
	"helmsman/internal/notify"
)

// ProcessRuntime is the minimal process-lifecycle surface the supervisor
// depends on.
type ProcessRuntime interface {
	Available() bool
	IsRunning(name string) bool
	Start(command string) (Proc, error)
	Stop(name string) error
}

// Proc is a handle on a launched process.
type Proc interface {
	ExitedWithin(grace time.Duration) (bool, string)
}

// HealthChecker is the single boolean predicate polled while waiting for the
// gateway.
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// Config carries the startup parameters.
type Config struct {
	GatewayProcess string
	GatewayCommand string
	BotProcess     string
	BotCommand     string

	HealthPollInterval time.Duration
	HealthTimeout      time.Duration
	BotGraceWindow     time.Duration

	FallbackPath string
}

// Outcome is the terminal result of a run. ExitCode maps 1:1 to the terminal
// phases: 0 success with a real strategy, 1 failure, 2 success degraded to
// cash preservation.
type Outcome struct {
	Phase    Phase
	ExitCode int
	Degraded bool
	Reason   string
	Plan     gameplan.Result
}

// Orchestrator sequences gateway startup, health verification, gameplan
// loading and bot launch as a strict single-threaded state machine.
type Orchestrator struct {
	cfg      Config
	rt       ProcessRuntime
	health   HealthChecker
	loader   *gameplan.Loader
	notifier notify.TextNotifier

	mu    sync.RWMutex
	phase Phase
	runID string

	gatewayRestarted bool // one-shot restart flag
}

func New(cfg Config, rt ProcessRuntime, health HealthChecker, loader *gameplan.Loader, notifier notify.TextNotifier) *Orchestrator {
	if cfg.HealthPollInterval <= 0 {
		cfg.HealthPollInterval = 5 * time.Second
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 2 * time.Minute
	}
	if cfg.BotGraceWindow <= 0 {
		cfg.BotGraceWindow = 10 * time.Second
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Orchestrator{
		cfg:      cfg,
		rt:       rt,
		health:   health,
		loader:   loader,
		notifier: notifier,
		phase:    Initializing,
		runID:    uuid.NewString(),
	}
}

// Phase returns the current phase for status reporting.
func (o *Orchestrator) Phase() Phase {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.phase
}

func (o *Orchestrator) transition(to Phase) {
	o.mu.Lock()
	from := o.phase
	o.phase = to
	o.mu.Unlock()
	logger.Infof("orchestrator %s -> %s run=%s", from, to, o.runID)
}

// Run executes the startup sequence once. It never panics; every terminal
// outcome carries a specific reason.
func (o *Orchestrator) Run(ctx context.Context) Outcome {
	if !o.rt.Available() {
		// Environment precondition, not a transient fault: no retry.
		return o.fail("process runtime unreachable")
	}

	o.transition(GatewayStarting)
	if o.rt.IsRunning(o.cfg.GatewayProcess) {
		logger.Infof("gateway already running, skipping start")
	} else {
		if _, err := o.rt.Start(o.cfg.GatewayCommand); err != nil {
			return o.fail(fmt.Sprintf("gateway start failed: %v", err))
		}
	}

	o.transition(GatewayHealthWait)
	if !o.waitHealthy(ctx) {
		// A cancelled context is an operator shutdown, not a gateway fault;
		// restarting the gateway on the way out would be wrong.
		if ctx.Err() != nil {
			return o.fail("startup cancelled: " + ctx.Err().Error())
		}
		if o.gatewayRestarted {
			return o.fail("gateway health timeout after restart attempt")
		}
		o.gatewayRestarted = true
		logger.Warnf("gateway health timeout, attempting one restart")
		if err := o.rt.Stop(o.cfg.GatewayProcess); err != nil {
			return o.fail(fmt.Sprintf("gateway stop for restart failed: %v", err))
		}
		if _, err := o.rt.Start(o.cfg.GatewayCommand); err != nil {
			return o.fail(fmt.Sprintf("gateway restart failed: %v", err))
		}
		if !o.waitHealthy(ctx) {
			if ctx.Err() != nil {
				return o.fail("startup cancelled: " + ctx.Err().Error())
			}
			// Second timeout escalates; no third attempt.
			return o.fail("gateway health timeout after restart attempt")
		}
	}

	o.transition(GameplanLoading)
	plan := o.loader.Load()
	if plan.Rejected {
		// Designed degraded-but-alive path: never a Failure.
		if err := gameplan.PersistFallback(o.cfg.FallbackPath, plan.RejectionReason); err != nil {
			logger.Errorf("fallback gameplan persist failed: %v", err)
		}
		logger.Warnf("gameplan rejected (%s), continuing with safe default", plan.RejectionReason)
	}

	o.transition(BotStarting)
	if o.rt.IsRunning(o.cfg.BotProcess) {
		return o.fail("trading bot already running, refusing duplicate instance")
	}
	proc, err := o.rt.Start(o.cfg.BotCommand)
	if err != nil {
		return o.fail(fmt.Sprintf("bot start failed: %v", err))
	}
	if exited, output := proc.ExitedWithin(o.cfg.BotGraceWindow); exited {
		return o.fail(fmt.Sprintf("bot exited within grace window: %s", output))
	}

	o.transition(Success)
	out := Outcome{Phase: Success, ExitCode: ExitSuccess, Plan: plan}
	if plan.ForcedCash() {
		out.Degraded = true
		out.ExitCode = ExitDegraded
		out.Reason = degradedReason(plan)
		o.alert(fmt.Sprintf("helmsman up DEGRADED (cash preservation): %s", out.Reason))
	} else {
		o.alert(fmt.Sprintf("helmsman up, strategy=%s symbols=%d", plan.Plan.Strategy, len(plan.Plan.Symbols)))
	}
	return out
}

func (o *Orchestrator) waitHealthy(ctx context.Context) bool {
	deadline := time.Now().Add(o.cfg.HealthTimeout)
	ticker := time.NewTicker(o.cfg.HealthPollInterval)
	defer ticker.Stop()
	for {
		if o.health.Healthy(ctx) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

func (o *Orchestrator) fail(reason string) Outcome {
	o.transition(Failure)
	logger.Errorf("orchestrator failure: %s", reason)
	o.alert("helmsman startup FAILED: " + reason)
	return Outcome{Phase: Failure, ExitCode: ExitFailure, Reason: reason}
}

func (o *Orchestrator) alert(text string) {
	if err := o.notifier.SendText(text); err != nil {
		logger.Warnf("alert delivery failed: %v", err)
	}
}

func degradedReason(plan gameplan.Result) string {
	if plan.Rejected {
		return plan.RejectionReason
	}
	if len(plan.Overrides) > 0 {
		return plan.Overrides[0]
	}
	return ""
}
