package orchestrator

// Phase is the orchestrator's position in the startup sequence. Success and
// Failure are terminal; Failure is never exited without external intervention.
type Phase int

const (
	Initializing Phase = iota
	GatewayStarting
	GatewayHealthWait
	GameplanLoading
	BotStarting
	Success
	Failure
)

func (p Phase) String() string {
	switch p {
	case Initializing:
		return "initializing"
	case GatewayStarting:
		return "gateway_starting"
	case GatewayHealthWait:
		return "gateway_health_wait"
	case GameplanLoading:
		return "gameplan_loading"
	case BotStarting:
		return "bot_starting"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase ends the sequence.
func (p Phase) Terminal() bool {
	return p == Success || p == Failure
}

// Process exit codes. Degraded success is distinguished from normal success so
// operators can see a degraded-but-running bot without treating it as an
// outage.
const (
	ExitSuccess  = 0
	ExitFailure  = 1
	ExitDegraded = 2
)
