package app

import (
	"net/url"
	"strings"

	"helmsman/internal/orchestrator"
	"helmsman/internal/runtime"
)

// runtimeAdapter narrows *runtime.ExecRuntime to the orchestrator's
// ProcessRuntime interface (the concrete Start returns *runtime.Process).
type runtimeAdapter struct {
	rt *runtime.ExecRuntime
}

func newRuntimeAdapter(rt *runtime.ExecRuntime) runtimeAdapter {
	return runtimeAdapter{rt: rt}
}

func (a runtimeAdapter) Available() bool            { return a.rt.Available() }
func (a runtimeAdapter) IsRunning(name string) bool { return a.rt.IsRunning(name) }
func (a runtimeAdapter) Stop(name string) error     { return a.rt.Stop(name) }

func (a runtimeAdapter) Start(command string) (orchestrator.Proc, error) {
	return a.rt.Start(command)
}

// gatewayBaseURL derives the gateway's API base from its health endpoint.
func gatewayBaseURL(healthURL string) string {
	u, err := url.Parse(healthURL)
	if err != nil {
		return strings.TrimSuffix(healthURL, "/health")
	}
	u.Path = ""
	u.RawQuery = ""
	return u.String()
}
