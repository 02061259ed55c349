package server

import "sync/atomic"

// Stats counts calls seen by the mock API since it started.
type Stats struct {
	Logins          int64 `json:"logins"`
	LoginFailures   int64 `json:"login_failures"`
	Refreshes       int64 `json:"refreshes"`
	RefreshFailures int64 `json:"refresh_failures"`
	ResourceCalls   int64 `json:"resource_calls"`
	Unauthorized    int64 `json:"unauthorized"`
}

type counters struct {
	logins          atomic.Int64
	loginFailures   atomic.Int64
	refreshes       atomic.Int64
	refreshFailures atomic.Int64
	resourceCalls   atomic.Int64
	unauthorized    atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Logins:          c.logins.Load(),
		LoginFailures:   c.loginFailures.Load(),
		Refreshes:       c.refreshes.Load(),
		RefreshFailures: c.refreshFailures.Load(),
		ResourceCalls:   c.resourceCalls.Load(),
		Unauthorized:    c.unauthorized.Load(),
	}
}

// Stats returns the current call counters. Refreshes counts every refresh request, successful or not.
func (s *Server) Stats() Stats {
	return s.counters.snapshot()
}
