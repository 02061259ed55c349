package apiclient

// PendingRefreshWaiters reports how many callers are queued behind the in-flight refresh.
func (c *Client) PendingRefreshWaiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// RefreshInFlight reports the refresh-in-progress flag.
func (c *Client) RefreshInFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshing
}
