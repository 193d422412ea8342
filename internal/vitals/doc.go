// Package vitals wraps the mmWave vitals backend endpoints.
//
// Every wrapper is a thin call through one shared request.Client, so they all
// inherit its envelope checks, notifications and session-expiry handling:
//
//	client := request.New(request.Config{BaseURL: cfg.BaseAPI}, deps)
//	api := vitals.New(client)
//	resp, err := api.Stress(ctx, "0")
//
// Per-user endpoints take the user id as a path segment (.../uid/{id}). The
// history endpoints are POSTs carrying HistoryParams; use HistoryRange to
// format the window in the backend's "2006-01-02 15:04:05" layout.
//
// Monitor and BigScreen gather what one dashboard view needs. They run their
// calls in sequence, keep every payload that arrived, and join the errors of
// the calls that failed, so a view can render partial data.
package vitals
