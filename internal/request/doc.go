// Package request is the typed HTTP client every mmwdash endpoint wrapper
// goes through.
//
// # Envelope
//
// Every backend reply is a JSON object of the form
//
//	{"code": 20000, "message": "...", "data": {...}, ...}
//
// code 20000 is success. Any other code is a failure, whatever the HTTP
// status was. Extra top-level fields are preserved in Envelope.Extra.
//
// # Pipeline
//
// Each call passes two stages:
//
//  1. beforeSend: forwards the request unchanged. The session token is read
//     when the client is built but is not attached, so requests go out
//     unauthenticated.
//  2. afterReceive: decodes the envelope and branches on code.
//
// Outcomes:
//
//	code == 20000          → *Reply, Body is the full envelope
//	code in 50008/50012/50014 → notification, APIError, detached re-login prompt
//	other code             → notification, APIError
//	transport failure      → generic notification, wrapped transport error
//
// Every failure produces exactly one notification. The re-login prompt runs
// in its own goroutine: the failing call has already returned by the time the
// user answers. Confirming resets the session (store and cookie) and asks the
// Reloader to restart the dashboard; cancelling leaves everything as is.
//
// # Envelope as payload
//
// A successful Reply carries the whole envelope in Body rather than only the
// data member. The typed helpers (Get, Post, Put, Patch, Delete, Upload)
// return Response[T], which is the same envelope with Data decoded into T.
// Code that wants only the payload reads resp.Data.
//
// # Usage
//
//	client := request.New(request.Config{BaseURL: "http://10.0.0.2:5000/api"}, request.Deps{
//		Session:   sessionStore,
//		Notifier:  bridge,
//		Confirmer: bridge,
//		Reloader:  bridge,
//	})
//
//	resp, err := request.Get[OnlineUserCount](ctx, client, "/usr/getOnlineUsrCnt")
//	if err != nil {
//		return err // already shown to the user
//	}
//	fmt.Println(resp.Data.Count)
//
// There is no retry, caching or request coalescing. Identical calls made
// back to back are two HTTP requests.
package request
