// Package app is the composition root of mmwdash.
//
// Run loads the configuration, opens the log file and the cookie jar, builds
// the shared request.Client and hands it to the vitals API. A Poller fetches
// the data set of whichever view is showing into a state.Store, and the
// Bubble Tea UI renders snapshots of that store.
//
//	config.Load ─> logging.Open ─> auth.Open ─> session.NewStore
//	                                               │
//	ui.Bridge (Notifier, Confirmer, Reloader) ─> request.New ─> vitals.New
//	                                                              │
//	state.Store <── Poller (ticker, manual triggers) <────────────┘
//	     │
//	     └──> ui.Run (reads snapshots, tells the poller what to watch)
//
// With Options.Mock the backend is an in-process mockapi server, so the
// dashboard runs without a device backend.
//
// Polling errors never stop the dashboard. Fields that failed keep their
// previous value and the header shows how many polls in a row failed. An
// expired session pauses automatic polling until the user confirms the
// re-login dialog or refreshes by hand.
package app
