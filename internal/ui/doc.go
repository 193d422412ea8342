// Package ui is the Bubble Tea terminal front end of mmwdash.
//
// The root Model renders whichever view the router resolved: the per-user
// monitor (vitals summary and waveform sparklines), the big screen
// (aggregate counts, per-city and per-day breakdowns, recent warnings) or
// the not-found page. The big screen can also open on top of another view
// when navigation hits /show/show.
//
// Data flows one way. A poller outside this package writes into a
// state.Store; the model copies a snapshot on every tick and never blocks on
// the network. Navigation tells the poller which data set to fetch through
// the Refresher interface.
//
// The Bridge carries messages from the request layer into the program:
// error toasts, the re-login confirmation dialog and the reload after a
// logout. Messages sent before the program starts are queued.
//
// Key bindings:
//
//   - m / b: Monitor / big screen
//   - [ / ]: Previous / next user
//   - :: Go to a path
//   - r: Refresh now
//   - l: Toggle the dashboard log
//   - esc: Close the big-screen popup or the logs
//   - T: Cycle theme
//   - h or ?: Help
//   - q or ctrl+c: Quit
package ui
