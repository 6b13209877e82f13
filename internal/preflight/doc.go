// Package preflight provides readiness checks for the backend and the local
// paths pitchctl depends on.
//
// "pitchctl doctor" runs RunAll and renders the results as a table. The
// individual checks are exported so other commands can reuse them.
package preflight
