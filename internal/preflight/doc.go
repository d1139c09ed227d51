// Package preflight provides readiness checks for the services and
// filesystem paths spoolcheck depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and logs every failure, then keeps
//     running: a failed check only means print-start sessions will fail
//     closed until the dependency recovers.
//   - The CLI "spoolcheck status" command and GET /api/status report the
//     same list so users can see why prints are being held.
package preflight
