// Package lib holds supporting modules that sit outside the request path:
// the background job queue (Asynq over Redis), the e-mail client (Resend),
// and small utilities used by the command line.
package lib
