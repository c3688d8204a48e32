// Package dispatch sends launch requests to the process manager.
//
// A launch is one stateless transaction: encode a fresh command buffer, issue
// a single synchronous request over the caller's handle, and decode the
// outcome from the reply.
//
// The dispatcher does not validate the handle. An unacquired or released
// handle (InvalidHandle) is still sent, and the kernel reports the failure.
//
// Error handling:
//   - Transport failure → the kernel's code, returned without reading the reply
//   - Transport success → reply word 1, the service's own result, unmodified
//
// Retry logic is deliberately absent: each call makes exactly one attempt.
package dispatch
