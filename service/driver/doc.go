// Package driver advances a session instance until it reaches a checkpoint.
//
// A checkpoint is either a pause-before action, where the driver halts
// without executing the action, or a pause-after action, where the driver
// halts once the action completes. The driver never retries a failed action
// and never rolls back state; it only stops iterating and reports why.
package driver
