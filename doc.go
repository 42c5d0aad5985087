// Package waypoint drives long-lived, human-in-the-loop workflow sessions.
//
// A session advances in bursts: each call runs the workflow until it reaches
// a checkpoint (an action configured as pauseBefore or pauseAfter), finishes,
// or fails, and returns a read-only View of the session. Live sessions are
// kept in a bounded LRU store; calls on the same session are serialized,
// calls on different sessions run in parallel.
//
//	srv, _ := waypoint.New(ctx, waypoint.WithConfig(cfg))
//	id, _ := srv.Create(ctx, "tenant")
//	view, _ := srv.Start(ctx, "tenant", id, map[string]interface{}{"a": "x"})
//	view, _ = srv.Submit(ctx, "tenant", id, map[string]interface{}{"answer": "y"})
//	view, _ = srv.Inspect(ctx, "tenant", id)
package waypoint
