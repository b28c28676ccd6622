// Package follow keeps a chart's visible window pinned to the present.
//
// A [Follower] slides one chart so that its window ends at the current time,
// once on start and then on every tick. The chart re-renders and its redraw
// hook broadcasts the new window to the rest of the dashboard, exactly as a
// user pan would.
//
// Users of the syncboard library should not need this package directly; the
// standalone server wires it from the follow section of the configuration.
package follow
