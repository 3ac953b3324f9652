/*
Package availability resolves layered, prioritized time rules into a single
schedule.

An Engine starts with a base rule at priority 0 that is on everywhere and
carries no payload. Rules added at higher priorities override lower ones where
they are active; rules at the same priority may never overlap.

	e := availability.New[Staff]()
	id, err := e.AddRule(rule, 1)
	frames, err := e.Resolve(week)
	f, err := e.FrameAt(t)

Resolve caches the resulting frames. FrameAt, PayloadAt, IsOpenAt and FramesIn
answer from that cache only and report timeframe.ErrNotGenerated when it is
empty, stale, or does not cover the instant asked for.
*/
package availability
