package middleware

import (
	"context"

	"github.com/yourusername/pulsar"
)

// Scheduler is the minimal surface a background-job engine exposes to
// handlers via request extensions. The engine itself (cron parsing,
// persistence, retries) is the named non-goal "the cron scheduler" —
// this interface is only the handoff point, mirroring
// silent/src/scheduler/traits.rs's SchedulerExt, which likewise just
// hands back a reference to whatever Scheduler a deployment built.
type Scheduler interface {
	Enqueue(ctx context.Context, job func(context.Context))
}

// schedulerSlot boxes a Scheduler in a concrete type before it goes
// into Extensions: pulsar.Set/Get key by the stored value's own type,
// and an interface value's type collapses to nil on the zero-value side
// of that lookup, so an interface can never be read back directly.
type schedulerSlot struct{ Scheduler }

// SchedulerInjection stashes sched on every request's extensions so
// handlers can enqueue background work without a global variable,
// grounded on silent/src/scheduler/middleware.rs's SchedulerMiddleware
// (which does the same with a process-global scheduler instance).
func SchedulerInjection(sched Scheduler) pulsar.Middleware {
	return pulsar.MiddlewareFunc(func(req *pulsar.Request, next *pulsar.Next) (*pulsar.Response, error) {
		pulsar.Set(req.Extensions(), schedulerSlot{sched})
		return next.Call(req)
	})
}

// SchedulerFromRequest retrieves the Scheduler stashed by
// SchedulerInjection, the Go equivalent of
// silent/src/scheduler/traits.rs's Request::scheduler().
func SchedulerFromRequest(req *pulsar.Request) (Scheduler, bool) {
	slot, ok := pulsar.Get[schedulerSlot](req.Extensions())
	if !ok {
		return nil, false
	}
	return slot.Scheduler, true
}
