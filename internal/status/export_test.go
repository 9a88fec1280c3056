package status

import "context"

// Report exposes one heartbeat round to tests.
func (r *Reporter) Report(ctx context.Context) {
	r.report(ctx)
}
