package scheduler

import (
	"context"
	"time"
)

// NamedJob binds an Engine to a single logical job identity.
type NamedJob struct {
	engine *Engine
	name   string
}

func (j NamedJob) Name() string {
	return j.name
}

// EnsureArmed arms the job after delay using policy.
func (j NamedJob) EnsureArmed(ctx context.Context, delay time.Duration, policy Policy) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := j.engine.Arm(j.name, delay, policy)
	return err
}

func (j NamedJob) Done() {
	j.engine.Done(j.name)
}
