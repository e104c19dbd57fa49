package supervisor

import (
	"context"
	"errors"

	"github.com/fleetgrid/fleetd/internal/domain/container"
)

// ErrDone is returned by a Step to signal the container has finished its
// work early, independent of max_iterations. The runner treats it the same
// as exhausting the iteration budget: Complete().
var ErrDone = errors.New("workflow done")

// RunContext is what a Step receives: the container it is driving, the
// substrate it may call into, and a logger that persists to the
// container's log stream.
type RunContext struct {
	Ctx       context.Context
	Container *container.Container
	Token     string // the owning player's API bearer token
	Deps      *Deps
	Log       func(level, message string)
}

// Step runs one unit of work for a container iteration. Returning ErrDone
// completes the container; any other non-nil error fails it (subject to
// restart policy); nil means "keep going".
type Step func(rc *RunContext) error

// Registry maps each container.Type to its Step. Built at startup; Validate
// enforces every type in container.AllTypes has an entry before the
// supervisor accepts any Start call.
type Registry struct {
	steps map[container.Type]Step
}

func NewRegistry() *Registry {
	return &Registry{steps: make(map[container.Type]Step)}
}

func (r *Registry) Register(t container.Type, step Step) {
	r.steps[t] = step
}

func (r *Registry) Lookup(t container.Type) (Step, bool) {
	s, ok := r.steps[t]
	return s, ok
}

// Validate reports every type in container.AllTypes missing a registered Step.
func (r *Registry) Validate() []container.Type {
	var missing []container.Type
	for _, t := range container.AllTypes {
		if _, ok := r.steps[t]; !ok {
			missing = append(missing, t)
		}
	}
	return missing
}
