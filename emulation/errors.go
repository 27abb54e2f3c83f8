package emulation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexunderch/PufferLib/space"
)

var (
	// ErrAPIUsage reports a step before the first reset or after the episode
	// ended.
	ErrAPIUsage = errors.New("emulation: api usage")

	// ErrInvalidAgent is matched by every *InvalidAgentError.
	ErrInvalidAgent = errors.New("emulation: invalid agent")

	// ErrNotInSpace is matched by every *SpaceError.
	ErrNotInSpace = errors.New("emulation: value not in space")

	// ErrConfig reports adapter options that cannot produce an environment.
	ErrConfig = errors.New("emulation: invalid configuration")

	// ErrInvalidTeams reports teams that do not partition the agents.
	ErrInvalidTeams = errors.New("emulation: invalid teams")

	// ErrSeedUnsupported may be returned by an environment's Reset when it
	// cannot honour a seed. The adapter then resets without one.
	ErrSeedUnsupported = errors.New("emulation: seeding unsupported")
)

// InvalidAgentError names an agent or team id outside the roster.
type InvalidAgentError struct {
	Agent string
	Valid []string
}

func (e *InvalidAgentError) Error() string {
	return fmt.Sprintf("emulation: invalid agent %q, valid agents are [%s]", e.Agent, strings.Join(e.Valid, ", "))
}

func (e *InvalidAgentError) Is(target error) bool { return target == ErrInvalidAgent }

// SpaceError reports an action or observation outside its space. Subject is
// the agent or team id, or "action"/"observation" for single-agent adapters.
type SpaceError struct {
	Subject string
	Value   any
	Space   space.Space
}

func (e *SpaceError) Error() string {
	return fmt.Sprintf("emulation: %s value %v not in space %s", e.Subject, e.Value, e.Space)
}

func (e *SpaceError) Is(target error) bool { return target == ErrNotInSpace }
