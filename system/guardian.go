package system

import (
	"fmt"

	"github.com/lguibr/greenroom/actor"
	"github.com/lguibr/greenroom/message"
)

// guardianBehavior is the behavior bound to the three fixed root actors of
// spec.md section 4.5. It does nothing with user messages (none are ever
// sent to a guardian directly) but logs any that arrive when Verbose,
// matching the teacher's RoomManagerActor's top-level logging idiom.
// Escalations are logged by System.Escalate, not here.
type guardianBehavior struct {
	sys  *System
	path actor.Path
}

func guardianProducer(sys *System, path actor.Path) actor.Producer {
	return func() actor.Behavior {
		return &guardianBehavior{sys: sys, path: path}
	}
}

func (g *guardianBehavior) Receive(ctx actor.Context, msg *message.Message) error {
	if g.sys.cfg.Verbose && msg.Tag == message.TagUser {
		fmt.Printf("system: guardian %s received unexpected user message\n", g.path)
	}
	return nil
}

// SupervisorStrategy makes a guardian whose own Receive fails stop rather
// than restart. Escalations from other actors do not reach this strategy:
// System.Escalate stops the escalating actor's subtree directly.
func (g *guardianBehavior) SupervisorStrategy() actor.Strategy {
	return actor.StrategyStop
}
