// Package ask implements request/reply on top of the fire-and-forget send
// primitive of package actor. It is deliberately kept out of actor itself
// (spec.md's Open Question "is ask core?", resolved in DESIGN.md): the
// core transport never needs to know a send expects a reply, so this is
// built entirely from Ref.Send's sender stamping, Context.Sender, and a throwaway
// one-message actor — no changes to the message envelope are needed.
package ask

import (
	"context"
	"errors"
	"time"

	"github.com/lguibr/greenroom/actor"
	"github.com/lguibr/greenroom/message"
	"github.com/lguibr/greenroom/system"
)

// ErrTimeout is returned when no reply arrives before the deadline.
var ErrTimeout = errors.New("ask: timeout waiting for reply")

// promiseBehavior is a one-shot actor: it forwards the first user message
// it receives onto ch and then stops itself. Spawning one per Ask call is
// the idiomatic Go rendition of Akka's ask-pattern temporary actor.
type promiseBehavior struct {
	ch chan message.Payload
}

func (p *promiseBehavior) Receive(ctx actor.Context, msg *message.Message) error {
	if msg.Tag == message.TagUser {
		select {
		case p.ch <- msg.Payload:
		default:
		}
		ctx.StopSelf()
	}
	return nil
}

// Ask spawns a throwaway reply actor, sends payload to target with that
// actor stamped as sender, and blocks until a reply arrives, ctx is done,
// or timeout elapses. The reply actor is stopped in all cases.
func Ask(ctx context.Context, sys *system.System, target actor.Ref, payload message.Payload, timeout time.Duration) (message.Payload, error) {
	ch := make(chan message.Payload, 1)
	promiseRef, err := sys.SpawnSystemInternal(func() actor.Behavior {
		return &promiseBehavior{ch: ch}
	}, "")
	if err != nil {
		return message.Payload{}, err
	}
	defer sys.Stop(promiseRef)

	if err := target.Send(payload, &promiseRef); err != nil {
		return message.Payload{}, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-ch:
		return reply, nil
	case <-timer.C:
		return message.Payload{}, ErrTimeout
	case <-ctx.Done():
		return message.Payload{}, ctx.Err()
	}
}

// Reply answers the sender of the message currently being handled, for use
// inside a Behavior.Receive that was invoked via Ask. A no-op if the
// message carries no sender (e.g. it wasn't sent through Ask).
func Reply(ctx actor.Context, payload message.Payload) error {
	sender, ok := ctx.Sender()
	if !ok {
		return nil
	}
	return sender.Send(payload, nil)
}
