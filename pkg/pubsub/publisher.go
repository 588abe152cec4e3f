package pubsub

import "context"

// Pack is one message. Key selects the partition, Msg is the payload.
type Pack struct {
	Key []byte
	Msg []byte
}

type Publisher interface {
	Publish(context.Context, string, *Pack) error
}
