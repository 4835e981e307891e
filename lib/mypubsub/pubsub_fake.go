package mypubsub

import (
	"context"
	"os"
	"sync"
)

type fakePubSub struct {
	sync.Mutex
	topics    map[string][]string
	endpoints map[string][]string
}

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = newFakePubSub
	}
}

func newFakePubSub(c context.Context) (PubSub, func(), error) {
	return &fakePubSub{
		topics:    map[string][]string{},
		endpoints: map[string][]string{},
	}, func() {}, nil
}

func (ps *fakePubSub) Subscribe(c context.Context, topic string, urlToPostTo string) error {
	ps.Lock()
	defer ps.Unlock()

	ps.endpoints[topic] = append(ps.endpoints[topic], urlToPostTo)
	return nil
}

func (ps *fakePubSub) CreateTopic(c context.Context, topic string) error {
	ps.Lock()
	defer ps.Unlock()

	if _, exists := ps.topics[topic]; !exists {
		ps.topics[topic] = []string{}
	}
	return nil
}

func (ps *fakePubSub) Publish(c context.Context, topic string, data string) error {
	ps.Lock()
	defer ps.Unlock()

	ps.topics[topic] = append(ps.topics[topic], data)
	return nil
}
