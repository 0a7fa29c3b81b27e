package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/sampleslot/pkg/msgs"
	"github.com/robotalks/sampleslot/pkg/sample"
)

// DefaultPublishTimeout bounds how long Report waits for the broker.
const DefaultPublishTimeout = time.Second

// Topic suffixes under <prefix><node>/.
const (
	TopicSample = "sample"
	TopicMeta   = "meta"
)

// SampleTopic is the topic samples of node are published to.
func SampleTopic(node string) string {
	return node + "/" + TopicSample
}

// MetaTopic is the retained topic describing node.
func MetaTopic(node string) string {
	return node + "/" + TopicMeta
}

// Reporter publishes consumed samples to <prefix><node>/sample and keeps a
// retained <prefix><node>/meta while running.
type Reporter struct {
	Queue          *Queue
	Meta           msgs.Meta
	PublishTimeout time.Duration

	metaJSON []byte
	seq      atomic.Uint64
}

// NewReporter creates a Reporter.
func NewReporter(brokerURL string, meta msgs.Meta) (*Reporter, error) {
	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+MetaTopic(meta.Node), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("sampleslot:" + meta.Node)
	}
	r := &Reporter{
		Queue:          NewQueue(opts, topicPrefix),
		Meta:           meta,
		PublishTimeout: DefaultPublishTimeout,
		metaJSON:       metaJSON,
	}
	r.Queue.OnConnect = func(q *Queue) {
		q.PubWith(MetaTopic(r.Meta.Node), r.metaJSON, 1, true)
	}
	return r, nil
}

// Name implements Named.
func (r *Reporter) Name() string {
	return "mqtt-reporter"
}

// Run implements Runnable.
func (r *Reporter) Run(ctx context.Context) error {
	r.Queue.Connect()
	<-ctx.Done()
	r.Queue.PubWith(MetaTopic(r.Meta.Node), nil, 1, true).WaitTimeout(r.PublishTimeout)
	r.Queue.Close()
	return ctx.Err()
}

// Waiting implements Reporter.
func (r *Reporter) Waiting(context.Context) error {
	return nil
}

// Report implements Reporter.
func (r *Reporter) Report(_ context.Context, v sample.Sample) error {
	msg := msgs.NewSample(v, r.seq.Add(1), r.Meta.Session, time.Now())
	payload, err := msg.Encode()
	if err != nil {
		return err
	}
	token := r.Queue.Pub(SampleTopic(r.Meta.Node), payload)
	if !token.WaitTimeout(r.PublishTimeout) {
		return fmt.Errorf("publish sample %d timeout", msg.Seq)
	}
	if err := token.Error(); err != nil {
		return err
	}
	glog.V(2).Infof("published sample %d %s", msg.Seq, v)
	return nil
}
