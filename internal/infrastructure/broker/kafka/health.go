package kafka

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
)

// Probe checks broker reachability with a short-lived admin-style client and
// a cluster metadata request, independent of the long-lived consumer
// connection. A stalled consumer and a failing probe are different signals;
// this is a deliberate approximation.
type Probe struct {
	brokers []string
}

func NewProbe(brokers []string) *Probe {
	return &Probe{brokers: brokers}
}

// Reachable reports whether the cluster answers a metadata request.
func (p *Probe) Reachable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()

	client := &kafkago.Client{Addr: kafkago.TCP(p.brokers...), Timeout: defaultDialTimeout}
	_, err := client.Metadata(ctx, &kafkago.MetadataRequest{})
	return err == nil
}
