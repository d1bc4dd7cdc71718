package natsutil

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"
)

func TestHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{Subject: "t"}
	c := (*headerCarrier)(msg)

	if got := c.Get("traceparent"); got != "" {
		t.Errorf("Get on empty headers = %q", got)
	}
	if keys := c.Keys(); keys != nil {
		t.Errorf("Keys on empty headers = %v", keys)
	}

	c.Set("traceparent", "00-abc-def-01")
	if got := c.Get("traceparent"); got != "00-abc-def-01" {
		t.Errorf("Get = %q", got)
	}
	if keys := c.Keys(); len(keys) != 1 {
		t.Errorf("Keys = %v, want one entry", keys)
	}
}

func TestExtractWithoutHeaders(t *testing.T) {
	parent := context.Background()
	ctx := Extract(parent, &nats.Msg{Subject: "t", Data: []byte("{}")})
	if ctx == nil {
		t.Fatal("Extract returned nil context")
	}
}
