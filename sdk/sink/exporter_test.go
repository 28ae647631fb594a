// Copyright 2025 Nguyen Nhat Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sink

import (
	"context"
	"testing"
	"time"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/sdk/client"
	"github.com/ngnhng/typedflow/sdk/testsuite"
	"github.com/ngnhng/typedflow/sdk/worker"
	"github.com/ngnhng/typedflow/sdk/workflow"
)

func TestExportersReceiveWorkflowSinkCalls(t *testing.T) {
	ns := workflow.NewNamespace("shop")
	ns.DeclareSink("audit", "note")
	w, err := worker.New(ns, nil)
	if err != nil {
		t.Fatalf("worker.New: %v", err)
	}
	wf := func(ctx workflow.Context, orderID string) error {
		return workflow.GetSink(ctx, "audit").Call("note", "placed "+orderID)
	}
	if err := w.RegisterWorkflow(workflow.Declaration{Name: "orders"}, wf); err != nil {
		t.Fatalf("RegisterWorkflow: %v", err)
	}

	stream := NewRedisStream(newRedis(t), nil)
	conn := &fakeConn{}
	w.AddExporter(stream)
	w.AddExporter(NewNATSPublisher(conn, nil))

	env := testsuite.NewEnvironment(w, nil)
	t.Cleanup(func() { _ = env.Close() })
	c, err := client.NewClient(&client.Options{Namespace: ns, Backend: env})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	run, err := c.StartWorkflow(ctx, "orders", client.StartOptions{ID: "order-7"}, "A-7")
	if err != nil {
		t.Fatalf("StartWorkflow: %v", err)
	}
	if err := run.Get(ctx, nil); err != nil {
		t.Fatalf("Get: %v", err)
	}

	entries, err := stream.Read(ctx, "", 10)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("stream has %d entries, want 1", len(entries))
	}
	r := entries[0].Record
	want := api.SinkInfo{Namespace: "shop", WorkflowType: "orders", WorkflowID: "order-7", RunID: run.RunID()}
	if r.Info != want || r.Args[0] != "placed A-7" {
		t.Errorf("record = %+v, want info %+v", r, want)
	}
	if len(conn.msgs) != 1 || conn.msgs[0].subject != "sinks.shop.audit.note" {
		t.Errorf("nats messages = %+v", conn.msgs)
	}
}
