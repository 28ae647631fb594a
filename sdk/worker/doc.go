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

// Package worker holds the workflow, activity and sink implementations of a
// namespace and runs them on behalf of an engine.
//
// # Creating a Worker
//
//	ns := workflow.NewNamespace("shop")
//	w, err := worker.New(ns, &worker.Options{Logger: logger})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Registering Workflows
//
// Every workflow is registered with its Declaration. Arguments are checked
// against the declaration's schema before the workflow function runs:
//
//	schema, _ := workflow.SchemaOf(OrderWorkflow)
//	err := w.RegisterWorkflow(workflow.Declaration{
//		Name:    "orders",
//		Schema:  schema,
//		Signals: []string{"cancel"},
//	}, OrderWorkflow)
//
// # Registering Activities
//
// Activities accept context.Context as their first parameter:
//
//	w.RegisterActivity(ChargeCard)
//	w.RegisterScopedActivity("orders", "reserve", ReserveStock)
//
// Activities that share dependencies are easier to build with NewActivities:
//
//	acts, err := worker.NewActivities(ctx, ns, deps, map[string]worker.ActivityFactory[*Deps]{
//		"charge": func(ctx context.Context, d *Deps) (any, error) { return d.Billing.Charge, nil },
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	w.RegisterActivities(acts)
//
// # Sinks
//
// Sink functions declared in the namespace get typed implementations with
// RegisterSink; exporters such as sink.NATSPublisher or sink.RedisStream
// receive every call as an api.SinkRecord.
package worker
