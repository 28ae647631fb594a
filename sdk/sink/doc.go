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

// Package sink exports workflow sink calls to external transports.
//
// Both exporters implement worker.Exporter and are attached with
// Worker.AddExporter. Records are msgpack encoded api.SinkRecord values.
//
//   - NATSPublisher publishes on <prefix>.<namespace>.<sink>.<function>,
//     through core NATS or JetStream. EnsureStream and StreamConfig set up a
//     stream capturing all of them.
//   - RedisStream appends entries to a Redis stream with XADD; Read pages
//     through them.
package sink
