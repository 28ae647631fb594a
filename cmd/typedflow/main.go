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


// Command typedflow inspects namespace files and the sink streams workers
// export to.
//
//	typedflow describe -namespace shop.yaml
//	typedflow validate -namespace shop.yaml -workflow orders -args '[{"id":"A-1"}]'
//	typedflow sinks tail -source redis -follow
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/ngnhng/typedflow/api"
	"github.com/ngnhng/typedflow/sdk/config"
	"github.com/ngnhng/typedflow/sdk/logger"
	"github.com/ngnhng/typedflow/sdk/sink"
	"github.com/ngnhng/typedflow/sdk/workflow"
)

const usage = `usage: typedflow <command> [flags]

commands:
  describe    print the workflows, activities, attributes and sinks of a namespace file
  validate    check workflow arguments against the declared schema
  sinks tail  print exported sink records from Redis or NATS
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("typedflow failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.NewLogger(ctx, logger.FromConfig(cfg, os.Stderr))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		if err := log.Shutdown(context.Background()); err != nil {
			slog.Warn("logger shutdown failed", "error", err)
		}
	}()
	slog.SetDefault(log.Slogger)

	switch args[0] {
	case "describe":
		return describe(cfg, args[1:], out)
	case "validate":
		return validate(cfg, args[1:], out)
	case "sinks":
		if len(args) < 2 || args[1] != "tail" {
			return errors.New("usage: typedflow sinks tail [flags]")
		}
		return tail(ctx, cfg, log.Slogger, args[2:], out)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func loadNamespace(cfg *config.Config, path string) (*workflow.Namespace, error) {
	if path == "" {
		path = cfg.NamespaceFile
	}
	if path == "" {
		return nil, errors.New("no namespace file: pass -namespace or set NAMESPACE_FILE")
	}
	return config.LoadNamespace(path)
}

type namespaceView struct {
	Name             string                             `json:"name"`
	TaskQueues       []string                           `json:"task_queues"`
	Activities       []string                           `json:"activities"`
	SearchAttributes map[string]api.SearchAttributeType `json:"search_attributes,omitempty"`
	Sinks            map[string][]string                `json:"sinks,omitempty"`
	Workflows        []workflowView                     `json:"workflows"`
}

type workflowView struct {
	Name    string                   `json:"name"`
	Signals []string                 `json:"signals,omitempty"`
	Queries []string                 `json:"queries,omitempty"`
	Schema  *workflow.ArgumentSchema `json:"schema,omitempty"`
}

func describe(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	path := fs.String("namespace", "", "Namespace YAML file (defaults to NAMESPACE_FILE)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ns, err := loadNamespace(cfg, *path)
	if err != nil {
		return err
	}
	view := namespaceView{
		Name:             ns.Name,
		TaskQueues:       []string{ns.DefaultTaskQueue()},
		Activities:       ns.Activities.Names(),
		SearchAttributes: ns.SearchAttributes,
		Sinks:            ns.Sinks,
	}
	if len(ns.TaskQueues) > 0 {
		view.TaskQueues = ns.TaskQueues
	}
	names := make([]string, 0, len(ns.Workflows))
	for name := range ns.Workflows {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		decl := ns.Workflows[name]
		view.Workflows = append(view.Workflows, workflowView{
			Name:    decl.Name,
			Signals: decl.Signals,
			Queries: decl.Queries,
			Schema:  decl.Schema,
		})
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func validate(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	path := fs.String("namespace", "", "Namespace YAML file (defaults to NAMESPACE_FILE)")
	workflowType := fs.String("workflow", "", "Declared workflow type")
	rawArgs := fs.String("args", "[]", "Workflow arguments as a JSON array")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *workflowType == "" {
		return errors.New("-workflow is required")
	}

	ns, err := loadNamespace(cfg, *path)
	if err != nil {
		return err
	}
	decl, ok := ns.Workflow(*workflowType)
	if !ok {
		return fmt.Errorf("%s: %w", *workflowType, workflow.ErrWorkflowNotDeclared)
	}

	var wfArgs []any
	if err := json.Unmarshal([]byte(*rawArgs), &wfArgs); err != nil {
		return fmt.Errorf("decode -args: %w", err)
	}
	if err := workflow.ValidateArgs(wfArgs, decl.Schema); err != nil {
		var vf *workflow.ValidationFailure
		if errors.As(err, &vf) {
			fmt.Fprintln(out, vf.Error())
		}
		return fmt.Errorf("workflow %s: arguments rejected", decl.Name)
	}
	if decl.Schema == nil {
		fmt.Fprintf(out, "%s declares no schema; arguments accepted\n", decl.Name)
		return nil
	}
	fmt.Fprintf(out, "%s: %d argument(s) valid\n", decl.Name, len(wfArgs))
	return nil
}

func tail(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sinks tail", flag.ContinueOnError)
	source := fs.String("source", "redis", "Where to read records from: 'redis' or 'nats'")
	after := fs.String("after", "", "Redis stream entry ID to start after")
	count := fs.Int64("count", 100, "Maximum records per Redis read")
	follow := fs.Bool("follow", false, "Keep polling the Redis stream for new records")
	interval := fs.Duration("interval", time.Second, "Redis polling interval with -follow")
	if err := fs.Parse(args); err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	switch *source {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		stream := sink.NewRedisStream(rdb, &sink.RedisOptions{Stream: cfg.SinkStream(), Logger: log})
		return tailRedis(ctx, stream, *after, *count, *follow, *interval, enc)
	case "nats":
		nc, err := sink.Connect(cfg, log)
		if err != nil {
			return err
		}
		defer nc.Close()
		return tailNATS(ctx, nc, cfg.SinkSubjectPrefix(), enc)
	default:
		return fmt.Errorf("unknown source %q", *source)
	}
}

func tailRedis(ctx context.Context, stream *sink.RedisStream, after string, count int64, follow bool, interval time.Duration, enc *json.Encoder) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		entries, err := stream.Read(ctx, after, count)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := enc.Encode(map[string]any{"id": e.ID, "subject": e.Subject, "record": e.Record}); err != nil {
				return err
			}
			after = e.ID
		}
		if !follow {
			return nil
		}
		if int64(len(entries)) == count {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func tailNATS(ctx context.Context, nc *nats.Conn, prefix string, enc *json.Encoder) error {
	if prefix == "" {
		prefix = api.SinkSubjectPrefix
	}
	msgs := make(chan *nats.Msg, 64)
	sub, err := nc.ChanSubscribe(prefix+".>", msgs)
	if err != nil {
		return fmt.Errorf("subscribe %s.>: %w", prefix, err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-msgs:
			r, err := sink.Decode(nil, msg.Data)
			if err != nil {
				slog.Warn("skipping undecodable sink record", "subject", msg.Subject, "error", err)
				continue
			}
			if err := enc.Encode(map[string]any{"subject": msg.Subject, "record": r}); err != nil {
				return err
			}
		}
	}
}
