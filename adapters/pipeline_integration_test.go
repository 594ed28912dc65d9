package adapters_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	"github.com/goliatone/go-ledger/adapters/gocommand"
	"github.com/goliatone/go-ledger/adapters/gojob"
	ledgercommand "github.com/goliatone/go-ledger/command"
	"github.com/goliatone/go-ledger/core"
)

func TestPipeline_QueuedIssueReachesService(t *testing.T) {
	ctx := context.Background()
	svc := newPipelineService(t)
	memQueue := &memoryQueue{}

	commandAdapter := gocommand.NewRegistryAdapter(command.NewRegistry())
	queueRegistry := jobqueuecommand.NewRegistry()
	if err := commandAdapter.AddQueueResolver(queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}
	subscriptions, err := gocommand.RegisterLedger(commandAdapter, svc)
	if err != nil {
		t.Fatalf("register ledger: %v", err)
	}
	defer subscriptions.Unsubscribe()
	if err := commandAdapter.Initialize(); err != nil {
		t.Fatalf("initialize command registry: %v", err)
	}
	if _, ok := queueRegistry.Get(ledgercommand.TypeIssue); !ok {
		t.Fatalf("expected issue command mirrored into go-job queue registry")
	}

	if err := gocommand.Dispatch(ctx, ledgercommand.CreateCollectionMessage{
		Caller:       core.SignedCaller("creator_1"),
		CollectionID: 1,
		Metadata:     core.CollectionMetadata{Name: "alpha"},
	}); err != nil {
		t.Fatalf("create collection: %v", err)
	}

	enqueuer := gojob.NewEnqueuerAdapter(memQueue)
	if err := enqueuer.EnqueueIssue(ctx, ledgercommand.IssueMessage{
		Caller: core.SignedCaller("minter_1"),
		Request: core.IssueRequest{
			BindIDs:       []core.BindID{"A"},
			CollectionIDs: []core.CollectionID{1},
			Counts:        []uint64{^uint64(0) - 1},
		},
	}, "idem_1"); err != nil {
		t.Fatalf("enqueue issue: %v", err)
	}

	worker := gojob.NewIssueWorker(memQueue, ledgercommand.NewIssueCommand(svc), gojob.RetryPolicy{MaxAttempts: 3}, gojob.NewLoggingHook(nil, nil))
	if err := worker.ProcessNext(ctx); err != nil {
		t.Fatalf("process issue: %v", err)
	}
	if memQueue.last == nil || !memQueue.last.acked {
		t.Fatalf("expected delivery to be acked")
	}

	total, err := svc.BindCount(ctx, "A", 1)
	if err != nil {
		t.Fatalf("bind count: %v", err)
	}
	if total != ^uint64(0)-1 {
		t.Fatalf("expected full range count to survive the queue, got %d", total)
	}
}

func TestPipeline_RejectedIssueIsDeadLettered(t *testing.T) {
	ctx := context.Background()
	svc := newPipelineService(t)
	memQueue := &memoryQueue{}

	if err := svc.CreateCollection(ctx, core.SignedCaller("creator_1"), 1, core.CollectionMetadata{Name: "alpha"}); err != nil {
		t.Fatalf("create collection: %v", err)
	}
	if err := svc.SetCollectionStatus(ctx, core.SignedCaller("creator_1"), 1, true); err != nil {
		t.Fatalf("lock collection: %v", err)
	}

	if err := gojob.NewEnqueuerAdapter(memQueue).EnqueueIssue(ctx, ledgercommand.IssueMessage{
		Caller: core.SignedCaller("minter_1"),
		Request: core.IssueRequest{
			BindIDs:       []core.BindID{"A"},
			CollectionIDs: []core.CollectionID{1},
			Counts:        []uint64{1},
		},
	}, "idem_locked"); err != nil {
		t.Fatalf("enqueue issue: %v", err)
	}

	worker := gojob.NewIssueWorker(memQueue, ledgercommand.NewIssueCommand(svc), gojob.RetryPolicy{MaxAttempts: 3}, nil)
	err := worker.ProcessNext(ctx)
	if !errors.Is(err, core.ErrCollectionLocked) {
		t.Fatalf("expected locked collection error, got %v", err)
	}
	if memQueue.last == nil || !memQueue.last.nackOpts.DeadLetter {
		t.Fatalf("expected locked batch to be dead-lettered, got %#v", memQueue.last)
	}

	total, err := svc.CollectionCount(ctx, 1)
	if err != nil {
		t.Fatalf("collection count: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected no count change, got %d", total)
	}
}

func newPipelineService(t *testing.T) *core.Service {
	t.Helper()
	svc, err := core.Setup(context.Background(), core.DefaultConfig(), core.Genesis{
		Administrators: []core.AdministratorEntry{
			{Identity: "creator_1", Role: core.RoleCreator},
			{Identity: "minter_1", Role: core.RoleMinter},
		},
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	return svc
}

// memoryQueue is a single-process FIFO satisfying both queue contracts.
type memoryQueue struct {
	pending []*job.ExecutionMessage
	last    *memoryDelivery
}

func (q *memoryQueue) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	q.pending = append(q.pending, msg)
	return nil
}

func (q *memoryQueue) Dequeue(context.Context) (queue.Delivery, error) {
	if len(q.pending) == 0 {
		return nil, errors.New("memory queue: empty")
	}
	msg := q.pending[0]
	q.pending = q.pending[1:]
	q.last = &memoryDelivery{msg: msg}
	return q.last, nil
}

type memoryDelivery struct {
	msg      *job.ExecutionMessage
	acked    bool
	nackOpts queue.NackOptions
}

func (d *memoryDelivery) Message() *job.ExecutionMessage {
	return d.msg
}

func (d *memoryDelivery) Ack(context.Context) error {
	d.acked = true
	return nil
}

func (d *memoryDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	d.nackOpts = opts
	return nil
}
