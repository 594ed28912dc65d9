package gojob

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	ledgercommand "github.com/goliatone/go-ledger/command"
	"github.com/goliatone/go-ledger/core"
	glog "github.com/goliatone/go-logger/glog"

	gocmd "github.com/goliatone/go-command"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
)

const (
	JobIDIssue      = "ledger.issuance.issue"
	ScriptPathIssue = "ledger.issuance.issue"

	DedupPolicyDrop = "drop"
)

const (
	paramCaller        = "caller"
	paramRoot          = "root"
	paramBindIDs       = "bind_ids"
	paramCollectionIDs = "collection_ids"
	paramCounts        = "counts"
)

// RetryPolicy defines queue retry bounds to avoid unbounded retry loops.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	RetryDelay      time.Duration
	DeadLetterOnMax bool
}

// NormalizeAttempt enforces bounded retry behavior for a nack operation.
func (p RetryPolicy) NormalizeAttempt(opts queue.NackOptions, attempt int) queue.NackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		if p.DeadLetterOnMax || out.DeadLetter {
			out.DeadLetter = true
		}
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

// ToExecutionMessage maps an issuance batch to a go-job message. Ids and
// counts travel as decimal strings so queue backends that decode JSON
// numbers as float64 keep the full uint64 range.
func ToExecutionMessage(msg ledgercommand.IssueMessage, idempotencyKey string) (*job.ExecutionMessage, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	req := msg.Request
	collectionIDs := make([]string, 0, len(req.CollectionIDs))
	for _, id := range req.CollectionIDs {
		collectionIDs = append(collectionIDs, strconv.FormatUint(uint64(id), 10))
	}
	counts := make([]string, 0, len(req.Counts))
	for _, count := range req.Counts {
		counts = append(counts, strconv.FormatUint(count, 10))
	}
	bindIDs := make([]string, 0, len(req.BindIDs))
	for _, bindID := range req.BindIDs {
		bindIDs = append(bindIDs, string(bindID))
	}
	return &job.ExecutionMessage{
		JobID:      JobIDIssue,
		ScriptPath: ScriptPathIssue,
		Parameters: map[string]any{
			paramCaller:        string(msg.Caller.Identity),
			paramRoot:          msg.Caller.Root,
			paramBindIDs:       bindIDs,
			paramCollectionIDs: collectionIDs,
			paramCounts:        counts,
		},
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy(DedupPolicyDrop),
	}, nil
}

// FromExecutionMessage rebuilds the issuance batch carried by msg.
func FromExecutionMessage(msg *job.ExecutionMessage) (ledgercommand.IssueMessage, error) {
	if msg == nil {
		return ledgercommand.IssueMessage{}, fmt.Errorf("gojob: execution message is required")
	}
	if strings.TrimSpace(msg.JobID) != JobIDIssue {
		return ledgercommand.IssueMessage{}, fmt.Errorf("gojob: unsupported job id %q", msg.JobID)
	}
	params := msg.Parameters
	identity, _ := params[paramCaller].(string)
	root, _ := params[paramRoot].(bool)

	bindIDs, err := stringList(params[paramBindIDs])
	if err != nil {
		return ledgercommand.IssueMessage{}, fmt.Errorf("gojob: %s: %w", paramBindIDs, err)
	}
	rawCollectionIDs, err := stringList(params[paramCollectionIDs])
	if err != nil {
		return ledgercommand.IssueMessage{}, fmt.Errorf("gojob: %s: %w", paramCollectionIDs, err)
	}
	rawCounts, err := stringList(params[paramCounts])
	if err != nil {
		return ledgercommand.IssueMessage{}, fmt.Errorf("gojob: %s: %w", paramCounts, err)
	}

	req := core.IssueRequest{
		BindIDs:       make([]core.BindID, 0, len(bindIDs)),
		CollectionIDs: make([]core.CollectionID, 0, len(rawCollectionIDs)),
		Counts:        make([]uint64, 0, len(rawCounts)),
	}
	for _, bindID := range bindIDs {
		req.BindIDs = append(req.BindIDs, core.BindID(bindID))
	}
	for _, raw := range rawCollectionIDs {
		id, parseErr := strconv.ParseUint(raw, 10, 64)
		if parseErr != nil {
			return ledgercommand.IssueMessage{}, fmt.Errorf("gojob: collection id %q: %w", raw, parseErr)
		}
		req.CollectionIDs = append(req.CollectionIDs, core.CollectionID(id))
	}
	for _, raw := range rawCounts {
		count, parseErr := strconv.ParseUint(raw, 10, 64)
		if parseErr != nil {
			return ledgercommand.IssueMessage{}, fmt.Errorf("gojob: count %q: %w", raw, parseErr)
		}
		req.Counts = append(req.Counts, count)
	}
	return ledgercommand.IssueMessage{
		Caller:  core.Caller{Identity: core.Identity(identity), Root: root},
		Request: req,
	}, nil
}

func stringList(value any) ([]string, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), typed...), nil
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			switch v := item.(type) {
			case string:
				out = append(out, v)
			case fmt.Stringer:
				out = append(out, v.String())
			default:
				return nil, fmt.Errorf("unsupported element type %T", item)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported list type %T", value)
	}
}

type EnqueuerAdapter struct {
	enqueuer queue.Enqueuer
}

func NewEnqueuerAdapter(enqueuer queue.Enqueuer) *EnqueuerAdapter {
	return &EnqueuerAdapter{enqueuer: enqueuer}
}

// EnqueueIssue queues one issuance batch. Batches with the same idempotency
// key are dropped by backends that deduplicate.
func (a *EnqueuerAdapter) EnqueueIssue(ctx context.Context, msg ledgercommand.IssueMessage, idempotencyKey string) error {
	if a == nil || a.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	execution, err := ToExecutionMessage(msg, idempotencyKey)
	if err != nil {
		return err
	}
	return a.enqueuer.Enqueue(ctx, execution)
}

// IssueWorker drains queued issuance batches into the ledger. Malformed jobs
// and ledger rejections are dead-lettered; other failures are retried under
// policy.
type IssueWorker struct {
	dequeuer queue.Dequeuer
	command  gocmd.Commander[ledgercommand.IssueMessage]
	policy   RetryPolicy
	hook     worker.Hook

	mu       sync.Mutex
	attempts map[string]int
	now      func() time.Time
}

func NewIssueWorker(
	dequeuer queue.Dequeuer,
	cmd gocmd.Commander[ledgercommand.IssueMessage],
	policy RetryPolicy,
	hook worker.Hook,
) *IssueWorker {
	return &IssueWorker{
		dequeuer: dequeuer,
		command:  cmd,
		policy:   policy,
		hook:     hook,
		attempts: map[string]int{},
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// ProcessNext dequeues and executes one batch. The returned error is the
// execution failure after the delivery was acked or nacked.
func (w *IssueWorker) ProcessNext(ctx context.Context) error {
	if w == nil || w.dequeuer == nil || w.command == nil {
		return fmt.Errorf("gojob: issue worker is not configured")
	}
	delivery, err := w.dequeuer.Dequeue(ctx)
	if err != nil {
		return err
	}
	if delivery == nil {
		return fmt.Errorf("gojob: dequeued nil delivery")
	}
	execution := delivery.Message()
	key := attemptKey(execution)
	attempt := w.nextAttempt(key)
	event := worker.Event{
		Message:   execution,
		Delivery:  delivery,
		Attempt:   attempt,
		StartedAt: w.now(),
	}
	w.onStart(ctx, event)

	msg, err := FromExecutionMessage(execution)
	deadLetter := err != nil
	if err == nil {
		err = w.command.Execute(ctx, msg)
		deadLetter = isLedgerRejection(err)
	}
	event.Duration = w.now().Sub(event.StartedAt)
	if err == nil {
		w.resetAttempts(key)
		w.onSuccess(ctx, event)
		return delivery.Ack(ctx)
	}

	event.Err = err
	opts := queue.NackOptions{Reason: err.Error()}
	if deadLetter {
		opts.DeadLetter = true
	} else {
		opts.Requeue = true
		opts.Delay = w.policy.RetryDelay
	}
	opts = w.policy.NormalizeAttempt(opts, attempt)
	if opts.Requeue {
		event.Delay = opts.Delay
		w.onRetry(ctx, event)
	} else {
		w.resetAttempts(key)
		w.onFailure(ctx, event)
	}
	if nackErr := delivery.Nack(ctx, opts); nackErr != nil {
		return nackErr
	}
	return err
}

// isLedgerRejection reports whether err is a deterministic ledger refusal
// that would fail the same way on retry.
func isLedgerRejection(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.Category != goerrors.CategoryInternal
}

func attemptKey(msg *job.ExecutionMessage) string {
	if msg == nil {
		return ""
	}
	if key := strings.TrimSpace(msg.IdempotencyKey); key != "" {
		return key
	}
	return fmt.Sprintf("%v", msg.Parameters)
}

func (w *IssueWorker) nextAttempt(key string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts[key]++
	return w.attempts[key]
}

func (w *IssueWorker) resetAttempts(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.attempts, key)
}

func (w *IssueWorker) onStart(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnStart(ctx, event)
	}
}

func (w *IssueWorker) onSuccess(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnSuccess(ctx, event)
	}
}

func (w *IssueWorker) onFailure(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnFailure(ctx, event)
	}
}

func (w *IssueWorker) onRetry(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnRetry(ctx, event)
	}
}

// LoggingHook writes worker lifecycle events to a glog logger.
type LoggingHook struct {
	logger glog.Logger
}

func NewLoggingHook(provider glog.LoggerProvider, logger glog.Logger) *LoggingHook {
	_, resolved := glog.Resolve("ledger.worker", provider, logger)
	return &LoggingHook{logger: glog.Ensure(resolved)}
}

func (h *LoggingHook) OnStart(_ context.Context, event worker.Event) {
	h.log("debug", "issuance job started", event)
}

func (h *LoggingHook) OnSuccess(_ context.Context, event worker.Event) {
	h.log("info", "issuance job succeeded", event)
}

func (h *LoggingHook) OnFailure(_ context.Context, event worker.Event) {
	h.log("error", "issuance job failed", event)
}

func (h *LoggingHook) OnRetry(_ context.Context, event worker.Event) {
	h.log("warn", "issuance job retry scheduled", event)
}

func (h *LoggingHook) log(level string, message string, event worker.Event) {
	if h == nil || h.logger == nil {
		return
	}
	args := []any{
		"attempt", event.Attempt,
		"duration_ms", event.Duration.Milliseconds(),
	}
	if event.Message != nil {
		args = append(args, "job_id", event.Message.JobID, "idempotency_key", event.Message.IdempotencyKey)
	}
	if event.Delay > 0 {
		args = append(args, "delay_ms", event.Delay.Milliseconds())
	}
	if event.Err != nil {
		args = append(args, "error", event.Err.Error())
	}
	switch level {
	case "debug":
		h.logger.Debug(message, args...)
	case "warn":
		h.logger.Warn(message, args...)
	case "error":
		h.logger.Error(message, args...)
	default:
		h.logger.Info(message, args...)
	}
}

var _ worker.Hook = (*LoggingHook)(nil)
