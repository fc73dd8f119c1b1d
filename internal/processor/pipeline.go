package processor

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"fraudstream/internal/domain"
	"fraudstream/pkg/validator"
)

// Observer receives pipeline events as they happen. The metrics collector
// implements it; tests usually pass nil.
type Observer interface {
	RecordIngested()
	RecordMalformed()
	RecordAlert(fraudType string, riskScore float64)
}

// Pipeline is the fan-out/union router. Every raw record is validated
// once, then the resulting transaction is handed to one goroutine per
// registry entry; alerts from all branches merge into a single outcome
// channel. The router keeps no state between transactions.
//
// Ordering: within one branch, alerts follow source order (one goroutine
// per branch, FIFO channels). Across branches the merged output may
// interleave in any order and consumers must not rely on it.
type Pipeline struct {
	registry  *Registry
	validator *validator.TransactionValidator
	synth     *Synthesizer
	buffer    int
	obs       Observer
	logger    *slog.Logger
}

func NewPipeline(registry *Registry, synth *Synthesizer, buffer int, obs Observer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		registry:  registry,
		validator: validator.NewTransactionValidator(),
		synth:     synth,
		buffer:    buffer,
		obs:       obs,
		logger:    logger,
	}
}

// fanoutRecord carries one validated transaction to the branches. A
// branch must not act on it before done is closed; committed reports
// whether every branch received it.
type fanoutRecord struct {
	tx        domain.Transaction
	committed bool
	done      chan struct{}
}

// Run consumes raw records until source closes or ctx is canceled. The
// returned channel carries every alert from every branch plus one error
// record per malformed input, and closes once all branches have drained.
func (p *Pipeline) Run(ctx context.Context, source <-chan []byte) <-chan domain.Outcome {
	out := make(chan domain.Outcome, p.buffer)
	entries := p.registry.Entries()

	branches := make([]chan *fanoutRecord, len(entries))
	var wg sync.WaitGroup
	for i, entry := range entries {
		branches[i] = make(chan *fanoutRecord, p.buffer)
		wg.Add(1)
		go p.runBranch(ctx, entry, branches[i], out, &wg)
	}

	go p.broadcast(ctx, source, branches, out)

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// broadcast validates each raw record and hands well-formed transactions
// to every branch in registry order. Delivery is all-or-none: a record
// interrupted by cancellation is closed uncommitted and the branches
// that already hold it discard it.
func (p *Pipeline) broadcast(ctx context.Context, source <-chan []byte, branches []chan *fanoutRecord, out chan<- domain.Outcome) {
	defer func() {
		for _, branch := range branches {
			close(branch)
		}
	}()

	for {
		select {
		case raw, ok := <-source:
			if !ok {
				return
			}
			if p.obs != nil {
				p.obs.RecordIngested()
			}

			tx, err := p.validator.Parse(raw)
			if err != nil {
				p.emitError(ctx, err, out)
				continue
			}

			if !p.handOut(ctx, tx, branches) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// handOut delivers tx to every branch and then marks the record
// committed. Branches block on done before evaluating, so no branch can
// emit for a transaction another branch never received.
func (p *Pipeline) handOut(ctx context.Context, tx domain.Transaction, branches []chan *fanoutRecord) bool {
	rec := &fanoutRecord{tx: tx, done: make(chan struct{})}

	complete := true
	for _, branch := range branches {
		select {
		case branch <- rec:
		case <-ctx.Done():
			complete = false
		}
		if !complete {
			break
		}
	}

	rec.committed = complete
	close(rec.done)
	return complete
}

func (p *Pipeline) emitError(ctx context.Context, err error, out chan<- domain.Outcome) {
	if p.obs != nil {
		p.obs.RecordMalformed()
	}

	var malformed *validator.MalformedRecordError
	if !errors.As(err, &malformed) {
		// Parse only returns *MalformedRecordError; anything else is a bug
		// worth logging, not worth killing the stream for.
		p.logger.Error("unexpected validation error", slog.String("error", err.Error()))
		return
	}

	p.logger.Warn("rejecting malformed record", slog.String("error", malformed.Error()))
	select {
	case out <- malformed.Record():
	case <-ctx.Done():
	}
}

func (p *Pipeline) runBranch(ctx context.Context, entry RegistryEntry, in <-chan *fanoutRecord, out chan<- domain.Outcome, wg *sync.WaitGroup) {
	defer wg.Done()

	for rec := range in {
		<-rec.done
		if !rec.committed {
			continue
		}

		tx := rec.tx
		if !entry.Rule.Evaluate(tx) {
			continue
		}

		alert := p.synth.Synthesize(tx, entry.Rule.FraudType(), entry.BaseRiskScore)
		if p.obs != nil {
			p.obs.RecordAlert(string(alert.FraudType), alert.RiskScore)
		}

		select {
		case out <- alert:
		case <-ctx.Done():
			return
		}
	}
}
