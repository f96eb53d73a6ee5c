// internal/core/services/execute.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
)

// op is one planned storage call plus the records it depends on. A record
// whose dependency failed or was skipped is marked SKIPPED and never
// attempted: its required parent identifier never materialized.
type op struct {
	rec  domain.Record
	deps []domain.Record
}

// phase is one barrier group of sibling operations. Operations within a
// phase run concurrently with no ordering between them; phases themselves
// are strictly ordered.
type phase struct {
	name string
	ops  []op
}

func (p *phase) add(rec domain.Record, deps ...domain.Record) {
	p.ops = append(p.ops, op{rec: rec, deps: deps})
}

func (p *phase) empty() bool { return len(p.ops) == 0 }

// executor runs planned phases against storage, aggregating per-record
// outcomes. Record-scope failures are absorbed; a batch-scope failure
// aborts subsequent phases while already-completed phases stand.
type executor struct {
	storage ports.StorageClient
	logger  *slog.Logger
	outcome *domain.UpdateOutcome
}

func (e *executor) run(ctx context.Context, phases []phase) error {
	for _, ph := range phases {
		if ph.empty() {
			continue
		}
		g, gctx := errgroup.WithContext(ctx)
		for _, o := range ph.ops {
			g.Go(func() error {
				return e.apply(gctx, o)
			})
		}
		if err := g.Wait(); err != nil {
			e.outcome.MarkFailed()
			e.logger.ErrorContext(ctx, "execution phase failed",
				slog.String("phase", ph.name),
				slog.String("error", err.Error()))
			return fmt.Errorf("phase %s: %w", ph.name, err)
		}
	}
	return nil
}

// apply issues one storage call and settles the record's outcome. A
// returned error is batch scope and aborts the phase; record-scope errors
// settle the record as FAILED and return nil so siblings proceed.
func (e *executor) apply(ctx context.Context, o op) error {
	rec := o.rec
	txn := rec.Transaction()

	for _, dep := range o.deps {
		if dep.Outcome() == domain.OutcomeFailed || dep.Outcome() == domain.OutcomeSkipped {
			rec.SetOutcome(domain.OutcomeSkipped)
			e.outcome.Count(rec.Kind(), txn, domain.OutcomeSkipped)
			return nil
		}
	}

	var err error
	switch txn {
	case domain.TransactionCreate:
		_, err = e.storage.Create(ctx, rec.Kind(), rec.Payload())
	case domain.TransactionUpdate:
		err = e.storage.Replace(ctx, rec.Kind(), rec.ID(), rec.Payload())
	case domain.TransactionDelete:
		err = e.storage.Delete(ctx, rec.Kind(), rec.ID())
	default:
		return nil
	}

	if err != nil {
		rec.Fail(err)
		e.outcome.Count(rec.Kind(), txn, domain.OutcomeFailed)
		e.outcome.AddError(domain.RecordError{
			Kind:        rec.Kind(),
			Transaction: txn,
			Message:     err.Error(),
			Record:      rec.Payload(),
		})
		if ports.IsBatchScope(err) {
			return err
		}
		return nil
	}

	rec.SetOutcome(domain.OutcomeCompleted)
	e.outcome.Count(rec.Kind(), txn, domain.OutcomeCompleted)
	return nil
}
