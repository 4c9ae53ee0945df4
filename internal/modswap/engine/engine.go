// Package engine relocates payload files between set directories and the
// root, which is what activating and deactivating a set means on disk.
//
// A swap is planned completely before any file moves. The plan is written to
// a journal, executed move by move, and undone in reverse order if a move
// fails. The new pointer is written before the journal is removed, so a
// journal left behind by an interrupted process always describes a swap whose
// pointer may be stale. Recover undoes it and writes the old pointer again.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/OpenGG/modswap/internal/logging"
	"github.com/OpenGG/modswap/internal/modswap/catalog"
	"github.com/OpenGG/modswap/internal/modswap/domain"
	"github.com/OpenGG/modswap/internal/modswap/inventory"
	"github.com/OpenGG/modswap/internal/modswap/journal"
	"github.com/OpenGG/modswap/internal/modswap/paths"
	"github.com/OpenGG/modswap/internal/modswap/storage"
	"github.com/OpenGG/modswap/internal/modswap/validator"
)

// Plan is the full, validated list of moves a swap performs.
type Plan struct {
	From   string
	To     string
	Result string
	Moves  []journal.Move
}

// PointerWriter persists the pointer a swap or a recovery ends on.
type PointerWriter interface {
	Save(pointer string) error
}

// Engine performs swaps against one root directory.
type Engine struct {
	pointer   PointerWriter
	storage   *storage.Storage
	paths     *paths.PathBuilder
	inventory *inventory.Inventory
	catalog   *catalog.Catalog
	journal   *journal.Journal
	validator *validator.Validator
	now       func() time.Time
	logger    *slog.Logger
}

// New creates an Engine from its collaborators. A nil pointer writer leaves
// persisting the pointer to the caller.
func New(
	storage *storage.Storage,
	paths *paths.PathBuilder,
	inventory *inventory.Inventory,
	catalog *catalog.Catalog,
	journal *journal.Journal,
	pointer PointerWriter,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		pointer:   pointer,
		storage:   storage,
		paths:     paths,
		inventory: inventory,
		catalog:   catalog,
		journal:   journal,
		validator: validator.New(),
		now:       time.Now,
		logger:    logger,
	}
}

// SetNow allows overriding the clock for testing.
func (e *Engine) SetNow(now func() time.Time) {
	if now == nil {
		e.now = time.Now
		return
	}
	e.now = now
}

// Swap parks the files of current (if any) and pulls the files of target,
// then saves and returns the new pointer. Selecting the active set again parks
// it and returns the empty pointer.
//
// On error the returned pointer is current. Moves already made by a failed
// swap, including one whose pointer could not be saved, are undone before Swap
// returns; if that is not possible the journal is kept and Swap returns an
// error wrapping the rollback failures.
func (e *Engine) Swap(current, target string) (string, error) {
	plan, err := e.Plan(current, target)
	if err != nil {
		return current, err
	}
	if err := e.execute(plan); err != nil {
		return current, err
	}
	e.logger.Info("swap complete",
		"from", plan.From,
		"to", plan.To,
		"active", plan.Result,
		"moves", len(plan.Moves))
	return plan.Result, nil
}

// Plan computes and validates the moves for swapping current to target
// without touching the filesystem.
func (e *Engine) Plan(current, target string) (Plan, error) {
	pending, err := e.journal.Pending()
	if err != nil {
		return Plan{}, err
	}
	if pending {
		return Plan{}, fmt.Errorf("%w: journal %s", domain.ErrRecoveryRequired, e.journal.Path())
	}

	if _, err := e.validator.ValidateName(target); err != nil {
		return Plan{}, fmt.Errorf("target %q: %w: %w", target, domain.ErrInvalidTarget, err)
	}
	known, err := e.catalog.Contains(target)
	if err != nil {
		return Plan{}, err
	}
	if !known {
		return Plan{}, fmt.Errorf("target %q: %w", target, domain.ErrInvalidTarget)
	}
	if current != "" {
		known, err := e.catalog.Contains(current)
		if err != nil {
			return Plan{}, err
		}
		if !known {
			return Plan{}, fmt.Errorf("active set %q no longer exists: %w", current, domain.ErrInvalidTarget)
		}
	}

	plan := Plan{From: current, To: target}
	vacated := make(map[string]struct{})

	if current != "" {
		loose, err := e.loosePayloads()
		if err != nil {
			return Plan{}, err
		}
		for _, name := range loose {
			src := e.paths.ActivePath(name)
			dst := e.paths.ParkedPath(current, name)
			if err := e.ensureFree(domain.PhasePark, dst); err != nil {
				return Plan{}, err
			}
			plan.Moves = append(plan.Moves, journal.Move{Phase: domain.PhasePark, Source: src, Destination: dst})
			vacated[name] = struct{}{}
		}
	}

	if current == target {
		plan.Result = ""
		return plan, nil
	}

	parked, err := e.inventory.ListPayloads(e.paths.SetDir(target))
	if err != nil {
		return Plan{}, err
	}
	for _, name := range parked {
		src := e.paths.ParkedPath(target, name)
		dst := e.paths.ActivePath(name)
		if e.paths.Reserved(name) {
			return Plan{}, domain.Conflict(domain.PhasePull, dst)
		}
		if _, ok := vacated[name]; !ok {
			if err := e.ensureFree(domain.PhasePull, dst); err != nil {
				return Plan{}, err
			}
		}
		plan.Moves = append(plan.Moves, journal.Move{Phase: domain.PhasePull, Source: src, Destination: dst})
	}
	plan.Result = target
	return plan, nil
}

// Recover undoes the moves of a swap that was interrupted or could not be
// rolled back, saves the pointer that was active before it and returns it.
// This holds whether the swap died before, during or after its moves. ok is
// false when there was nothing to recover.
func (e *Engine) Recover() (pointer string, ok bool, err error) {
	rec, ok, err := e.journal.Read()
	if err != nil || !ok {
		return "", false, err
	}
	e.logger.Warn("recovering interrupted swap",
		"from", rec.From,
		"to", rec.To,
		"started_at", rec.StartedAt,
		"moves", len(rec.Moves))

	var result *multierror.Error
	for i := len(rec.Moves) - 1; i >= 0; i-- {
		mv := rec.Moves[i]
		srcExists, err := e.storage.Exists(mv.Source)
		if err != nil {
			result = multierror.Append(result, domain.IOFailure(domain.PhaseRecover, mv.Source, err))
			continue
		}
		dstExists, err := e.storage.Exists(mv.Destination)
		if err != nil {
			result = multierror.Append(result, domain.IOFailure(domain.PhaseRecover, mv.Destination, err))
			continue
		}

		switch {
		case srcExists && !dstExists:
			// never moved, or already undone
		case srcExists && dstExists:
			result = multierror.Append(result, domain.Conflict(domain.PhaseRecover, mv.Source))
		case !srcExists && !dstExists:
			result = multierror.Append(result, domain.IOFailure(domain.PhaseRecover, mv.Destination, os.ErrNotExist))
		default:
			if err := e.storage.Move(mv.Destination, mv.Source); err != nil {
				result = multierror.Append(result, domain.IOFailure(domain.PhaseRecover, mv.Destination, err))
				continue
			}
			e.logger.Debug("move undone", "phase", mv.Phase, "path", mv.Source)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return "", false, err
	}
	// The journal stays until the old pointer is back on disk.
	if err := e.savePointer(rec.From); err != nil {
		return "", false, err
	}
	if err := e.journal.Commit(); err != nil {
		return "", false, err
	}
	e.logger.Info("recovery complete", "active", rec.From)
	return rec.From, true, nil
}

func (e *Engine) execute(plan Plan) error {
	if len(plan.Moves) == 0 {
		return e.savePointer(plan.Result)
	}

	e.logger.Debug("swap planned", "from", plan.From, "to", plan.To, "moves", len(plan.Moves))
	if err := e.journal.Begin(journal.Record{
		From:      plan.From,
		To:        plan.To,
		Result:    plan.Result,
		StartedAt: e.now().UTC(),
		Moves:     plan.Moves,
	}); err != nil {
		return err
	}

	for i, mv := range plan.Moves {
		if err := e.storage.Move(mv.Source, mv.Destination); err != nil {
			cause := moveError(mv, err)
			e.logger.Error("move failed, rolling back",
				"phase", mv.Phase,
				"path", mv.Source,
				"done", i,
				"error", err)

			if rbErr := e.rollback(plan.Moves[:i]); rbErr != nil {
				e.logger.Error("rollback incomplete, journal kept",
					"journal", e.journal.Path(),
					"error", rbErr)
				return multierror.Append(cause, rbErr)
			}
			if err := e.journal.Commit(); err != nil {
				return multierror.Append(cause, err)
			}
			return cause
		}
		e.logger.Debug("moved", "phase", mv.Phase, "from", mv.Source, "to", mv.Destination)
	}

	if err := e.savePointer(plan.Result); err != nil {
		e.logger.Error("pointer not saved, rolling back", "active", plan.Result, "error", err)
		if rbErr := e.rollback(plan.Moves); rbErr != nil {
			e.logger.Error("rollback incomplete, journal kept",
				"journal", e.journal.Path(),
				"error", rbErr)
			return multierror.Append(err, rbErr)
		}
		if cErr := e.journal.Commit(); cErr != nil {
			return multierror.Append(err, cErr)
		}
		return err
	}
	return e.journal.Commit()
}

func (e *Engine) savePointer(pointer string) error {
	if e.pointer == nil {
		return nil
	}
	return e.pointer.Save(pointer)
}

// rollback undoes done in reverse order, attempting every move even after a
// failure.
func (e *Engine) rollback(done []journal.Move) error {
	var result *multierror.Error
	for i := len(done) - 1; i >= 0; i-- {
		mv := done[i]
		if err := e.storage.Move(mv.Destination, mv.Source); err != nil {
			result = multierror.Append(result, domain.IOFailure(domain.PhaseRollback, mv.Destination, err))
		}
	}
	return result.ErrorOrNil()
}

func (e *Engine) ensureFree(phase domain.Phase, path string) error {
	exists, err := e.storage.Exists(path)
	if err != nil {
		return domain.IOFailure(domain.PhasePlan, path, err)
	}
	if exists {
		return domain.Conflict(phase, path)
	}
	return nil
}

func (e *Engine) loosePayloads() ([]string, error) {
	names, err := e.inventory.ListPayloads(e.paths.Root())
	if err != nil {
		return nil, err
	}
	loose := names[:0]
	for _, name := range names {
		if !e.paths.Reserved(name) {
			loose = append(loose, name)
		}
	}
	return loose, nil
}

// LoosePayloads lists the payload files currently active in the root.
func (e *Engine) LoosePayloads() ([]string, error) {
	return e.loosePayloads()
}

func moveError(mv journal.Move, err error) error {
	if errors.Is(err, os.ErrExist) {
		return &domain.RelocationError{Phase: mv.Phase, Path: mv.Destination, Kind: domain.ErrRelocationConflict, Err: err}
	}
	return domain.IOFailure(mv.Phase, mv.Source, err)
}
