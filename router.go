package distribuidor

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/BrunoSalvador97/zaia-distribuidor/internal/logging"
	"github.com/BrunoSalvador97/zaia-distribuidor/internal/metrics"
	"github.com/BrunoSalvador97/zaia-distribuidor/types"
	"github.com/google/uuid"
)

// Router is the assignment transaction orchestrator and the main entry point
// of the library.
//
// Router combines contact resolution, owner selection, and the atomic state
// mutation that commits an assignment into the single operation Assign. It
// guarantees:
//
//   - Stickiness: a returning contact is always routed to its original owner.
//   - Uniqueness: at most one lead ever exists per contact, even under
//     concurrent deliveries of the same event.
//   - Fair rotation: with the round-robin policy, each active owner receives
//     exactly one of any k consecutive new-contact assignments (k = roster
//     size), in roster order.
//
// Thread safety: all methods are safe for concurrent use. The router keeps
// no mutable state of its own; all shared state lives in the Store, and
// concurrent invocations serialize through the store's unique-insert and
// cursor compare-and-swap primitives.
//
// Benign races (a concurrent assignment of the same contact, a concurrently
// advanced cursor) are absorbed internally with a bounded retry budget; they
// surface to the caller only when the budget is exhausted.
type Router struct {
	cfg    Config
	store  Store
	policy AssignmentPolicy

	dispatcher Enqueuer
	metrics    MetricsCollector
	logger     Logger
}

// NewRouter creates a new Router instance with the provided configuration.
//
// Returns a concrete *Router struct following the "accept interfaces, return
// structs" principle. Consumers can define their own interfaces for testing.
//
// Parameters:
//   - cfg: Runtime configuration (zero fields are filled with defaults)
//   - store: Durable state store (e.g. natskv.Open result)
//   - pol: Owner-selection policy (recommended: policy.NewRoundRobin())
//   - opts: Optional configuration (logger, metrics, dispatch queue)
//
// Returns:
//   - *Router: Initialized router instance
//   - error: Validation error if configuration or wiring is invalid
//
// Example:
//
//	cfg := distribuidor.DefaultConfig()
//	router, err := distribuidor.NewRouter(&cfg, store, policy.NewRoundRobin(),
//	    distribuidor.WithLogger(logger))
func NewRouter(cfg *Config, store Store, pol AssignmentPolicy, opts ...Option) (*Router, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	if pol == nil {
		return nil, ErrPolicyRequired
	}

	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := routerOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = logging.NewNop()
	}
	if options.metrics == nil {
		options.metrics = metrics.NewNop()
	}

	return &Router{
		cfg:        *cfg,
		store:      store,
		policy:     pol,
		dispatcher: options.dispatcher,
		metrics:    options.metrics,
		logger:     options.logger,
	}, nil
}

// Assign routes a contact to exactly one owner.
//
// For a returning contact (one with a committed lead) the bound owner is
// returned unchanged; this path performs no state mutation and is safely
// retryable. For a new contact the router reserves the contact, selects an
// owner via the configured policy, advances the rotation cursor under
// compare-and-swap, and commits the lead. Losing any of the races restarts
// the attempt, up to MaxAssignAttempts.
//
// Parameters:
//   - ctx: Context for cancellation; each attempt is additionally bounded
//     by OperationTimeout
//   - contactID: Normalized, non-empty contact identifier (normalization
//     happens upstream)
//   - attrs: Free-form lead attributes, recorded on the new-lead path
//
// Returns:
//   - *AssignmentResult: The owner the contact is bound to, with IsNew
//     reporting whether this call created the binding
//   - error: ErrInvalidInput, ErrNoActiveOwners, ErrStoreUnavailable, or
//     ErrAssignmentFailed (retry budget exhausted / non-transient fault)
func (r *Router) Assign(ctx context.Context, contactID string, attrs map[string]string) (*AssignmentResult, error) {
	return r.assign(ctx, contactID, attrs, false)
}

// AssignImported routes a bulk-imported contact.
//
// Identical to Assign except the created lead carries the Imported marker,
// so reports can distinguish imported contacts from inbound webhook leads.
func (r *Router) AssignImported(ctx context.Context, contactID string, attrs map[string]string) (*AssignmentResult, error) {
	return r.assign(ctx, contactID, attrs, true)
}

func (r *Router) assign(ctx context.Context, contactID string, attrs map[string]string, imported bool) (*AssignmentResult, error) {
	start := time.Now()

	if strings.TrimSpace(contactID) == "" {
		r.metrics.RecordAssignmentError("invalid_input")

		return nil, fmt.Errorf("%w: empty contact id", ErrInvalidInput)
	}

	// The caller may reuse the map; the lead must not alias it.
	attrs = maps.Clone(attrs)

	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAssignAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				r.metrics.RecordAssignmentError("store_unavailable")

				return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, ctx.Err())
			case <-time.After(r.cfg.RetryBackoff):
			}
		}

		result, lead, err := r.attempt(ctx, contactID, attrs, imported)
		if err == nil {
			r.metrics.RecordAssignment(result.IsNew, time.Since(start))
			r.logger.Info("assignment completed",
				"contact_id", contactID,
				"owner_id", result.OwnerID,
				"is_new", result.IsNew,
				"attempt", attempt,
			)
			r.handOff(result, lead)

			return result, nil
		}

		switch {
		case errors.Is(err, types.ErrDuplicateContact), errors.Is(err, types.ErrContactPending):
			// Benign same-contact race: re-resolving on the next attempt
			// finds (or waits out) the winner's lead.
			r.metrics.RecordRetry(retryKind(err))
			r.logger.Debug("assignment race, retrying", "contact_id", contactID, "attempt", attempt, "cause", err)
			lastErr = err

		case errors.Is(err, types.ErrCursorConflict):
			// Counted where observed, inside the selection loop.
			r.logger.Debug("cursor contention, retrying", "contact_id", contactID, "attempt", attempt)
			lastErr = err

		case errors.Is(err, ErrNoActiveOwners):
			r.metrics.RecordAssignmentError("no_active_owners")
			r.logger.Error("no active owners for new lead", "contact_id", contactID)

			return nil, err

		case errors.Is(err, ErrStoreUnavailable):
			r.metrics.RecordAssignmentError("store_unavailable")
			r.logger.Error("store unavailable during assignment", "contact_id", contactID, "error", err)

			return nil, err

		default:
			r.metrics.RecordAssignmentError("assignment_failed")
			r.logger.Error("assignment failed", "contact_id", contactID, "error", err)

			return nil, fmt.Errorf("%w: %v", ErrAssignmentFailed, err)
		}
	}

	r.metrics.RecordAssignmentError("retries_exhausted")
	r.logger.Error("assignment retry budget exhausted",
		"contact_id", contactID,
		"attempts", r.cfg.MaxAssignAttempts,
		"last_error", lastErr,
	)

	return nil, fmt.Errorf("%w: retry budget exhausted after %d attempts: %v",
		ErrAssignmentFailed, r.cfg.MaxAssignAttempts, lastErr)
}

// attempt runs one full resolve-or-commit pass for the contact.
func (r *Router) attempt(ctx context.Context, contactID string, attrs map[string]string, imported bool) (*AssignmentResult, *types.Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.OperationTimeout)
	defer cancel()

	asn, err := r.store.Resolve(ctx, contactID)
	if err == nil {
		// Sticky return path: no mutation, idempotent.
		return types.ResultFor(false, asn.Lead, asn.Owner), asn.Lead, nil
	}
	if !errors.Is(err, types.ErrLeadNotFound) {
		return nil, nil, err
	}

	// New contact: claim it before touching the cursor, so the cursor
	// advances exactly once per contact no matter how many deliveries of
	// the same event race here.
	reservation, err := r.store.Reserve(ctx, contactID)
	if err != nil {
		return nil, nil, err
	}

	result, lead, err := r.commitNew(ctx, contactID, attrs, imported, reservation)
	if err != nil {
		if abortErr := r.store.Abort(ctx, reservation); abortErr != nil {
			r.logger.Warn("failed to release lead reservation",
				"contact_id", contactID, "error", abortErr)
		}

		return nil, nil, err
	}

	return result, lead, nil
}

// commitNew selects an owner and commits the reserved lead. The cursor
// compare-and-swap is the serialization point: a conflict means another
// assignment interleaved, and the owner must be re-selected from a fresh
// read, never from the stale observation.
func (r *Router) commitNew(ctx context.Context, contactID string, attrs map[string]string, imported bool, reservation *Reservation) (*AssignmentResult, *types.Lead, error) {
	for selection := 1; selection <= r.cfg.MaxAssignAttempts; selection++ {
		roster, err := r.store.ActiveOwners(ctx)
		if err != nil {
			return nil, nil, err
		}
		if len(roster) == 0 {
			return nil, nil, ErrNoActiveOwners
		}

		cursor, err := r.store.Cursor(ctx)
		if err != nil {
			return nil, nil, err
		}

		chosen, next, err := r.policy.SelectOwner(ctx, contactID, roster, cursor.Index)
		if err != nil {
			return nil, nil, err
		}

		if err := r.store.AdvanceCursor(ctx, cursor, next); err != nil {
			if errors.Is(err, types.ErrCursorConflict) {
				r.metrics.RecordRetry("cursor_conflict")
				r.logger.Debug("cursor advanced concurrently, re-selecting",
					"contact_id", contactID, "selection", selection)

				continue
			}

			return nil, nil, err
		}

		lead := &types.Lead{
			ID:         uuid.NewString(),
			ContactID:  contactID,
			OwnerID:    chosen.ID,
			Attributes: attrs,
			Imported:   imported,
			CreatedAt:  time.Now().UTC(),
		}
		if err := r.store.Commit(ctx, reservation, lead); err != nil {
			return nil, nil, err
		}

		r.logger.Debug("new lead committed",
			"contact_id", contactID,
			"lead_id", lead.ID,
			"owner_id", chosen.ID,
			"cursor_next", next,
		)

		return types.ResultFor(true, lead, &chosen), lead, nil
	}

	return nil, nil, types.ErrCursorConflict
}

// handOff enqueues the committed assignment for best-effort notification.
// Failures are logged and never affect the assignment.
func (r *Router) handOff(result *AssignmentResult, lead *types.Lead) {
	if r.dispatcher == nil {
		return
	}

	if err := r.dispatcher.Enqueue(result, lead); err != nil {
		r.logger.Warn("notification enqueue failed",
			"lead_id", result.LeadID, "owner_id", result.OwnerID, "error", err)
	}
}

// retryKind maps a benign race error to its metrics label.
func retryKind(err error) string {
	switch {
	case errors.Is(err, types.ErrDuplicateContact):
		return "duplicate_contact"
	case errors.Is(err, types.ErrContactPending):
		return "contact_pending"
	default:
		return "cursor_conflict"
	}
}
