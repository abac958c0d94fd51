package importer

import (
	"context"
	"fmt"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
)

// ContactSource lists contacts known to the messaging platform.
// Implemented by dispatch.ZaiaClient.
type ContactSource interface {
	Contacts(ctx context.Context) ([]types.PlatformContact, error)
}

// Assigner routes an imported contact to an owner. Implemented by the
// Router.
type Assigner interface {
	AssignImported(ctx context.Context, contactID string, attrs map[string]string) (*types.AssignmentResult, error)
}

// ImportStats summarizes an import run.
type ImportStats struct {
	// Imported counts contacts that received a new lead.
	Imported int

	// Skipped counts contacts that already had a lead.
	Skipped int

	// Failed counts contacts whose assignment failed.
	Failed int
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets a logger.
func WithLogger(logger types.Logger) Option {
	return func(imp *Importer) {
		imp.logger = logger
	}
}

// Importer routes platform contacts that have no lead yet.
type Importer struct {
	source   ContactSource
	assigner Assigner
	logger   types.Logger
}

// New creates an Importer.
//
// Parameters:
//   - source: Platform contact listing
//   - assigner: Routing engine (typically *distribuidor.Router)
//   - opts: Optional logger
//
// Returns:
//   - *Importer: Ready importer
func New(source ContactSource, assigner Assigner, opts ...Option) *Importer {
	imp := &Importer{
		source:   source,
		assigner: assigner,
	}
	for _, opt := range opts {
		opt(imp)
	}

	return imp
}

// Run imports all platform contacts.
//
// Each contact is routed through the regular assignment path with the
// imported marking. A per-contact failure is counted and logged; the run
// continues with the remaining contacts.
//
// Parameters:
//   - ctx: Context for the listing and per-contact assignments
//
// Returns:
//   - ImportStats: Counts of imported, skipped, and failed contacts
//   - error: Listing failure or ctx cancellation; per-contact failures
//     are reported through the stats only
func (imp *Importer) Run(ctx context.Context) (ImportStats, error) {
	var stats ImportStats

	contacts, err := imp.source.Contacts(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list platform contacts: %w", err)
	}
	imp.logInfo("import started", "contacts", len(contacts))

	for _, c := range contacts {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if c.Phone == "" {
			stats.Failed++
			imp.logWarn("contact without phone skipped", "name", c.Name)

			continue
		}

		var attrs map[string]string
		if c.Name != "" {
			attrs = map[string]string{types.AttrName: c.Name}
		}

		result, err := imp.assigner.AssignImported(ctx, c.Phone, attrs)
		if err != nil {
			stats.Failed++
			imp.logWarn("contact import failed", "contact_id", c.Phone, "error", err)

			continue
		}

		if result.IsNew {
			stats.Imported++
		} else {
			stats.Skipped++
		}
	}

	imp.logInfo("import finished",
		"imported", stats.Imported,
		"skipped", stats.Skipped,
		"failed", stats.Failed)

	return stats, nil
}

func (imp *Importer) logInfo(msg string, keysAndValues ...any) {
	if imp.logger != nil {
		imp.logger.Info(msg, keysAndValues...)
	}
}

func (imp *Importer) logWarn(msg string, keysAndValues ...any) {
	if imp.logger != nil {
		imp.logger.Warn(msg, keysAndValues...)
	}
}
