package report

import (
	"context"
	"fmt"
	"time"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
)

// Labels used when a lead's owner data is incomplete.
const (
	unknownOwner = "unknown"
	untagged     = "untagged"
)

// LeadSummary is one denormalized lead row in a Report.
type LeadSummary struct {
	LeadID    string `json:"lead_id"`
	ContactID string `json:"contact_id"`

	// Attributes are the lead's recorded attributes (name, company, ...).
	Attributes map[string]string `json:"attributes,omitempty"`

	// Imported marks leads backfilled by the bulk importer.
	Imported bool `json:"imported,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	OwnerID   types.OwnerID `json:"owner_id"`
	OwnerName string        `json:"owner_name"`
	OwnerTag  string        `json:"owner_tag"`
}

// Report is the aggregated outcome of a reporting query.
type Report struct {
	// Total is the number of leads matching the filter.
	Total int `json:"total"`

	// ByOwner counts leads per owner display name.
	ByOwner map[string]int `json:"by_owner"`

	// ByTag counts leads per owner routing tag.
	ByTag map[string]int `json:"by_tag"`

	// Leads lists matching leads newest first.
	Leads []LeadSummary `json:"leads"`
}

// Reporter builds reports from a lead directory.
type Reporter struct {
	directory types.LeadDirectory
}

// NewReporter creates a Reporter over the given lead directory.
//
// Parameters:
//   - directory: Read path over committed leads (typically the Store)
//
// Returns:
//   - *Reporter: Ready reporter
func NewReporter(directory types.LeadDirectory) *Reporter {
	return &Reporter{directory: directory}
}

// Build runs a reporting query.
//
// Parameters:
//   - ctx: Context for the underlying reads
//   - filter: Restricts by owner, tag substring, and creation time window;
//     the zero value matches everything
//
// Returns:
//   - *Report: Aggregated counts and newest-first lead summaries
//   - error: Wrapped store error
func (r *Reporter) Build(ctx context.Context, filter types.LeadFilter) (*Report, error) {
	assignments, err := r.directory.ListLeads(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	rep := &Report{
		Total:   len(assignments),
		ByOwner: make(map[string]int),
		ByTag:   make(map[string]int),
		Leads:   make([]LeadSummary, 0, len(assignments)),
	}

	for _, a := range assignments {
		ownerName := unknownOwner
		ownerTag := untagged
		var ownerID types.OwnerID
		if a.Owner != nil {
			ownerID = a.Owner.ID
			if a.Owner.DisplayName != "" {
				ownerName = a.Owner.DisplayName
			}
			if a.Owner.RoutingTag != "" {
				ownerTag = a.Owner.RoutingTag
			}
		} else {
			ownerID = a.Lead.OwnerID
		}

		rep.ByOwner[ownerName]++
		rep.ByTag[ownerTag]++

		rep.Leads = append(rep.Leads, LeadSummary{
			LeadID:     a.Lead.ID,
			ContactID:  a.Lead.ContactID,
			Attributes: a.Lead.Attributes,
			Imported:   a.Lead.Imported,
			CreatedAt:  a.Lead.CreatedAt,
			OwnerID:    ownerID,
			OwnerName:  ownerName,
			OwnerTag:   ownerTag,
		})
	}

	return rep, nil
}
