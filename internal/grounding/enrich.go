package grounding

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/sumerudigitals/onboard/internal/intent"
	"github.com/sumerudigitals/onboard/pkg/models"
)

const (
	maxSearchResults   = 5
	maxStatusEmployees = 10
)

// EnrichContext merges query-specific HR data into an already built page
// context. Only HR-perspective messages are enriched; existing keys are
// never touched, so enrichment can only add. Failures degrade: the
// context stays usable and the miss is reported, not returned as an
// error.
func (t *Tracker) EnrichContext(ctx context.Context, c *models.PageContext, in intent.Intent) (degraded bool, reason string) {
	if !in.HRPerspective {
		return false, ""
	}

	switch in.Action.Kind {
	case intent.ActionSearchEmployee:
		results, err := t.SearchEmployees(ctx, in.Action.Query)
		if err != nil {
			log.Warn().Err(err).Str("query", in.Action.Query).Msg("Search enrichment failed")
			return true, err.Error()
		}
		if len(results) > maxSearchResults {
			results = results[:maxSearchResults]
		}
		c.Set("Search Results", results)
		log.Info().Int("count", len(results)).Str("query", in.Action.Query).Msg("Enriched with employee search")

	case intent.ActionDepartmentStats:
		stats, err := t.DepartmentStats(ctx, in.Action.Department)
		if err != nil {
			log.Warn().Err(err).Str("department", in.Action.Department).Msg("Department enrichment failed")
			return true, err.Error()
		}
		c.Set("Department Statistics", stats)
		log.Info().Str("department", in.Action.Department).Msg("Enriched with department stats")

	case intent.ActionStatusFilter:
		employees, err := t.EmployeesByStatus(ctx, in.Action.Status)
		if err != nil {
			log.Warn().Err(err).Str("status", in.Action.Status).Msg("Status enrichment failed")
			return true, err.Error()
		}
		if len(employees) > maxStatusEmployees {
			employees = employees[:maxStatusEmployees]
		}
		c.Set(capitalize(in.Action.Status)+" Employees", employees)
		log.Info().Int("count", len(employees)).Str("status", in.Action.Status).Msg("Enriched with status listing")

	case intent.ActionAnalytics:
		analytics, err := t.OrgAnalytics(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Analytics enrichment failed")
			return true, err.Error()
		}
		summary, err := t.PopulationSummary(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Summary enrichment failed")
			return true, err.Error()
		}
		c.Set("Analytics", analytics)
		c.Set("Summary", summary)
		log.Info().Msg("Enriched with org analytics")
	}

	return false, ""
}
