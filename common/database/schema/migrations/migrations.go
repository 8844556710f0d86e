package migrations

import "github.com/michaelprosario/career-catalyst/common/database/schema"

// All lists every migration in version order.
func All() []schema.Migration {
	return []schema.Migration{
		CreateOpportunityEventsTable,
	}
}
