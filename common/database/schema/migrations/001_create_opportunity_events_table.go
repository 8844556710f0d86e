package migrations

import "github.com/michaelprosario/career-catalyst/common/database/schema"

var CreateOpportunityEventsTable = schema.Migration{
	Version:     1,
	Description: "Create opportunity events table",
	Up: `
		CREATE TABLE IF NOT EXISTS opportunity_events (
			event_id UUID,
			opportunity_id String,
			user_id String,
			event_type LowCardinality(String),
			application_status LowCardinality(String),
			title String,
			company String,
			detail String,
			occurred_at DateTime64(3, 'UTC')
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(occurred_at)
		ORDER BY (opportunity_id, occurred_at, event_id)
		SETTINGS index_granularity = 8192
	`,
	Down: `DROP TABLE IF EXISTS opportunity_events`,
}
