package schema_test

import (
	"testing"

	"github.com/michaelprosario/career-catalyst/common/database/schema/migrations"
)

func TestMigrationVersionsAreUniqueAndOrdered(t *testing.T) {
	all := migrations.All()
	if len(all) == 0 {
		t.Fatalf("no migrations registered")
	}
	for i, m := range all {
		if m.Up == "" || m.Down == "" {
			t.Fatalf("migration %d missing Up or Down", m.Version)
		}
		if i > 0 && m.Version <= all[i-1].Version {
			t.Fatalf("migration %d out of order after %d", m.Version, all[i-1].Version)
		}
	}
}
