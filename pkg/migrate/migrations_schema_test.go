package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Karethoth/noirion-backend/pkg/migrate"
)

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}

func TestInitialSchemaContainsEngineConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_initial_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no initial schema migration found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE assets",
		"CREATE TABLE asset_overrides",
		"CONSTRAINT uq_asset_overrides_asset UNIQUE (asset_id)",
		"CREATE TABLE presences",
		"CONSTRAINT uq_presences_source UNIQUE (source_asset_id, source_type, entity_id)",
		"CONSTRAINT uq_presence_memberships UNIQUE (presence_id, entity_id)",
		"CONSTRAINT uq_asset_presence_ignores UNIQUE (asset_id, entity_id)",
		"CONSTRAINT uq_annotation_entity UNIQUE (annotation_id, entity_id)",
		"CONSTRAINT uq_entity_links_edge UNIQUE (from_entity_id, to_entity_id, kind)",
		"INSERT INTO project_settings (id) VALUES (1)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
