package postgres

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMigrationFilename(t *testing.T) {
	version, title, direction, err := parseMigrationFilename("0001_init.up.sql")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, "init", title)
	assert.Equal(t, "up", direction)

	version, title, direction, err = parseMigrationFilename("0042_add_outbox.down.sql")
	require.NoError(t, err)
	assert.Equal(t, int64(42), version)
	assert.Equal(t, "add_outbox", title)
	assert.Equal(t, "down", direction)
}

func TestParseMigrationFilenameRejectsMalformed(t *testing.T) {
	cases := []string{
		"init.up.sql",
		"0001_init.sql",
		"0001_init.sideways.sql",
		"0001_init.up.txt",
		"0000_init.up.sql",
	}
	for _, name := range cases {
		_, _, _, err := parseMigrationFilename(name)
		assert.Error(t, err, "filename %q", name)
	}
}

func TestLoadMigrationsPairsUpAndDown(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/migrations/0002_outbox.up.sql":   {Data: []byte("CREATE TABLE outbox_messages ()")},
		"sql/migrations/0001_init.up.sql":     {Data: []byte("CREATE TABLE products ()")},
		"sql/migrations/0001_init.down.sql":   {Data: []byte("DROP TABLE products")},
		"sql/migrations/0002_outbox.down.sql": {Data: []byte("DROP TABLE outbox_messages")},
	}

	migrations, err := loadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, int64(1), migrations[0].Version)
	assert.Equal(t, "init", migrations[0].Name)
	assert.Equal(t, "CREATE TABLE products ()", migrations[0].UpSQL)
	assert.Equal(t, "DROP TABLE products", migrations[0].DownSQL)
	assert.Equal(t, int64(2), migrations[1].Version)
}

func TestLoadMigrationsRejectsMissingUp(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/migrations/0001_init.down.sql": {Data: []byte("DROP TABLE products")},
	}
	_, err := loadMigrations(fsys)
	assert.Error(t, err)
}

func TestLoadMigrationsRejectsDuplicateUp(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/migrations/0001_init.up.sql":  {Data: []byte("CREATE TABLE a ()")},
		"sql/migrations/0001_other.up.sql": {Data: []byte("CREATE TABLE b ()")},
	}
	_, err := loadMigrations(fsys)
	assert.Error(t, err)
}

func TestEmbeddedMigrationsAreWellFormed(t *testing.T) {
	migrations, err := loadMigrations(migrationsFS)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i, m := range migrations {
		assert.NotEmpty(t, m.UpSQL, "migration %d has empty up", m.Version)
		assert.NotEmpty(t, m.DownSQL, "migration %d has empty down", m.Version)
		if i > 0 {
			assert.Greater(t, m.Version, migrations[i-1].Version)
		}
	}
}
