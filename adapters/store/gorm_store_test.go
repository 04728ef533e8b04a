package store_test

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/matehackers/badges-engine/adapters/store"
	"github.com/matehackers/badges-engine/core"
	"github.com/matehackers/badges-engine/internal/database"
	"github.com/matehackers/badges-engine/internal/database/models"
	"github.com/matehackers/badges-engine/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func TestGormStore(t *testing.T) {
	testAssertionStore(t, func(t *testing.T) ports.AssertionStore {
		return store.NewGormStore(newTestDB(t))
	})
}

func TestGormBadges(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, db.Create(&models.Badge{
		ID:           "1",
		Version:      "0.5.0",
		Name:         "Contributor",
		Image:        "/badge.png",
		Description:  "Contributed",
		Criteria:     "/criteria",
		IssuerOrigin: "https://badges.example.org",
		IssuerName:   "Matehackers",
	}).Error)

	badges := store.NewGormBadges(db)
	got, err := badges.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Contributor", got.Name)
	assert.Equal(t, core.Issuer{Origin: "https://badges.example.org", Name: "Matehackers"}, got.Issuer)

	_, err = badges.Get(ctx, "2")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGormUsers(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, db.Exec(`CREATE TABLE members (id TEXT PRIMARY KEY, mail TEXT)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO members (id, mail) VALUES ('42', 'alice@example.org'), ('43', NULL)`).Error)

	users := store.NewGormUsers(db, "members", "mail")

	email, err := users.ResolveEmail(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.org", email)

	email, err = users.ResolveEmail(ctx, "43")
	require.NoError(t, err)
	assert.Empty(t, email)

	_, err = users.ResolveEmail(ctx, "44")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
