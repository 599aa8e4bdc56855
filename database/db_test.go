package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miniblog/miniblog/database/model"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSQLiteMigrates(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "blog.db")
	require.NoError(t, InitSQLite(dbPath))
	t.Cleanup(func() { _ = CloseDB() })

	db := GetDB()
	for _, table := range []string{"users", "posts", "settings"} {
		assert.True(t, db.Migrator().HasTable(table), "table %s should exist", table)
	}

	post := &model.Post{Title: "T", Content: "c", Image: "img.png", Author: "a"}
	require.NoError(t, db.Create(post).Error)
	assert.NotZero(t, post.Id)
	assert.False(t, post.CreatedAt.IsZero())

	var missing model.Post
	err := db.First(&missing, post.Id+1).Error
	assert.True(t, IsNotFound(err))
}

func TestCloseDBLogsFailedCheckpoint(t *testing.T) {
	mem := logging.NewMemoryBackend(16)
	logging.SetBackend(mem)
	t.Cleanup(func() { logging.SetBackend(logging.NewLogBackend(os.Stderr, "", 0)) })

	require.NoError(t, InitSQLite(filepath.Join(t.TempDir(), "blog.db")))
	sqlDB, err := GetDB().DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	// the checkpoint hits a closed pool; closing still succeeds
	assert.NoError(t, CloseDB())

	var logged []string
	for n := mem.Head(); n != nil; n = n.Next() {
		logged = append(logged, n.Record.Message())
	}
	assert.Contains(t, strings.Join(logged, "\n"), "error executing checkpoint")
}
