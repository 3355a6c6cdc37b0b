package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/barterfeed/backend/config"
	"github.com/barterfeed/backend/internal/domain"
	"github.com/barterfeed/backend/internal/infrastructure/cache"
)

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

const evaluateDoc = `{
  "user": {"id": "u1", "mainField": "Design", "interests": ["Travel"]},
  "offer": {"id": "o1", "profileId": "u2", "status": "active", "giving_tags": ["logo design"], "receiving_tags": ["marketing"]},
  "taxonomy": {"tagMappings": {"marketing": {"mappedCategories": ["Design"]}}}
}`

func TestEvaluateCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(evaluateDoc), 0o600))

	out, err := runCmd(t, "", "evaluate", "--file", path)
	require.NoError(t, err)

	var decision domain.RelevanceDecision
	require.NoError(t, json.Unmarshal([]byte(out), &decision))
	assert.True(t, decision.Relevant)
	assert.Equal(t, domain.ReasonProfessional, decision.Reason)
	assert.Equal(t, "Design", decision.Attribute)
}

func TestEvaluateCommand_Stdin(t *testing.T) {
	doc := strings.Replace(evaluateDoc, `"status": "active"`, `"status": "expired"`, 1)

	out, err := runCmd(t, doc, "evaluate", "--file", "-")
	require.NoError(t, err)

	var decision domain.RelevanceDecision
	require.NoError(t, json.Unmarshal([]byte(out), &decision))
	assert.False(t, decision.Relevant)
	assert.Equal(t, domain.ReasonInactive, decision.Reason)
}

func TestEvaluateCommand_MissingOffer(t *testing.T) {
	_, err := runCmd(t, `{"user": {"id": "u1"}}`, "evaluate", "--file", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user and offer")
}

func TestFeedCommand_UnknownUser(t *testing.T) {
	t.Setenv("BARTERFEED_STORE_PATH", ":memory:")

	_, err := runCmd(t, "", "feed", "--user", "nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProfileNotFound))
}

func TestMigrateCommand(t *testing.T) {
	t.Setenv("BARTERFEED_STORE_PATH", t.TempDir())

	out, err := runCmd(t, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "applied migrations: [1]")
}

func TestNewCache(t *testing.T) {
	log := zap.NewNop()

	c, err := newCache(config.CacheConfig{Type: "memory"}, log)
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryCache{}, c)

	mr := miniredis.RunT(t)
	c, err = newCache(config.CacheConfig{Type: "redis", RedisURL: "redis://" + mr.Addr()}, log)
	require.NoError(t, err)
	require.IsType(t, &cache.RedisCache{}, c)
	assert.NoError(t, c.(*cache.RedisCache).Close())

	_, err = newCache(config.CacheConfig{Type: "redis", RedisURL: "://bad"}, log)
	assert.Error(t, err)
}
