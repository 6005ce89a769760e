package prompts_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/davidbz/pressroom/internal/domain"
	"github.com/davidbz/pressroom/internal/prompts"
)

func writePromptFile(t *testing.T, dir string, set prompts.Set) string {
	t.Helper()

	data, err := yaml.Marshal(set)
	require.NoError(t, err)
	path := filepath.Join(dir, "prompts.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestNewFileStore_MissingFileUsesDefaults(t *testing.T) {
	store, err := prompts.NewFileStore(filepath.Join(t.TempDir(), "prompts.yaml"), true)

	require.NoError(t, err)
	require.Equal(t, prompts.DefaultQuestions, store.Active().Questions)
	require.Equal(t, prompts.DefaultFollowUp, store.Active().FollowUp)
}

func TestNewFileStore_LoadsFile(t *testing.T) {
	path := writePromptFile(t, t.TempDir(), prompts.Set{Questions: "custom questions"})

	store, err := prompts.NewFileStore(path, false)

	require.NoError(t, err)
	require.Equal(t, "custom questions", store.Active().Questions)
	require.Equal(t, prompts.DefaultFollowUp, store.Active().FollowUp)
}

func TestNewFileStore_Errors(t *testing.T) {
	_, err := prompts.NewFileStore("", true)
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("questions_prompt: [unclosed"), 0o600))
	_, err = prompts.NewFileStore(path, true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse prompt file")
}

func TestPersist_WritesBackupBeforeNewContent(t *testing.T) {
	dir := t.TempDir()
	path := writePromptFile(t, dir, prompts.Set{Questions: "old questions", FollowUp: "old follow-up"})
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	store, err := prompts.NewFileStore(path, true)
	require.NoError(t, err)
	at := time.UnixMilli(1754209373698)
	store.SetClock(func() time.Time { return at })

	result, err := store.Persist(context.Background(), prompts.Update{Questions: "new questions"})

	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, filepath.Join(dir, "prompts.backup.1754209373698.yaml"), result.BackupPath)

	backup, err := os.ReadFile(result.BackupPath)
	require.NoError(t, err)
	require.Equal(t, before, backup)

	reloaded, err := prompts.NewFileStore(path, true)
	require.NoError(t, err)
	require.Equal(t, "new questions", reloaded.Active().Questions)
	require.Equal(t, "old follow-up", reloaded.Active().FollowUp)
	require.True(t, reloaded.Active().UpdatedAt.Equal(at))

	require.Equal(t, "new questions", store.Active().Questions)
	require.NoFileExists(t, path+".tmp")
}

func TestPersist_WithoutExistingFileBacksUpDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "prompts.yaml")
	store, err := prompts.NewFileStore(path, true)
	require.NoError(t, err)

	result, err := store.Persist(context.Background(), prompts.Update{FollowUp: "new follow-up"})
	require.NoError(t, err)

	var backup prompts.Set
	data, err := os.ReadFile(result.BackupPath)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &backup))
	require.Equal(t, prompts.DefaultFollowUp, backup.FollowUp)
	require.FileExists(t, path)
}

func TestPersist_OutsideDevelopmentMode(t *testing.T) {
	dir := t.TempDir()
	path := writePromptFile(t, dir, prompts.Set{Questions: "old"})
	store, err := prompts.NewFileStore(path, false)
	require.NoError(t, err)

	result, err := store.Persist(context.Background(), prompts.Update{Questions: "new"})

	require.Nil(t, result)
	var permErr *domain.PermissionError
	require.ErrorAs(t, err, &permErr)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "old", store.Active().Questions)
}

func TestPersist_NothingToUpdate(t *testing.T) {
	dir := t.TempDir()
	store, err := prompts.NewFileStore(filepath.Join(dir, "prompts.yaml"), true)
	require.NoError(t, err)

	_, err = store.Persist(context.Background(), prompts.Update{Questions: "  ", FollowUp: ""})

	require.ErrorIs(t, err, domain.ErrInput)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDescriptions(t *testing.T) {
	set := prompts.Set{Questions: "q", FollowUp: "f"}

	descriptions := prompts.Descriptions(set)

	require.Len(t, descriptions, 2)
	require.Equal(t, prompts.KindQuestions, descriptions[0].Kind)
	require.Equal(t, "q", descriptions[0].Current)
	require.Equal(t, prompts.DefaultQuestions, descriptions[0].DefaultValue)
	require.Equal(t, prompts.KindFollowUp, descriptions[1].Kind)
	require.Equal(t, "f", descriptions[1].Current)
}
