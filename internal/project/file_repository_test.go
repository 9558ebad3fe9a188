package project

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cyoa-maker/shared/models"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleProject() *models.Project {
	p := models.NewProject(models.Metadata{
		Author: "Ada",
		Name:   "Forest",
		ID:     "forest-1",
		Start:  "start",
		Tag:    []string{"fantasy"},
	})
	p.PlayerData = models.PlayerData{"energy": float64(20), "StartID": "start", "hasKey": false}
	start := models.NewStoryNode("start")
	start.Description = "A dark forest"
	start.Choices = []models.Choice{{ID: "cave", Emoji: "🇦", Text: "Enter the cave"}}
	cave := models.NewStoryNode("cave")
	cave.Ending = "Death Ending"
	p.StoryMap["start"] = start
	p.StoryMap["cave"] = cave
	return p
}

func newRepo(t *testing.T) *FileRepository {
	t.Helper()
	repo, err := NewFileRepository(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return repo
}

func compress(t *testing.T, raw string) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = enc.Write([]byte(raw))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	p := sampleProject()

	path, err := repo.Save(ctx, "forest", p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repo.Dir(), "forest.cy"), path)

	loaded, err := repo.Load(ctx, "forest")
	require.NoError(t, err)
	assert.Equal(t, p, loaded)

	loadedByPath, err := repo.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, p, loadedByPath)
}

func TestSaveOverwrites(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	p := sampleProject()

	_, err := repo.Save(ctx, "forest.cy", p)
	require.NoError(t, err)
	p.Metadata.Name = "Renamed"
	_, err = repo.Save(ctx, "forest.cy", p)
	require.NoError(t, err)

	loaded, err := repo.Load(ctx, "forest.cy")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", loaded.Metadata.Name)

	names, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"forest.cy"}, names)
}

func TestLoadAppliesDefaults(t *testing.T) {
	repo := newRepo(t)
	raw := `{
		"metadata": {"Author": "Ada", "name": "Old", "id": "x", "description": "", "start": "a", "tag": []},
		"playerdata": {"gold": 3},
		"storymap": {"a": {"id": "a", "url": "", "description": "first", "script": ""}}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "old.cy"), compress(t, raw), 0o644))

	p, err := repo.Load(context.Background(), "old")
	require.NoError(t, err)

	node := p.StoryMap["a"]
	require.NotNil(t, node)
	assert.Equal(t, []models.Choice{}, node.Choices)
	assert.Equal(t, models.EndingNone, node.Ending)
	assert.Equal(t, models.DefaultEmojiSchema(), p.EmojiSchema)
	assert.Equal(t, float64(3), p.PlayerData["gold"])
}

func TestLoadRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"metadata":`},
		{"missing storymap", `{"metadata": {}, "playerdata": {}}`},
		{"choice without id", `{"metadata": {}, "playerdata": {}, "storymap": {"a": {"choices": [{"text": "go"}]}}}`},
		{"description not a string", `{"metadata": {}, "playerdata": {}, "storymap": {"a": {"description": 5}}}`},
	}

	repo := newRepo(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Decode(bytes.NewReader(compress(t, tt.raw)))
			assert.ErrorIs(t, err, models.ErrInvalidProject)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestListProjects(t *testing.T) {
	ctx := context.Background()

	missing, err := NewFileRepository(filepath.Join(t.TempDir(), "absent"), nil)
	require.NoError(t, err)
	names, err := missing.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	repo := newRepo(t)
	for _, name := range []string{"b", "a"} {
		_, err := repo.Save(ctx, name, sampleProject())
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "notes.txt"), []byte("x"), 0o644))

	names, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.cy", "b.cy"}, names)
}

func TestResolve(t *testing.T) {
	repo, err := NewFileRepository("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("storys", "forest.cy"), repo.Resolve("forest"))
	assert.Equal(t, filepath.Join("storys", "forest.cy"), repo.Resolve("forest.cy"))
	assert.Equal(t, filepath.Join("other", "forest.cy"), repo.Resolve("other/forest"))
}

func TestExportYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportYAML(&buf, sampleProject()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "metadata:\n"))
	assert.Contains(t, out, "  author: Ada\n")
	assert.Contains(t, out, "ending: Death Ending")
	assert.Contains(t, out, "text: Enter the cave")
}
