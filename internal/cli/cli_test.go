package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"cyoa-maker/internal/project"
	"cyoa-maker/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func forestProject() *models.Project {
	p := models.NewProject(models.Metadata{Name: "forest", ID: "p1", Start: "start"})
	p.PlayerData["energy"] = 20
	p.StoryMap["start"] = &models.StoryNode{
		ID:          "start",
		Description: "A forest path.",
		Ending:      models.EndingNone,
		Script:      "energy = energy + 10\nchoice_rest = energy < 25",
		Choices: []models.Choice{
			{ID: "rest", Text: "Rest"},
			{ID: "run", Text: "Run"},
		},
	}
	p.StoryMap["run"] = &models.StoryNode{ID: "run", Ending: "Good", Choices: []models.Choice{}}
	return p
}

func writeProject(t *testing.T, dir, name string, p *models.Project) string {
	t.Helper()
	repo, err := project.NewFileRepository(dir, nil)
	require.NoError(t, err)
	path, err := repo.Save(context.Background(), name, p)
	require.NoError(t, err)
	return path
}

func loadProject(t *testing.T, dir, name string) *models.Project {
	t.Helper()
	repo, err := project.NewFileRepository(dir, nil)
	require.NoError(t, err)
	p, err := repo.Load(context.Background(), name)
	require.NoError(t, err)
	return p
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "--dir", dir, "init", "demo", "--start", "start", "--author", "Ann")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "demo.cy"))

	p := loadProject(t, dir, "demo")
	assert.Equal(t, "demo", p.Metadata.Name)
	assert.Equal(t, "Ann", p.Metadata.Author)
	require.Contains(t, p.StoryMap, "start")
	assert.Contains(t, p.StoryMap["start"].Script, "-- The values above will auto update after saving --")
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "forest", forestProject())

	t.Run("Prints result and visible choices", func(t *testing.T) {
		out, err := runCLI(t, "--dir", dir, "run", "forest", "start")
		require.NoError(t, err)

		var res struct {
			PlayerData        map[string]any  `json:"player_data"`
			ChoicesVisibility map[string]bool `json:"choices_visibility"`
			VisibleChoices    []models.Choice `json:"visible_choices"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, 30.0, res.PlayerData["energy"])
		assert.False(t, res.ChoicesVisibility["rest"])
		require.Len(t, res.VisibleChoices, 1)
		assert.Equal(t, "run", res.VisibleChoices[0].ID)

		assert.Equal(t, 20, int(toFloat(loadProject(t, dir, "forest").PlayerData["energy"])))
	})

	t.Run("Vars override player data", func(t *testing.T) {
		out, err := runCLI(t, "--dir", dir, "run", "forest", "start", "--var", "energy=1", "--var", "name=Ann")
		require.NoError(t, err)
		assert.Contains(t, out, `"energy": 11`)
		assert.Contains(t, out, `"name": "Ann"`)
	})

	t.Run("Script file and save", func(t *testing.T) {
		script := filepath.Join(t.TempDir(), "boost.lua")
		require.NoError(t, os.WriteFile(script, []byte("energy = energy * 2"), 0o644))

		_, err := runCLI(t, "--dir", dir, "run", "forest", "start", "--script", script, "--save")
		require.NoError(t, err)

		p := loadProject(t, dir, "forest")
		assert.Equal(t, 40.0, toFloat(p.PlayerData["energy"]))
		assert.Equal(t, "energy = energy * 2", p.StoryMap["start"].Script)
	})

	t.Run("Reserved variable is rejected", func(t *testing.T) {
		_, err := runCLI(t, "--dir", dir, "run", "forest", "start", "--var", "choice_rest=true")
		assert.ErrorIs(t, err, models.ErrReservedName)
	})

	t.Run("Malformed var", func(t *testing.T) {
		_, err := runCLI(t, "--dir", dir, "run", "forest", "start", "--var", "energy")
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	t.Run("Unknown node", func(t *testing.T) {
		_, err := runCLI(t, "--dir", dir, "run", "forest", "nowhere")
		assert.ErrorIs(t, err, models.ErrNodeNotFound)
	})

	t.Run("Runtime error", func(t *testing.T) {
		script := filepath.Join(t.TempDir(), "bad.lua")
		require.NoError(t, os.WriteFile(script, []byte("error('boom')"), 0o644))
		_, err := runCLI(t, "--dir", dir, "run", "forest", "start", "--script", script)
		assert.ErrorIs(t, err, models.ErrScriptRuntime)
	})
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "forest", forestProject())

	out, err := runCLI(t, "--dir", dir, "check", "forest")
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 1 scripts compiled")

	broken := forestProject()
	broken.StoryMap["run"].Script = "if then"
	broken.StoryMap["start"].Choices[0].Script = "x = = 1"
	writeProject(t, dir, "broken", broken)

	out, err = runCLI(t, "--dir", dir, "check", "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 scripts failed")
	assert.Contains(t, out, "FAIL node run:")
	assert.Contains(t, out, "FAIL node start choice rest:")
}

func TestGraph(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "forest", forestProject())

	out, err := runCLI(t, "--dir", dir, "graph", "forest")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph {")
	assert.Contains(t, out, `"start" -> "run"`)

	out, err = runCLI(t, "--dir", dir, "graph", "forest", "--format", "json")
	require.NoError(t, err)
	var res graphOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.Stats.TotalNodes)
	assert.Equal(t, []string{"rest"}, res.Stats.Missing)

	out, err = runCLI(t, "--dir", dir, "graph", "forest", "--format", "yaml")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "stats")

	_, err = runCLI(t, "--dir", dir, "graph", "forest", "--format", "png")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "forest", forestProject())

	out, err := runCLI(t, "--dir", dir, "export", "forest")
	require.NoError(t, err)

	var doc struct {
		Metadata struct {
			Name string `yaml:"name"`
		} `yaml:"metadata"`
		StoryMap map[string]any `yaml:"storymap"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "forest", doc.Metadata.Name)
	assert.Len(t, doc.StoryMap, 2)
}

func TestMissingProject(t *testing.T) {
	_, err := runCLI(t, "--dir", t.TempDir(), "export", "nothing")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseVar(t *testing.T) {
	key, value, err := parseVar("gold=12")
	require.NoError(t, err)
	assert.Equal(t, "gold", key)
	assert.Equal(t, 12.0, value)

	_, value, err = parseVar("flag=true")
	require.NoError(t, err)
	assert.Equal(t, true, value)

	_, value, err = parseVar("name=Ann Lee")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", value)

	_, value, err = parseVar(`list=[1,"a"]`)
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, "a"}, value)
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return -1
}
