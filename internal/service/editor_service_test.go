package service_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"cyoa-maker/internal/sandbox"
	"cyoa-maker/internal/service"
	"cyoa-maker/shared/interfaces/mocks"
	"cyoa-maker/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) (service.EditorService, *mocks.MockProjectRepository) {
	t.Helper()
	repo := mocks.NewMockProjectRepository(t)
	engine := sandbox.New(sandbox.DefaultOptions(), zap.NewNop())
	t.Cleanup(engine.Close)
	return service.NewEditorService(repo, engine, zap.NewNop()), repo
}

func newLoadedService(t *testing.T) (service.EditorService, *mocks.MockProjectRepository) {
	t.Helper()
	svc, repo := newService(t)
	svc.NewProject(models.Metadata{Name: "forest", Start: "start"})
	return svc, repo
}

func TestNoProjectLoaded(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Project()
	assert.ErrorIs(t, err, models.ErrProjectNotLoaded)
	_, err = svc.GetNode("start")
	assert.ErrorIs(t, err, models.ErrProjectNotLoaded)
	_, err = svc.RunNodeScript(context.Background(), "start")
	assert.ErrorIs(t, err, models.ErrProjectNotLoaded)
	_, err = svc.SaveProject(context.Background(), "x")
	assert.ErrorIs(t, err, models.ErrProjectNotLoaded)
	assert.ErrorIs(t, svc.SetPlayerVar("energy", 1), models.ErrProjectNotLoaded)
}

func TestNewProject(t *testing.T) {
	svc, _ := newService(t)

	p := svc.NewProject(models.Metadata{Name: "forest"})
	require.NotEmpty(t, p.Metadata.ID)
	require.NotEmpty(t, p.Metadata.Start)
	assert.Equal(t, p.Metadata.Start, p.PlayerData[models.PlayerKeyStartID])

	start, err := svc.GetNode(p.Metadata.Start)
	require.NoError(t, err)
	assert.Contains(t, start.Script, "-- The values above will auto update after saving --")
	assert.NoError(t, svc.CheckScript(start.Script))
}

func TestProjectReturnsCopy(t *testing.T) {
	svc, _ := newLoadedService(t)

	p, err := svc.Project()
	require.NoError(t, err)
	p.StoryMap["start"].Description = "mutated"
	p.PlayerData["leak"] = true

	node, err := svc.GetNode("start")
	require.NoError(t, err)
	assert.Empty(t, node.Description)
	data, err := svc.PlayerData()
	require.NoError(t, err)
	assert.NotContains(t, data, "leak")
}

func TestLoadAndSaveProject(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	stored := models.NewProject(models.Metadata{Name: "cave", Start: "a"})
	stored.StoryMap["a"] = models.NewStoryNode("a")
	repo.On("Load", ctx, "cave").Return(stored, nil).Once()

	loaded, err := svc.LoadProject(ctx, "cave")
	require.NoError(t, err)
	assert.Equal(t, "cave", loaded.Metadata.Name)

	repo.On("Save", ctx, "cave", mock.MatchedBy(func(p *models.Project) bool {
		return p.Metadata.Name == "cave" && len(p.StoryMap) == 1
	})).Return("storys/cave.cy", nil).Once()

	path, err := svc.SaveProject(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "storys/cave.cy", path)
}

func TestLoadProjectFailureKeepsCurrent(t *testing.T) {
	svc, repo := newLoadedService(t)
	ctx := context.Background()

	repo.On("Load", ctx, "broken").Return(nil, models.ErrInvalidProject).Once()

	_, err := svc.LoadProject(ctx, "broken")
	assert.ErrorIs(t, err, models.ErrInvalidProject)

	p, err := svc.Project()
	require.NoError(t, err)
	assert.Equal(t, "forest", p.Metadata.Name)
}

func TestSaveProjectFallsBackToMetadataName(t *testing.T) {
	svc, repo := newLoadedService(t)
	ctx := context.Background()

	repo.On("Save", ctx, "forest", mock.Anything).Return("storys/forest.cy", nil).Once()
	_, err := svc.SaveProject(ctx, "")
	require.NoError(t, err)

	svc.NewProject(models.Metadata{})
	_, err = svc.SaveProject(ctx, "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestListProjects(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	repo.On("List", ctx).Return([]string{"a.cy", "b.cy"}, nil).Once()
	names, err := svc.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.cy", "b.cy"}, names)
}

func TestUpdateMetadata(t *testing.T) {
	svc, _ := newLoadedService(t)

	p, err := svc.UpdateMetadata(models.Metadata{Name: "forest", Start: "gate", Author: "Ada"})
	require.NoError(t, err)

	assert.Equal(t, "Ada", p.Metadata.Author)
	assert.NotEmpty(t, p.Metadata.ID)
	assert.Equal(t, "gate", p.PlayerData[models.PlayerKeyStartID])
	assert.Equal(t, "gate", p.PlayerData[models.PlayerKeyCurrentID])
	assert.Contains(t, p.StoryMap, "gate")
}

func TestNodeOperations(t *testing.T) {
	svc, _ := newLoadedService(t)

	_, err := svc.EnsureNode("")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	n, err := svc.EnsureNode("cave")
	require.NoError(t, err)
	assert.Equal(t, models.EndingNone, n.Ending)

	saved, err := svc.SaveNode("cave", service.NodeUpdate{
		URL:         "https://example.com/cave.png",
		Description: "Dark",
		Script:      "url = url",
		Ending:      "Death Ending",
	})
	require.NoError(t, err)
	assert.True(t, saved.IsEnding())

	_, err = svc.SaveNode("cave", service.NodeUpdate{Ending: "Nonexistent Ending"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = svc.SaveNode("nowhere", service.NodeUpdate{})
	assert.ErrorIs(t, err, models.ErrNodeNotFound)

	refreshed, err := svc.RefreshScript("cave")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(refreshed.Script, `url = "https://example.com/cave.png"`))

	ids, err := svc.ListNodeIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"cave", "start"}, ids)

	require.NoError(t, svc.RemoveNode("cave"))
	assert.ErrorIs(t, svc.RemoveNode("cave"), models.ErrNodeNotFound)
}

func TestChoiceOperations(t *testing.T) {
	svc, _ := newLoadedService(t)

	n, err := svc.AddChoice("start", nil)
	require.NoError(t, err)
	require.Len(t, n.Choices, 1)
	generated := n.Choices[0]
	assert.NotEmpty(t, generated.ID)
	assert.Equal(t, "start", generated.Parent)

	_, err = svc.GetNode(generated.ID)
	assert.NoError(t, err, "choice target node is created")

	n, err = svc.AddChoice("start", &models.Choice{ID: "cave", Emoji: "🇦", Text: "Enter"})
	require.NoError(t, err)
	require.Len(t, n.Choices, 2)

	n, err = svc.UpdateChoice("start", generated.ID, models.Choice{ID: "river", Text: "Swim"})
	require.NoError(t, err)
	assert.Equal(t, "river", n.Choices[0].ID, "renamed in place")
	assert.Equal(t, "start", n.Choices[0].Parent)
	_, err = svc.GetNode("river")
	assert.NoError(t, err)

	_, err = svc.UpdateChoice("start", "river", models.Choice{ID: "cave"})
	assert.ErrorIs(t, err, models.ErrDuplicateChoice)
	_, err = svc.UpdateChoice("start", "ghost", models.Choice{ID: "ghost"})
	assert.ErrorIs(t, err, models.ErrChoiceNotFound)

	n, err = svc.RemoveChoice("start", "river")
	require.NoError(t, err)
	assert.Equal(t, []string{"cave"}, []string{n.Choices[0].ID})
	_, err = svc.RemoveChoice("start", "river")
	assert.ErrorIs(t, err, models.ErrChoiceNotFound)
}

func TestChoiceIDMustBeScriptable(t *testing.T) {
	svc, _ := newLoadedService(t)

	_, err := svc.AddChoice("start", &models.Choice{ID: "go north", Text: "North"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = svc.GetNode("go north")
	assert.ErrorIs(t, err, models.ErrNodeNotFound, "no target node for a rejected choice")

	_, err = svc.AddChoice("start", &models.Choice{ID: "north"})
	require.NoError(t, err)
	_, err = svc.UpdateChoice("start", "north", models.Choice{ID: "north?"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	n, err := svc.RefreshScript("start")
	require.NoError(t, err)
	assert.NoError(t, svc.CheckScript(n.Script))
	res, err := svc.RunNodeScript(context.Background(), "start")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"north": true}, res.ChoicesVisibility)
}

func TestPlayerDataOperations(t *testing.T) {
	svc, _ := newLoadedService(t)

	require.NoError(t, svc.SetPlayerVar("energy", float64(20)))
	assert.ErrorIs(t, svc.SetPlayerVar("description", "x"), models.ErrReservedName)
	assert.ErrorIs(t, svc.SetPlayerVar("choice_cave", true), models.ErrReservedName)
	assert.ErrorIs(t, svc.SetPlayerVar("", 1), models.ErrInvalidInput)

	data, err := svc.PlayerData()
	require.NoError(t, err)
	assert.Equal(t, float64(20), data["energy"])

	require.NoError(t, svc.DeletePlayerVar("energy"))
	data, err = svc.PlayerData()
	require.NoError(t, err)
	assert.NotContains(t, data, "energy")

	require.NoError(t, svc.SetPlayerData(models.PlayerData{"gold": float64(1)}))
	data, err = svc.PlayerData()
	require.NoError(t, err)
	assert.Equal(t, models.PlayerData{"gold": float64(1)}, data)
	assert.ErrorIs(t, svc.SetPlayerData(models.PlayerData{"url": ""}), models.ErrReservedName)
}

func TestRunNodeScriptWritesBack(t *testing.T) {
	svc, _ := newLoadedService(t)
	ctx := context.Background()

	_, err := svc.AddChoice("start", &models.Choice{ID: "locked-door", Text: "Open the door"})
	require.NoError(t, err)
	require.NoError(t, svc.SetPlayerVar("energy", float64(20)))
	require.NoError(t, svc.SetPlayerVar("hasKey", false))
	require.NoError(t, svc.SetPlayerVar("temp", "gone"))
	_, err = svc.SaveNode("start", service.NodeUpdate{
		Description: "Before",
		Script: `
			energy = energy + 10
			temp = nil
			description = "After"
			choice_locked_door = hasKey
		`,
	})
	require.NoError(t, err)

	res, err := svc.RunNodeScript(ctx, "start")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"locked-door": false}, res.ChoicesVisibility)

	data, err := svc.PlayerData()
	require.NoError(t, err)
	assert.Equal(t, float64(30), data["energy"])
	assert.NotContains(t, data, "temp")

	node, err := svc.GetNode("start")
	require.NoError(t, err)
	assert.Equal(t, "After", node.Description)
}

func TestRunNodeScriptFailureLeavesStateUntouched(t *testing.T) {
	svc, _ := newLoadedService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetPlayerVar("energy", float64(20)))
	_, err := svc.SaveNode("start", service.NodeUpdate{
		Description: "Before",
		Script:      `energy = 99 description = "After" error("boom")`,
	})
	require.NoError(t, err)

	_, err = svc.RunNodeScript(ctx, "start")
	assert.ErrorIs(t, err, models.ErrScriptRuntime)
	assert.Equal(t, service.ErrorTypeScript, service.ClassifyError(err))

	data, err := svc.PlayerData()
	require.NoError(t, err)
	assert.Equal(t, float64(20), data["energy"])
	node, err := svc.GetNode("start")
	require.NoError(t, err)
	assert.Equal(t, "Before", node.Description)
}

func TestExecuteScriptUsesRunner(t *testing.T) {
	repo := mocks.NewMockProjectRepository(t)
	runner := mocks.NewMockScriptRunner(t)
	svc := service.NewEditorService(repo, runner, zap.NewNop())
	ctx := context.Background()

	node := models.NodeData{URL: "u", Choices: []models.Choice{}}
	want := &models.ScriptResult{URL: "u2", PlayerData: models.PlayerData{}, ChoicesVisibility: map[string]bool{}}
	runner.On("Execute", ctx, node, models.PlayerData{}, "url = 'u2'").Return(want, nil).Once()

	got, err := svc.ExecuteScript(ctx, node, nil, "url = 'u2'")
	require.NoError(t, err)
	assert.Same(t, want, got)

	timeout := models.NewScriptError(models.ScriptErrorTimeout, nil, "too slow")
	runner.On("Execute", ctx, node, models.PlayerData{}, "while true do end").Return(nil, timeout).Once()

	_, err = svc.ExecuteScript(ctx, node, models.PlayerData{}, "while true do end")
	assert.ErrorIs(t, err, models.ErrScriptTimeout)
}

func TestCheckScriptUsesRunner(t *testing.T) {
	repo := mocks.NewMockProjectRepository(t)
	runner := mocks.NewMockScriptRunner(t)
	svc := service.NewEditorService(repo, runner, zap.NewNop())

	syntax := models.NewScriptError(models.ScriptErrorSyntax, nil, "unexpected symbol")
	runner.On("Check", "x = ").Return(syntax).Once()

	assert.ErrorIs(t, svc.CheckScript("x = "), models.ErrScriptSyntax)
}

func TestGraphAndStats(t *testing.T) {
	svc, _ := newLoadedService(t)

	_, err := svc.AddChoice("start", &models.Choice{ID: "cave", Text: "Enter"})
	require.NoError(t, err)

	g, err := svc.Graph()
	require.NoError(t, err)
	assert.Equal(t, "start", g.Start)
	assert.Len(t, g.Nodes, 2)
	assert.Len(t, g.Edges, 1)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalNodes)
	assert.Equal(t, []string{"cave"}, stats.DeadEnds)
	assert.Empty(t, stats.Unreachable)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want service.ErrorType
	}{
		{models.ErrNodeNotFound, service.ErrorTypeNotFound},
		{os.ErrNotExist, service.ErrorTypeNotFound},
		{models.ErrDuplicateChoice, service.ErrorTypeValidation},
		{models.ErrInvalidProject, service.ErrorTypeRepository},
		{models.NewScriptError(models.ScriptErrorSyntax, nil, "x"), service.ErrorTypeScript},
		{models.NewScriptError(models.ScriptErrorCanceled, context.Canceled, "x"), service.ErrorTypeTimeout},
		{models.NewScriptError(models.ScriptErrorHost, models.ErrReservedName, "x"), service.ErrorTypeValidation},
		{models.NewScriptError(models.ScriptErrorHost, nil, "x"), service.ErrorTypeInternal},
		{errors.New("disk on fire"), service.ErrorTypeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, service.ClassifyError(tt.err), tt.err.Error())
	}
}
