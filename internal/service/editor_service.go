package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"cyoa-maker/internal/graph"
	"cyoa-maker/internal/metrics"
	"cyoa-maker/internal/sandbox"
	"cyoa-maker/internal/scriptgen"
	"cyoa-maker/shared/interfaces"
	"cyoa-maker/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NodeUpdate carries the editable fields of a story node.
type NodeUpdate struct {
	URL         string `json:"url"`
	Description string `json:"description"`
	Script      string `json:"script"`
	Ending      string `json:"ending"`
}

// EditorService holds the project being edited and the operations the editor performs on it.
type EditorService interface {
	NewProject(meta models.Metadata) *models.Project
	LoadProject(ctx context.Context, name string) (*models.Project, error)
	SaveProject(ctx context.Context, name string) (string, error)
	Project() (*models.Project, error)
	ListProjects(ctx context.Context) ([]string, error)
	UpdateMetadata(meta models.Metadata) (*models.Project, error)
	SetEmojiSchema(schema map[string]string) error

	EnsureNode(id string) (*models.StoryNode, error)
	GetNode(id string) (*models.StoryNode, error)
	ListNodeIDs() ([]string, error)
	SaveNode(id string, update NodeUpdate) (*models.StoryNode, error)
	RemoveNode(id string) error
	RefreshScript(id string) (*models.StoryNode, error)

	AddChoice(nodeID string, choice *models.Choice) (*models.StoryNode, error)
	UpdateChoice(nodeID, originalID string, choice models.Choice) (*models.StoryNode, error)
	RemoveChoice(nodeID, choiceID string) (*models.StoryNode, error)

	PlayerData() (models.PlayerData, error)
	SetPlayerData(data models.PlayerData) error
	SetPlayerVar(key string, value any) error
	DeletePlayerVar(key string) error

	CheckScript(source string) error
	RunNodeScript(ctx context.Context, nodeID string) (*models.ScriptResult, error)
	ExecuteScript(ctx context.Context, node models.NodeData, player models.PlayerData, source string) (*models.ScriptResult, error)

	Graph() (*graph.Graph, error)
	Stats() (graph.Stats, error)
}

type editorService struct {
	mu      sync.RWMutex
	project *models.Project
	path    string

	repo   interfaces.ProjectRepository
	runner interfaces.ScriptRunner
	logger *zap.Logger
}

// NewEditorService creates the service. No project is loaded until NewProject or LoadProject.
func NewEditorService(repo interfaces.ProjectRepository, runner interfaces.ScriptRunner, logger *zap.Logger) EditorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &editorService{
		repo:   repo,
		runner: runner,
		logger: logger.Named("EditorService"),
	}
}

// --- Project lifecycle ---

// NewProject replaces the current project with an empty one. A missing project id
// and start node id are generated; the start node is created.
func (s *editorService) NewProject(meta models.Metadata) *models.Project {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Start == "" {
		meta.Start = uuid.NewString()
	}
	p := models.NewProject(meta)
	p.PlayerData[models.PlayerKeyStartID] = meta.Start
	p.StoryMap[meta.Start] = newNode(meta.Start)

	s.mu.Lock()
	s.project = p
	s.path = ""
	s.mu.Unlock()

	s.logger.Info("New project created", zap.String("project_id", meta.ID), zap.String("start", meta.Start))
	return p.Clone()
}

func (s *editorService) LoadProject(ctx context.Context, name string) (*models.Project, error) {
	if name == "" {
		return nil, s.handleError("LoadProject", fmt.Errorf("%w: project name is required", models.ErrInvalidInput))
	}
	p, err := s.repo.Load(ctx, name)
	metrics.IncProjectOperation("load", err)
	if err != nil {
		return nil, s.handleError("LoadProject", err, zap.String("name", name))
	}

	s.mu.Lock()
	s.project = p
	s.path = name
	s.mu.Unlock()
	return p.Clone(), nil
}

// SaveProject writes the current project. An empty name reuses the name the project
// was last loaded or saved under, then the project name from the metadata.
func (s *editorService) SaveProject(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	if s.project == nil {
		s.mu.RUnlock()
		return "", s.handleError("SaveProject", models.ErrProjectNotLoaded)
	}
	snapshot := s.project.Clone()
	if name == "" {
		name = s.path
	}
	if name == "" {
		name = snapshot.Metadata.Name
	}
	s.mu.RUnlock()

	if name == "" {
		return "", s.handleError("SaveProject", fmt.Errorf("%w: project has no name to save under", models.ErrInvalidInput))
	}

	path, err := s.repo.Save(ctx, name, snapshot)
	metrics.IncProjectOperation("save", err)
	if err != nil {
		return "", s.handleError("SaveProject", err, zap.String("name", name))
	}

	s.mu.Lock()
	s.path = name
	s.mu.Unlock()
	return path, nil
}

func (s *editorService) Project() (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.project == nil {
		return nil, models.ErrProjectNotLoaded
	}
	return s.project.Clone(), nil
}

func (s *editorService) ListProjects(ctx context.Context) ([]string, error) {
	names, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.handleError("ListProjects", err)
	}
	return names, nil
}

// UpdateMetadata replaces the metadata, points StartID and currentID at the start
// node and makes sure the start node exists.
func (s *editorService) UpdateMetadata(meta models.Metadata) (*models.Project, error) {
	if meta.Tag == nil {
		meta.Tag = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil, s.handleError("UpdateMetadata", models.ErrProjectNotLoaded)
	}
	if meta.ID == "" {
		meta.ID = s.project.Metadata.ID
	}
	s.project.Metadata = meta
	if meta.Start != "" {
		s.project.PlayerData[models.PlayerKeyStartID] = meta.Start
		s.project.PlayerData[models.PlayerKeyCurrentID] = meta.Start
		s.ensureNodeLocked(meta.Start)
	}
	return s.project.Clone(), nil
}

func (s *editorService) SetEmojiSchema(schema map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return s.handleError("SetEmojiSchema", models.ErrProjectNotLoaded)
	}
	s.project.EmojiSchema = maps.Clone(schema)
	if s.project.EmojiSchema == nil {
		s.project.EmojiSchema = map[string]string{}
	}
	return nil
}

// --- Nodes ---

// newNode creates an empty node whose script starts with the generated preamble.
func newNode(id string) *models.StoryNode {
	n := models.NewStoryNode(id)
	n.Script = scriptgen.Preamble(n)
	return n
}

func (s *editorService) ensureNodeLocked(id string) *models.StoryNode {
	if n, ok := s.project.StoryMap[id]; ok {
		return n
	}
	n := newNode(id)
	s.project.StoryMap[id] = n
	s.logger.Debug("Story node created", zap.String("node_id", id))
	return n
}

// nodeLocked returns the node or ErrNodeNotFound. s.mu must be held.
func (s *editorService) nodeLocked(id string) (*models.StoryNode, error) {
	if s.project == nil {
		return nil, models.ErrProjectNotLoaded
	}
	n, ok := s.project.StoryMap[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrNodeNotFound, id)
	}
	return n, nil
}

// EnsureNode returns the node with the given id, creating it on first reference.
func (s *editorService) EnsureNode(id string) (*models.StoryNode, error) {
	if id == "" {
		return nil, s.handleError("EnsureNode", fmt.Errorf("%w: node id is required", models.ErrInvalidInput))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil, s.handleError("EnsureNode", models.ErrProjectNotLoaded)
	}
	return s.ensureNodeLocked(id).Clone(), nil
}

func (s *editorService) GetNode(id string) (*models.StoryNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.nodeLocked(id)
	if err != nil {
		return nil, err
	}
	return n.Clone(), nil
}

func (s *editorService) ListNodeIDs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.project == nil {
		return nil, models.ErrProjectNotLoaded
	}
	return s.project.NodeIDs(), nil
}

// SaveNode replaces the editable fields of an existing node. An empty ending means
// the node is not an ending.
func (s *editorService) SaveNode(id string, update NodeUpdate) (*models.StoryNode, error) {
	ending := update.Ending
	if ending == "" {
		ending = models.EndingNone
	}
	if _, ok := models.LookupEnding(ending); !ok {
		return nil, s.handleError("SaveNode", fmt.Errorf("%w: unknown ending %q", models.ErrInvalidInput, ending))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(id)
	if err != nil {
		return nil, s.handleError("SaveNode", err)
	}
	n.URL = update.URL
	n.Description = update.Description
	n.Script = update.Script
	n.Ending = ending
	return n.Clone(), nil
}

func (s *editorService) RemoveNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.nodeLocked(id); err != nil {
		return s.handleError("RemoveNode", err)
	}
	delete(s.project.StoryMap, id)
	return nil
}

// RefreshScript regenerates the node script from its current fields.
func (s *editorService) RefreshScript(id string) (*models.StoryNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(id)
	if err != nil {
		return nil, s.handleError("RefreshScript", err)
	}
	n.Script = scriptgen.Preamble(n)
	return n.Clone(), nil
}

// --- Choices ---

// AddChoice appends a choice to the node, or replaces the choice with the same id.
// A nil choice adds an empty one with a fresh id. The target node is created if needed.
func (s *editorService) AddChoice(nodeID string, choice *models.Choice) (*models.StoryNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(nodeID)
	if err != nil {
		return nil, s.handleError("AddChoice", err)
	}

	var c models.Choice
	if choice == nil {
		c = models.Choice{ID: s.freshChoiceID(n), Parent: nodeID}
	} else {
		c = *choice
	}
	if err := validateChoiceID(c.ID); err != nil {
		return nil, s.handleError("AddChoice", err)
	}

	if i := n.ChoiceIndex(c.ID); i >= 0 {
		n.Choices[i] = c
	} else {
		n.Choices = append(n.Choices, c)
	}
	s.ensureNodeLocked(c.ID)
	return n.Clone(), nil
}

func validateChoiceID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: choice id is required", models.ErrInvalidInput)
	}
	if !sandbox.ScriptableChoiceID(id) {
		return fmt.Errorf("%w: choice id %q may only contain letters, digits, '_' and '-'", models.ErrInvalidInput, id)
	}
	return nil
}

func (s *editorService) freshChoiceID(n *models.StoryNode) string {
	for {
		id := uuid.NewString()
		if n.ChoiceIndex(id) < 0 {
			return id
		}
	}
}

// UpdateChoice replaces the choice originalID in place. Renaming to an id already
// used by another choice of the node is rejected.
func (s *editorService) UpdateChoice(nodeID, originalID string, choice models.Choice) (*models.StoryNode, error) {
	if err := validateChoiceID(choice.ID); err != nil {
		return nil, s.handleError("UpdateChoice", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(nodeID)
	if err != nil {
		return nil, s.handleError("UpdateChoice", err)
	}
	i := n.ChoiceIndex(originalID)
	if i < 0 {
		return nil, s.handleError("UpdateChoice", fmt.Errorf("%w: %q in node %q", models.ErrChoiceNotFound, originalID, nodeID))
	}
	if choice.ID != originalID && n.ChoiceIndex(choice.ID) >= 0 {
		return nil, s.handleError("UpdateChoice", fmt.Errorf("%w: %q", models.ErrDuplicateChoice, choice.ID))
	}
	if choice.Parent == "" {
		choice.Parent = n.Choices[i].Parent
	}
	n.Choices[i] = choice
	s.ensureNodeLocked(choice.ID)
	return n.Clone(), nil
}

func (s *editorService) RemoveChoice(nodeID, choiceID string) (*models.StoryNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.nodeLocked(nodeID)
	if err != nil {
		return nil, s.handleError("RemoveChoice", err)
	}
	i := n.ChoiceIndex(choiceID)
	if i < 0 {
		return nil, s.handleError("RemoveChoice", fmt.Errorf("%w: %q in node %q", models.ErrChoiceNotFound, choiceID, nodeID))
	}
	n.Choices = append(n.Choices[:i], n.Choices[i+1:]...)
	return n.Clone(), nil
}

// --- Player data ---

func (s *editorService) PlayerData() (models.PlayerData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.project == nil {
		return nil, models.ErrProjectNotLoaded
	}
	return s.project.PlayerData.Clone(), nil
}

func validatePlayerKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: player variable name is required", models.ErrInvalidInput)
	}
	if sandbox.IsReserved(key) {
		return fmt.Errorf("%w: %q", models.ErrReservedName, key)
	}
	return nil
}

// SetPlayerData replaces every player variable.
func (s *editorService) SetPlayerData(data models.PlayerData) error {
	for key := range data {
		if err := validatePlayerKey(key); err != nil {
			return s.handleError("SetPlayerData", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return s.handleError("SetPlayerData", models.ErrProjectNotLoaded)
	}
	s.project.PlayerData = data.Clone()
	return nil
}

func (s *editorService) SetPlayerVar(key string, value any) error {
	if err := validatePlayerKey(key); err != nil {
		return s.handleError("SetPlayerVar", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return s.handleError("SetPlayerVar", models.ErrProjectNotLoaded)
	}
	s.project.PlayerData[key] = value
	return nil
}

func (s *editorService) DeletePlayerVar(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return s.handleError("DeletePlayerVar", models.ErrProjectNotLoaded)
	}
	delete(s.project.PlayerData, key)
	return nil
}

// --- Scripts ---

func (s *editorService) CheckScript(source string) error {
	return s.runner.Check(source)
}

// RunNodeScript runs the node's script against the current player data. On success
// the node's url and description and every player variable are updated from the
// result; a variable that came back nil is deleted. On failure nothing changes.
func (s *editorService) RunNodeScript(ctx context.Context, nodeID string) (*models.ScriptResult, error) {
	s.mu.RLock()
	n, err := s.nodeLocked(nodeID)
	if err != nil {
		s.mu.RUnlock()
		return nil, s.handleError("RunNodeScript", err)
	}
	nodeData := n.NodeData()
	player := s.project.PlayerData.Clone()
	source := n.Script
	s.mu.RUnlock()

	res, err := s.execute(ctx, nodeData, player, source)
	if err != nil {
		return nil, s.handleError("RunNodeScript", err, zap.String("node_id", nodeID))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil, s.handleError("RunNodeScript", models.ErrProjectNotLoaded)
	}
	if n, ok := s.project.StoryMap[nodeID]; ok {
		n.URL = res.URL
		n.Description = res.Description
	}
	for key, value := range res.PlayerData {
		if value == nil {
			delete(s.project.PlayerData, key)
			continue
		}
		s.project.PlayerData[key] = value
	}
	return res, nil
}

// ExecuteScript runs source against the given state without touching the project.
func (s *editorService) ExecuteScript(ctx context.Context, node models.NodeData, player models.PlayerData, source string) (*models.ScriptResult, error) {
	res, err := s.execute(ctx, node, player, source)
	if err != nil {
		return nil, s.handleError("ExecuteScript", err)
	}
	return res, nil
}

func (s *editorService) execute(ctx context.Context, node models.NodeData, player models.PlayerData, source string) (*models.ScriptResult, error) {
	if player == nil {
		player = models.PlayerData{}
	}
	start := time.Now()
	res, err := s.runner.Execute(ctx, node, player, source)
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = string(models.ScriptErrorHost)
		var scriptErr *models.ScriptError
		if errors.As(err, &scriptErr) {
			outcome = string(scriptErr.Kind)
		}
	}
	metrics.ObserveScriptExecution(outcome, time.Since(start))
	return res, err
}

// --- Graph ---

func (s *editorService) Graph() (*graph.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.project == nil {
		return nil, models.ErrProjectNotLoaded
	}
	return graph.Build(s.project), nil
}

func (s *editorService) Stats() (graph.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.project == nil {
		return graph.Stats{}, models.ErrProjectNotLoaded
	}
	return graph.ComputeStats(s.project), nil
}
