package handler

import (
	"net/http"

	"cyoa-maker/internal/graph"
	"cyoa-maker/internal/service"
	"cyoa-maker/shared/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EditorHandler exposes the editor service over HTTP.
type EditorHandler struct {
	service service.EditorService
	logger  *zap.Logger
}

func NewEditorHandler(s service.EditorService, logger *zap.Logger) *EditorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditorHandler{
		service: s,
		logger:  logger.Named("EditorHandler"),
	}
}

func (h *EditorHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/project", h.getProject)
		api.POST("/project", h.newProject)
		api.PUT("/project/metadata", h.updateMetadata)
		api.PUT("/project/emoji-schema", h.updateEmojiSchema)
		api.POST("/project/load", h.loadProject)
		api.POST("/project/save", h.saveProject)
		api.GET("/projects", h.listProjects)

		api.GET("/nodes", h.listNodes)
		api.POST("/nodes", h.createNode)
		api.GET("/nodes/:id", h.getNode)
		api.PUT("/nodes/:id", h.saveNode)
		api.DELETE("/nodes/:id", h.removeNode)
		api.POST("/nodes/:id/refresh-script", h.refreshScript)
		api.POST("/nodes/:id/run", h.runNode)

		api.POST("/nodes/:id/choices", h.addChoice)
		api.PUT("/nodes/:id/choices/:choiceId", h.updateChoice)
		api.DELETE("/nodes/:id/choices/:choiceId", h.removeChoice)

		api.GET("/player-data", h.getPlayerData)
		api.PUT("/player-data", h.setPlayerData)
		api.PUT("/player-data/:key", h.setPlayerVar)
		api.DELETE("/player-data/:key", h.deletePlayerVar)

		api.POST("/scripts/execute", h.executeScript)
		api.POST("/scripts/check", h.checkScript)

		api.GET("/graph", h.getGraph)
		api.GET("/graph.dot", h.getGraphDOT)
	}
}

// --- Project ---

func (h *EditorHandler) getProject(c *gin.Context) {
	p, err := h.service.Project()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *EditorHandler) newProject(c *gin.Context) {
	var meta models.Metadata
	if !bindOptionalJSON(c, &meta) {
		return
	}
	c.JSON(http.StatusCreated, h.service.NewProject(meta))
}

func (h *EditorHandler) updateMetadata(c *gin.Context) {
	var meta models.Metadata
	if !bindJSON(c, &meta) {
		return
	}
	p, err := h.service.UpdateMetadata(meta)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *EditorHandler) updateEmojiSchema(c *gin.Context) {
	var req EmojiSchemaRequest
	if !bindJSON(c, &req) {
		return
	}
	schema := req.Schema
	if req.Text != "" {
		schema = models.ParseEmojiSchema(req.Text)
	}
	if err := h.service.SetEmojiSchema(schema); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schema)
}

func (h *EditorHandler) loadProject(c *gin.Context) {
	var req ProjectNameRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.service.LoadProject(c.Request.Context(), req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *EditorHandler) saveProject(c *gin.Context) {
	var req ProjectNameRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	path, err := h.service.SaveProject(c.Request.Context(), req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SaveProjectResponse{Path: path})
}

func (h *EditorHandler) listProjects(c *gin.Context) {
	names, err := h.service.ListProjects(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProjectListResponse{Projects: names})
}

// --- Nodes ---

func (h *EditorHandler) listNodes(c *gin.Context) {
	ids, err := h.service.ListNodeIDs()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, NodeListResponse{Nodes: ids})
}

func (h *EditorHandler) createNode(c *gin.Context) {
	var req CreateNodeRequest
	if !bindJSON(c, &req) {
		return
	}
	node, err := h.service.EnsureNode(req.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, node)
}

func (h *EditorHandler) getNode(c *gin.Context) {
	node, err := h.service.GetNode(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// saveNode creates the node when it does not exist yet.
func (h *EditorHandler) saveNode(c *gin.Context) {
	var update service.NodeUpdate
	if !bindJSON(c, &update) {
		return
	}
	id := c.Param("id")
	if _, err := h.service.EnsureNode(id); err != nil {
		handleServiceError(c, err)
		return
	}
	node, err := h.service.SaveNode(id, update)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

func (h *EditorHandler) removeNode(c *gin.Context) {
	if err := h.service.RemoveNode(c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EditorHandler) refreshScript(c *gin.Context) {
	node, err := h.service.RefreshScript(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

func (h *EditorHandler) runNode(c *gin.Context) {
	id := c.Param("id")
	res, err := h.service.RunNodeScript(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	node, err := h.service.GetNode(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, RunNodeResponse{
		ScriptResult:   res,
		VisibleChoices: res.VisibleChoices(node.Choices),
	})
}

// --- Choices ---

// addChoice adds the posted choice, or a fresh empty one when the body is empty.
func (h *EditorHandler) addChoice(c *gin.Context) {
	var choice *models.Choice
	if c.Request.ContentLength != 0 {
		choice = &models.Choice{}
		if !bindJSON(c, choice) {
			return
		}
	}
	node, err := h.service.AddChoice(c.Param("id"), choice)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, node)
}

func (h *EditorHandler) updateChoice(c *gin.Context) {
	var choice models.Choice
	if !bindJSON(c, &choice) {
		return
	}
	node, err := h.service.UpdateChoice(c.Param("id"), c.Param("choiceId"), choice)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

func (h *EditorHandler) removeChoice(c *gin.Context) {
	node, err := h.service.RemoveChoice(c.Param("id"), c.Param("choiceId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// --- Player data ---

func (h *EditorHandler) getPlayerData(c *gin.Context) {
	data, err := h.service.PlayerData()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *EditorHandler) setPlayerData(c *gin.Context) {
	var data models.PlayerData
	if !bindJSON(c, &data) {
		return
	}
	if err := h.service.SetPlayerData(data); err != nil {
		handleServiceError(c, err)
		return
	}
	h.getPlayerData(c)
}

func (h *EditorHandler) setPlayerVar(c *gin.Context) {
	var req PlayerVarRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.SetPlayerVar(c.Param("key"), req.Value); err != nil {
		handleServiceError(c, err)
		return
	}
	h.getPlayerData(c)
}

func (h *EditorHandler) deletePlayerVar(c *gin.Context) {
	if err := h.service.DeletePlayerVar(c.Param("key")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Scripts ---

func (h *EditorHandler) executeScript(c *gin.Context) {
	var req ExecuteScriptRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.ExecuteScript(c.Request.Context(), req.Node, req.PlayerData, req.Script)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *EditorHandler) checkScript(c *gin.Context) {
	var req CheckScriptRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.CheckScript(req.Script); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, CheckScriptResponse{Valid: true})
}

// --- Graph ---

func (h *EditorHandler) getGraph(c *gin.Context) {
	g, err := h.service.Graph()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	stats, err := h.service.Stats()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, GraphResponse{Graph: g, Stats: stats})
}

func (h *EditorHandler) getGraphDOT(c *gin.Context) {
	g, err := h.service.Graph()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/vnd.graphviz; charset=utf-8", []byte(graph.DOT(g)))
}
