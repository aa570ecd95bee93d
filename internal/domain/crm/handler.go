package crm

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"realtorcrm/internal/domain/lead"
	"realtorcrm/internal/pkg/dberr"
	"realtorcrm/internal/pkg/response"
)

const (
	MsgCreated      = "Realtor añadido con éxito!"
	MsgUpdated      = "Realtor actualizado con éxito!"
	MsgStageUpdated = "Etapa del funnel actualizada."
	MsgDeleted      = "Realtor eliminado con éxito."
)

// Context keys set by the auth middleware.
const (
	CtxUserID    = "user_id"
	CtxEmail     = "email"
	CtxName      = "name"
	CtxAvatarURL = "avatar_url"
)

// DashboardStream subscribes a websocket to dashboard updates.
type DashboardStream interface {
	Serve(c *gin.Context, ws *Workspace)
}

type Handler struct {
	coordinator *Coordinator
	sessions    *Sessions
	stream      DashboardStream
}

// NewHandler builds the HTTP surface. stream may be nil.
func NewHandler(coordinator *Coordinator, sessions *Sessions, stream DashboardStream) *Handler {
	return &Handler{coordinator: coordinator, sessions: sessions, stream: stream}
}

func (h *Handler) workspace(c *gin.Context) *Workspace {
	uid := c.GetString(CtxUserID)
	if uid == "" {
		response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return nil
	}
	return h.sessions.Get(Identity{
		ID:        uid,
		Email:     c.GetString(CtxEmail),
		Name:      c.GetString(CtxName),
		AvatarURL: c.GetString(CtxAvatarURL),
	})
}

type meResponse struct {
	Identity
	DisplayName string `json:"display_name"`
}

// Me returns the signed-in identity.
func (h *Handler) Me(c *gin.Context) {
	ws := h.workspace(c)
	if ws == nil {
		return
	}
	id := ws.Identity()
	response.Success(c, http.StatusOK, meResponse{Identity: id, DisplayName: id.DisplayName()})
}

// ListLeads returns the workspace collection, optionally filtered and sorted.
// GET /leads?q=&sort=&dir=asc|desc
func (h *Handler) ListLeads(c *gin.Context) {
	ws := h.workspace(c)
	if ws == nil {
		return
	}

	q := lead.Query{
		Search: c.Query("q"),
		Sort:   lead.SortColumn(c.Query("sort")),
		Desc:   strings.EqualFold(c.Query("dir"), "desc"),
	}
	if q.Sort != "" && !q.Sort.Valid() {
		response.Error(c, http.StatusBadRequest, "INVALID_SORT", "Unknown sort column")
		return
	}

	col, err := h.coordinator.Leads(c.Request.Context(), ws)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, q.Apply(col.Leads()))
}

// Refresh reloads the collection from the store.
func (h *Handler) Refresh(c *gin.Context) {
	ws := h.workspace(c)
	if ws == nil {
		return
	}
	col, err := h.coordinator.Refresh(c.Request.Context(), ws)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, col.Leads())
}

type leadResponse struct {
	Lead    lead.Lead `json:"lead"`
	Message string    `json:"message"`
}

func (h *Handler) CreateLead(c *gin.Context) {
	ws := h.workspace(c)
	if ws == nil {
		return
	}
	var in lead.LeadInput
	if !bindInput(c, &in) {
		return
	}
	if _, err := h.coordinator.Leads(c.Request.Context(), ws); err != nil {
		h.handleError(c, err)
		return
	}

	created, err := h.coordinator.Create(c.Request.Context(), ws, in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, leadResponse{Lead: created, Message: MsgCreated})
}

func (h *Handler) UpdateLead(c *gin.Context) {
	ws := h.workspace(c)
	if ws == nil {
		return
	}
	var in lead.LeadInput
	if !bindInput(c, &in) {
		return
	}
	if _, err := h.coordinator.Leads(c.Request.Context(), ws); err != nil {
		h.handleError(c, err)
		return
	}

	updated, err := h.coordinator.Update(c.Request.Context(), ws, c.Param("id"), in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, leadResponse{Lead: updated, Message: MsgUpdated})
}

type stageRequest struct {
	Stage lead.FunnelStage `json:"funnel_stage" binding:"required"`
}

func (h *Handler) TransitionStage(c *gin.Context) {
	ws := h.workspace(c)
	if ws == nil {
		return
	}
	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if _, err := h.coordinator.Leads(c.Request.Context(), ws); err != nil {
		h.handleError(c, err)
		return
	}

	updated, err := h.coordinator.TransitionStage(c.Request.Context(), ws, c.Param("id"), req.Stage)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, leadResponse{Lead: updated, Message: MsgStageUpdated})
}

func (h *Handler) DeleteLead(c *gin.Context) {
	ws := h.workspace(c)
	if ws == nil {
		return
	}
	if _, err := h.coordinator.Leads(c.Request.Context(), ws); err != nil {
		h.handleError(c, err)
		return
	}

	if err := h.coordinator.Delete(c.Request.Context(), ws, c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": c.Param("id"), "message": MsgDeleted})
}

func (h *Handler) ListActivities(c *gin.Context) {
	ws := h.workspace(c)
	if ws == nil {
		return
	}
	items, err := h.coordinator.Activities(c.Request.Context(), ws, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

func (h *Handler) Dashboard(c *gin.Context) {
	ws := h.workspace(c)
	if ws == nil {
		return
	}
	d, err := h.coordinator.Dashboard(c.Request.Context(), ws)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

type stagesResponse struct {
	FunnelStages     []lead.FunnelStage     `json:"funnel_stages"`
	ProductionLevels []lead.ProductionLevel `json:"production_levels"`
	TeamSizes        []lead.TeamSize        `json:"team_sizes"`
	TechAdoption     []lead.TechAdoption    `json:"tech_adoption"`
	AIInterest       []lead.AIInterest      `json:"ai_interest"`
}

// Stages lists the closed enumerations for pickers.
func (h *Handler) Stages(c *gin.Context) {
	response.Success(c, http.StatusOK, stagesResponse{
		FunnelStages:     lead.Stages,
		ProductionLevels: lead.ProductionLevels,
		TeamSizes:        lead.TeamSizes,
		TechAdoption:     lead.TechAdoptionLevels,
		AIInterest:       lead.AIInterestLevels,
	})
}

// Stream upgrades to a websocket that pushes the dashboard on every change.
func (h *Handler) Stream(c *gin.Context) {
	ws := h.workspace(c)
	if ws == nil {
		return
	}
	if h.stream == nil {
		response.Error(c, http.StatusNotImplemented, "STREAM_DISABLED", "Realtime updates are disabled")
		return
	}
	if _, err := h.coordinator.Leads(c.Request.Context(), ws); err != nil {
		h.handleError(c, err)
		return
	}
	h.stream.Serve(c, ws)
}

// SignOut drops the in-memory workspace.
func (h *Handler) SignOut(c *gin.Context) {
	uid := c.GetString(CtxUserID)
	if uid != "" {
		h.sessions.Drop(uid)
	}
	c.Status(http.StatusNoContent)
}

func bindInput(c *gin.Context, in *lead.LeadInput) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		var enumErr *lead.EnumError
		if errors.As(err, &enumErr) {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", enumErr.Error(),
				map[string]string{enumErr.Field: "oneof"})
			return false
		}
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return false
	}
	return true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var me *MutationError
	if !errors.As(err, &me) {
		me = newMutationError("request", err)
	}

	switch me.Kind {
	case KindValidation:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", me.Message)
	case KindNotPermitted:
		response.Error(c, http.StatusForbidden, "NOT_PERMITTED", me.Message)
	case KindNotFound:
		response.Error(c, http.StatusNotFound, "NOT_FOUND", me.Message)
	case KindSilentRejection:
		response.Error(c, http.StatusNotFound, "NO_ROWS_AFFECTED", me.Message)
	case KindSessionExpired:
		h.sessions.Drop(c.GetString(CtxUserID))
		response.Error(c, http.StatusUnauthorized, "SESSION_EXPIRED", me.Message)
	case KindRejected:
		var se *dberr.StoreError
		if errors.As(me.Err, &se) && se.UniqueViolation() {
			response.Error(c, http.StatusConflict, "DUPLICATE", me.Message)
			return
		}
		response.Error(c, http.StatusUnprocessableEntity, "STORE_REJECTED", me.Message)
	default:
		response.Error(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", me.Message)
	}
}
