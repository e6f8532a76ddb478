package session

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/onboard/internal/model/onboarding"
	"github.com/zhouzirui/onboard/internal/store"
	"github.com/zhouzirui/onboard/pkg/utils"
)

// Handler 暴露只读的会话查询接口。
type Handler struct {
	repo store.Repository
}

// New 创建会话处理器
func New(repo store.Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions", h.handleListSessions)
	r.Get("/sessions/{sessionID}", h.handleGetSession)
}

// Detail is the full view of one session.
type Detail struct {
	Session    onboarding.Session   `json:"session"`
	Transcript []onboarding.Record  `json:"transcript"`
	Vehicles   []onboarding.Vehicle `json:"vehicles"`
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	var filter store.ListFilter
	if raw := r.URL.Query().Get("complete"); raw != "" {
		complete, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondError(w, r, http.StatusBadRequest, "complete must be true or false")
			return
		}
		filter.Complete = &complete
	}

	sessions, err := h.repo.ListSessions(r.Context(), filter)
	if err != nil {
		utils.RespondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, sessions)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	ctx := r.Context()

	session, err := h.repo.GetSession(ctx, sessionID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	transcript, err := h.repo.LoadTranscript(ctx, sessionID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	vehicles, err := h.repo.ListVehicles(ctx, sessionID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, Detail{Session: session, Transcript: transcript, Vehicles: vehicles})
}

func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrSessionNotFound) {
		utils.RespondError(w, r, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondError(w, r, http.StatusInternalServerError, err.Error())
}
