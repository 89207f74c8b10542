package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studybuddy/internal/domain"
	"studybuddy/internal/service"
	"studybuddy/internal/transport/http/ez"
	resp "studybuddy/internal/transport/http/response"
)

type RoomHandler struct {
	svc *service.RoomService
	log *zap.Logger
}

func NewRoomHandler(svc *service.RoomService, l *zap.Logger) *RoomHandler {
	return &RoomHandler{svc: svc, log: l}
}

func (h *RoomHandler) Priority() int { return 10 }

type roomQuery struct {
	Available   *bool `form:"available"`
	MinCapacity *int  `form:"minCapacity"`
}

func (h *RoomHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api, h.log)

	ez.RegisterAction(e, ez.Action[roomQuery, []domain.Room]{
		Method: http.MethodGet,
		Path:   "/study-rooms",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, q *roomQuery) ([]domain.Room, error) {
			return h.svc.List(c.Request.Context(), domain.RoomFilter{Available: q.Available, MinCapacity: q.MinCapacity})
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, *domain.Room]{
		Method: http.MethodGet,
		Path:   "/study-rooms/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Room, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})
	ez.RegisterAction(e, ez.Action[domain.RoomInput, *domain.Room]{
		Method: http.MethodPost,
		Path:   "/study-rooms",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *domain.RoomInput) (*domain.Room, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(e, ez.Action[domain.RoomPatch, *domain.Room]{
		Method: http.MethodPut,
		Path:   "/study-rooms/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, p *domain.RoomPatch) (*domain.Room, error) {
			return h.svc.Update(c.Request.Context(), c.Param("id"), *p)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, resp.Msg]{
		Method: http.MethodDelete,
		Path:   "/study-rooms/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Msg, error) {
			if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return resp.Msg{}, err
			}
			return deletedMsg("Study room"), nil
		},
	})
}
