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

type UserHandler struct {
	svc *service.UserService
	log *zap.Logger
}

func NewUserHandler(svc *service.UserService, l *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: l}
}

type userQuery struct {
	Role string `form:"role"`
}

func (h *UserHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api, h.log)

	ez.RegisterAction(e, ez.Action[userQuery, []domain.User]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, q *userQuery) ([]domain.User, error) {
			return h.svc.List(c.Request.Context(), domain.UserFilter{Role: q.Role})
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})
	ez.RegisterAction(e, ez.Action[domain.UserInput, *domain.User]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *domain.UserInput) (*domain.User, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(e, ez.Action[domain.UserPatch, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, p *domain.UserPatch) (*domain.User, error) {
			return h.svc.Update(c.Request.Context(), c.Param("id"), *p)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, resp.Msg]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Msg, error) {
			if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return resp.Msg{}, err
			}
			return deletedMsg("User"), nil
		},
	})
}
