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

type ReservationHandler struct {
	svc *service.ReservationService
	log *zap.Logger
}

func NewReservationHandler(svc *service.ReservationService, l *zap.Logger) *ReservationHandler {
	return &ReservationHandler{svc: svc, log: l}
}

func (h *ReservationHandler) Priority() int { return 30 }

type reservationQuery struct {
	RoomID    string `form:"roomId"`
	SessionID string `form:"sessionId"`
	User      string `form:"user"`
	Date      string `form:"date"`
}

func (h *ReservationHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api, h.log)

	ez.RegisterAction(e, ez.Action[reservationQuery, []domain.Reservation]{
		Method: http.MethodGet,
		Path:   "/reservations",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, q *reservationQuery) ([]domain.Reservation, error) {
			return h.svc.List(c.Request.Context(), domain.ReservationFilter{
				RoomID: q.RoomID, SessionID: q.SessionID, User: q.User, Date: q.Date,
			})
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, *domain.Reservation]{
		Method: http.MethodGet,
		Path:   "/reservations/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Reservation, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})
	ez.RegisterAction(e, ez.Action[domain.ReservationInput, *domain.Reservation]{
		Method: http.MethodPost,
		Path:   "/reservations",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *domain.ReservationInput) (*domain.Reservation, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(e, ez.Action[domain.ReservationPatch, *domain.Reservation]{
		Method: http.MethodPut,
		Path:   "/reservations/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, p *domain.ReservationPatch) (*domain.Reservation, error) {
			return h.svc.Update(c.Request.Context(), c.Param("id"), *p)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, resp.Msg]{
		Method: http.MethodDelete,
		Path:   "/reservations/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Msg, error) {
			if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return resp.Msg{}, err
			}
			return deletedMsg("Reservation"), nil
		},
	})
}
