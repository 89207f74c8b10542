package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studybuddy/internal/domain"
	"studybuddy/internal/service"
	"studybuddy/internal/transport/http/ez"
)

// AdminHandler 管理端只读统计
type AdminHandler struct {
	svcs *service.Services
	log  *zap.Logger
}

func NewAdminHandler(svcs *service.Services, l *zap.Logger) *AdminHandler {
	return &AdminHandler{svcs: svcs, log: l}
}

type statsOut struct {
	Users             int `json:"users"`
	Rooms             int `json:"rooms"`
	AvailableRooms    int `json:"availableRooms"`
	Sessions          int `json:"sessions"`
	PublicSessions    int `json:"publicSessions"`
	Reservations      int `json:"reservations"`
	SessionSeatsTaken int `json:"sessionSeatsTaken"`
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin, h.log)

	ez.RegisterAction(e, ez.Action[struct{}, statsOut]{
		Method: http.MethodGet,
		Path:   "/stats",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (statsOut, error) {
			ctx := c.Request.Context()
			var out statsOut

			users, err := h.svcs.Users.List(ctx, domain.UserFilter{})
			if err != nil {
				return out, err
			}
			rooms, err := h.svcs.Rooms.List(ctx, domain.RoomFilter{})
			if err != nil {
				return out, err
			}
			sessions, err := h.svcs.Sessions.List(ctx, domain.SessionFilter{})
			if err != nil {
				return out, err
			}
			reservations, err := h.svcs.Reservations.List(ctx, domain.ReservationFilter{})
			if err != nil {
				return out, err
			}

			out.Users, out.Rooms, out.Sessions, out.Reservations = len(users), len(rooms), len(sessions), len(reservations)
			for _, r := range rooms {
				if r.Available {
					out.AvailableRooms++
				}
			}
			for _, s := range sessions {
				if s.Public {
					out.PublicSessions++
				}
				out.SessionSeatsTaken += len(s.Participants)
			}
			return out, nil
		},
	})
}
