package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studybuddy/internal/domain"
	"studybuddy/internal/schedule"
	"studybuddy/internal/service"
	"studybuddy/internal/transport/http/ez"
	resp "studybuddy/internal/transport/http/response"
)

type SessionHandler struct {
	svc *service.SessionService
	log *zap.Logger
}

func NewSessionHandler(svc *service.SessionService, l *zap.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, log: l}
}

func (h *SessionHandler) Priority() int { return 20 }

type sessionQuery struct {
	Subject     string `form:"subject"`
	Type        string `form:"type"`
	MinCapacity *int   `form:"minCapacity"`
	Public      *bool  `form:"public"`
	Location    string `form:"location"`
	StartTime   string `form:"startTime"`
}

func (q sessionQuery) filter() (domain.SessionFilter, error) {
	f := domain.SessionFilter{
		Subject: q.Subject, Type: q.Type, MinCapacity: q.MinCapacity,
		Public: q.Public, Location: q.Location,
	}
	if q.StartTime != "" {
		t, err := schedule.ParseInstant(q.StartTime)
		if err != nil {
			return f, domain.Invalid("invalid query", map[string]string{"startTime": "must be an ISO-8601 date-time"})
		}
		f.StartTime = &t
	}
	return f, nil
}

type participantIn struct {
	UserID string `json:"userId"`
}

// membership join/leave 的响应；pending 时无 participants 且返回 202
type membership struct {
	Message      string   `json:"message"`
	Participants []string `json:"participants,omitempty"`
	status       int
}

func (m membership) StatusCode() int { return m.status }

func (h *SessionHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api, h.log)

	ez.RegisterAction(e, ez.Action[sessionQuery, []domain.Session]{
		Method: http.MethodGet,
		Path:   "/study-sessions",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, q *sessionQuery) ([]domain.Session, error) {
			f, err := q.filter()
			if err != nil {
				return nil, err
			}
			return h.svc.List(c.Request.Context(), f)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, *domain.Session]{
		Method: http.MethodGet,
		Path:   "/study-sessions/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Session, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})
	ez.RegisterAction(e, ez.Action[domain.SessionInput, *domain.Session]{
		Method: http.MethodPost,
		Path:   "/study-sessions",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *domain.SessionInput) (*domain.Session, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(e, ez.Action[domain.SessionPatch, *domain.Session]{
		Method: http.MethodPut,
		Path:   "/study-sessions/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, p *domain.SessionPatch) (*domain.Session, error) {
			return h.svc.Update(c.Request.Context(), c.Param("id"), *p)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, resp.Msg]{
		Method: http.MethodDelete,
		Path:   "/study-sessions/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Msg, error) {
			if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return resp.Msg{}, err
			}
			return deletedMsg("Study session"), nil
		},
	})

	ez.RegisterAction(e, ez.Action[participantIn, membership]{
		Method: http.MethodPost,
		Path:   "/study-sessions/:id/join",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *participantIn) (membership, error) {
			s, res, err := h.svc.Join(c.Request.Context(), c.Param("id"), in.UserID)
			if err != nil {
				return membership{}, err
			}
			if res == domain.JoinPending {
				return membership{Message: "Request to join sent to session owner", status: http.StatusAccepted}, nil
			}
			return membership{Message: "Successfully joined session", Participants: s.Participants, status: http.StatusOK}, nil
		},
	})
	ez.RegisterAction(e, ez.Action[participantIn, membership]{
		Method: http.MethodPost,
		Path:   "/study-sessions/:id/leave",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *participantIn) (membership, error) {
			s, err := h.svc.Leave(c.Request.Context(), c.Param("id"), in.UserID)
			if err != nil {
				return membership{}, err
			}
			return membership{Message: "Successfully left session", Participants: s.Participants, status: http.StatusOK}, nil
		},
	})
}
