package response

import (
	"net/http"
	"testing"

	"studybuddy/internal/domain"
)

func TestStatus(t *testing.T) {
	cases := map[domain.Code]int{
		domain.CodeUserNotFound:           http.StatusNotFound,
		domain.CodeReservationNotFound:    http.StatusNotFound,
		domain.CodeEmailConflict:          http.StatusConflict,
		domain.CodeDuplicateRoom:          http.StatusConflict,
		domain.CodeTimeConflict:           http.StatusConflict,
		domain.CodeInvalidInput:           http.StatusBadRequest,
		domain.CodeOutsideOpeningHours:    http.StatusBadRequest,
		domain.CodeRoomHasReservations:    http.StatusBadRequest,
		domain.CodeSessionHasReservations: http.StatusBadRequest,
		domain.CodeCapacityFull:           http.StatusBadRequest,
		domain.CodeOwnerCannotLeave:       http.StatusBadRequest,
		"":                                http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := Status(code); got != want {
			t.Errorf("Status(%q) = %d, want %d", code, got, want)
		}
	}
}
