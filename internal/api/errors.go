package api

import (
	"errors"
	"net/http"

	"fitclub/internal/database"
)

// httpStatusFor переводит ошибки бизнес-правил в HTTP-коды. Всё,
// что не распознано, считается внутренней ошибкой.
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrSlotNotFound),
		errors.Is(err, database.ErrBookingNotFound),
		errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrServiceNotFound),
		errors.Is(err, database.ErrPlanNotFound),
		errors.Is(err, database.ErrMembershipNotFound),
		errors.Is(err, database.ErrBarItemNotFound),
		errors.Is(err, database.ErrBarOrderNotFound),
		errors.Is(err, database.ErrAdminNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrSlotFull),
		errors.Is(err, database.ErrDuplicateBooking),
		errors.Is(err, database.ErrNotCancellable),
		errors.Is(err, database.ErrInvalidTransition),
		errors.Is(err, database.ErrAlreadyHasMembership),
		errors.Is(err, database.ErrMembershipNotActive),
		errors.Is(err, database.ErrMembershipNotFrozen),
		errors.Is(err, database.ErrFreezeLimitExceeded),
		errors.Is(err, database.ErrNoOpenFreeze),
		errors.Is(err, database.ErrNoVisitsRemaining),
		errors.Is(err, database.ErrFeedbackNotAllowed),
		errors.Is(err, database.ErrFeedbackExists),
		errors.Is(err, database.ErrPlanInactive):
		return http.StatusConflict
	case errors.Is(err, database.ErrPastDate),
		errors.Is(err, database.ErrDateTooFar),
		errors.Is(err, database.ErrInvalidDateRange),
		errors.Is(err, database.ErrNoTimeRanges),
		errors.Is(err, database.ErrPlanVisitsRequired),
		errors.Is(err, database.ErrInvalidRating),
		errors.Is(err, database.ErrCommentTooLong),
		errors.Is(err, database.ErrEmptyOrder),
		errors.Is(err, database.ErrInvalidOrderStatus),
		errors.Is(err, database.ErrInvalidPhone),
		errors.Is(err, database.ErrInvalidLanguage):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := httpStatusFor(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
