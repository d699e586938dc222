package database

import "errors"

// Ошибки бизнес-правил. HTTP-слой транслирует их в 4xx,
// всё остальное уходит наверх как внутренняя ошибка.
var (
	ErrSlotNotFound       = errors.New("slot not found")
	ErrSlotFull           = errors.New("slot is fully booked")
	ErrDuplicateBooking   = errors.New("user already has an active booking for this slot")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrNotCancellable     = errors.New("booking is not in a cancellable status")
	ErrInvalidTransition  = errors.New("booking status does not allow this transition")
	ErrPastDate           = errors.New("slot date is in the past")
	ErrDateTooFar         = errors.New("slot date is beyond the booking horizon")
	ErrInvalidDateRange   = errors.New("period end is before its start")
	ErrNoTimeRanges       = errors.New("at least one time range is required")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPhone       = errors.New("phone number is invalid")
	ErrInvalidLanguage    = errors.New("unsupported language")
	ErrServiceNotFound    = errors.New("service not found")
	ErrPlanNotFound       = errors.New("membership plan not found")
	ErrPlanInactive       = errors.New("membership plan is not active")
	ErrPlanVisitsRequired = errors.New("visits plan requires a total visits count")
	ErrAlreadyHasMembership = errors.New("user already has an active membership")
	ErrMembershipNotFound   = errors.New("membership not found")
	ErrMembershipNotActive  = errors.New("membership is not active")
	ErrMembershipNotFrozen  = errors.New("membership is not frozen")
	ErrFreezeLimitExceeded  = errors.New("freeze limit exceeded")
	ErrNoOpenFreeze         = errors.New("no open freeze found")
	ErrNoVisitsRemaining    = errors.New("no visits remaining")
	ErrBarItemNotFound      = errors.New("bar item not found")
	ErrBarOrderNotFound     = errors.New("bar order not found")
	ErrFeedbackNotAllowed   = errors.New("feedback allowed only for completed bookings")
	ErrFeedbackExists       = errors.New("feedback already exists for this booking")
	ErrInvalidRating        = errors.New("rating must be between 1 and 5")
	ErrCommentTooLong       = errors.New("comment is too long")
	ErrEmptyOrder           = errors.New("order must contain at least one item")
	ErrInvalidOrderStatus   = errors.New("unknown bar order status")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAdminNotFound        = errors.New("admin not found")
)
