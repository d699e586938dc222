package api

import (
	"net/http"
	"strconv"
	"time"

	"fitclub/internal/models"
)

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// handleCatalog отдаёт активные категории с вложенными услугами.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	categories, err := s.repo.ListServiceCategories(r.Context(), true)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	type categoryOut struct {
		*models.ServiceCategory
		Services []*models.Service `json:"services"`
	}

	out := make([]categoryOut, 0, len(categories))
	for _, cat := range categories {
		services, err := s.repo.ListServices(r.Context(), cat.ID, true)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out = append(out, categoryOut{ServiceCategory: cat, Services: services})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func (s *Server) handleClientSlots(w http.ResponseWriter, r *http.Request) {
	var date *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		date = &parsed
	}

	var serviceID int64
	if raw := r.URL.Query().Get("service_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid service_id")
			return
		}
		serviceID = id
	}

	slots, err := s.slots.GetSlots(r.Context(), date, serviceID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var body struct {
		SlotID  int64  `json:"slot_id"`
		Comment string `json:"comment"`
	}
	if err := decodeBody(r, &body); err != nil || body.SlotID <= 0 {
		writeError(w, http.StatusBadRequest, "slot_id is required")
		return
	}

	booking, err := s.bookings.CreateBooking(r.Context(), user.ID, body.SlotID, body.Comment)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	bookings, err := s.bookings.GetUserBookings(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	// Отменять можно только свои брони
	booking, err := s.bookings.GetBooking(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if booking.UserID != user.ID {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}

	cancelled, err := s.bookings.CancelBooking(r.Context(), id, false)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cancelled)
}

func (s *Server) handleLeaveFeedback(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	var body struct {
		Rating  int64  `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.bookings.LeaveFeedback(r.Context(), user.ID, id, body.Rating, body.Comment); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.memberships.GetPlans(r.Context(), true)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

func (s *Server) handleCurrentMembership(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	membership, err := s.memberships.GetCurrent(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"membership": membership})
}

func (s *Server) handleMembershipHistory(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	history, err := s.memberships.GetHistory(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"memberships": history})
}

func (s *Server) handlePurchaseOwnMembership(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var body struct {
		PlanID      int64  `json:"plan_id"`
		PaymentType string `json:"payment_type"`
	}
	if err := decodeBody(r, &body); err != nil || body.PlanID <= 0 {
		writeError(w, http.StatusBadRequest, "plan_id is required")
		return
	}

	membership, err := s.memberships.Purchase(r.Context(), user.ID, body.PlanID, body.PaymentType)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, membership)
}

// currentMembershipID находит действующий абонемент клиента для
// заморозки и разморозки из Mini App.
func (s *Server) currentMembershipID(r *http.Request) (int64, error) {
	user := userFromContext(r.Context())
	membership, err := s.memberships.GetCurrent(r.Context(), user.ID)
	if err != nil {
		return 0, err
	}
	if membership == nil {
		return 0, nil
	}
	return membership.ID, nil
}

func (s *Server) handleFreezeMembership(w http.ResponseWriter, r *http.Request) {
	id, err := s.currentMembershipID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if id == 0 {
		writeError(w, http.StatusNotFound, "no active membership")
		return
	}

	freeze, err := s.memberships.Freeze(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, freeze)
}

func (s *Server) handleUnfreezeMembership(w http.ResponseWriter, r *http.Request) {
	id, err := s.currentMembershipID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if id == 0 {
		writeError(w, http.StatusNotFound, "no active membership")
		return
	}

	days, err := s.memberships.Unfreeze(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"days_frozen": days})
}

func (s *Server) handleBarCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.bar.GetCategories(r.Context(), true)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (s *Server) handleBarMenu(w http.ResponseWriter, r *http.Request) {
	var categoryID int64
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		categoryID = id
	}

	items, err := s.bar.GetMenu(r.Context(), categoryID, true)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleCreateBarOrder(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var body struct {
		Items []models.OrderLine `json:"items"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	order, err := s.bar.CreateOrder(r.Context(), user.ID, body.Items)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleMyBarOrders(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	orders, err := s.bar.GetUserOrders(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r.Context()))
}

func (s *Server) handleUpdateLanguage(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var body struct {
		Language string `json:"language"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.users.UpdateLanguage(r.Context(), user.ExternalID, body.Language); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"language": body.Language})
}

func (s *Server) handleUpdatePhone(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var body struct {
		Phone string `json:"phone"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.users.UpdatePhone(r.Context(), user.ExternalID, body.Phone); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
