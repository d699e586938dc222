package api

import (
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"fitclub/internal/models"
)

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil || body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, admin, err := s.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "admin": admin})
}

func (s *Server) handleAdminMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, adminFromContext(r.Context()))
}

func (s *Server) handlePendingCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.stats.GetPendingCounts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.GetDashboardStats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleAdminBookings фильтрует по статусу либо периоду; без
// параметров отдаёт записи на сегодня.
func (s *Server) handleAdminBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if status := q.Get("status"); status != "" {
		bookings, err := s.bookings.GetBookingsByStatus(r.Context(), status)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
		return
	}

	from, to := time.Now(), time.Now()
	if raw := q.Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		from = parsed
	}
	if raw := q.Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		to = parsed
	}

	bookings, err := s.bookings.GetBookingsBetween(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *Server) handleConfirmBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	if err := s.bookings.ConfirmBooking(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.BookingStatusConfirmed})
}

func (s *Server) handleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	if err := s.bookings.CompleteBooking(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.BookingStatusCompleted})
}

func (s *Server) handleAdminCancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	booking, err := s.bookings.CancelBooking(r.Context(), id, true)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleAdminSlots(w http.ResponseWriter, r *http.Request) {
	s.handleClientSlots(w, r)
}

func (s *Server) handleCreateSlot(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ServiceID  int64  `json:"service_id"`
		Date       string `json:"date"`
		StartTime  string `json:"start_time"`
		EndTime    string `json:"end_time"`
		Specialist string `json:"specialist"`
		Capacity   int64  `json:"capacity"`
	}
	if err := decodeBody(r, &body); err != nil || body.ServiceID <= 0 {
		writeError(w, http.StatusBadRequest, "service_id is required")
		return
	}

	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	slot, err := s.slots.CreateSlot(r.Context(), &models.Slot{
		ServiceID:  body.ServiceID,
		Date:       date,
		StartTime:  body.StartTime,
		EndTime:    body.EndTime,
		Specialist: body.Specialist,
		Capacity:   body.Capacity,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

func (s *Server) handleGenerateSlots(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ServiceID  int64              `json:"service_id"`
		From       string             `json:"from"`
		To         string             `json:"to"`
		Times      []models.TimeRange `json:"times"`
		Weekdays   []time.Weekday     `json:"weekdays"`
		Specialist string             `json:"specialist"`
		Capacity   int64              `json:"capacity"`
	}
	if err := decodeBody(r, &body); err != nil || body.ServiceID <= 0 {
		writeError(w, http.StatusBadRequest, "service_id is required")
		return
	}

	from, err := time.Parse("2006-01-02", body.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := time.Parse("2006-01-02", body.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	created, err := s.slots.GenerateSlots(r.Context(), body.ServiceID, from, to, body.Times, body.Weekdays, body.Specialist, body.Capacity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"created": created})
}

func (s *Server) handleUpdateSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid slot id")
		return
	}

	var body struct {
		Specialist *string `json:"specialist"`
		Capacity   *int64  `json:"capacity"`
		Status     *string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.slots.UpdateSlot(r.Context(), id, body.Specialist, body.Capacity, body.Status); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDeleteSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid slot id")
		return
	}
	if err := s.slots.DeleteSlot(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAdminCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.repo.ListServiceCategories(r.Context(), false)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var category models.ServiceCategory
	if err := decodeBody(r, &category); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.repo.CreateServiceCategory(r.Context(), &category); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleAdminServices(w http.ResponseWriter, r *http.Request) {
	services, err := s.repo.ListServices(r.Context(), 0, false)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

func (s *Server) handleCreateService(w http.ResponseWriter, r *http.Request) {
	var svc models.Service
	if err := decodeBody(r, &svc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.repo.CreateService(r.Context(), &svc); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, svc)
}

func (s *Server) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	var svc models.Service
	if err := decodeBody(r, &svc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	svc.ID = id
	if err := s.repo.UpdateService(r.Context(), &svc); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (s *Server) handleAdminPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.memberships.GetPlans(r.Context(), false)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var plan models.MembershipPlan
	if err := decodeBody(r, &plan); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.memberships.CreatePlan(r.Context(), &plan); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	var plan models.MembershipPlan
	if err := decodeBody(r, &plan); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	plan.ID = id
	if err := s.memberships.UpdatePlan(r.Context(), &plan); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleSearchClients(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": users})
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
	}
	if err := decodeBody(r, &body); err != nil || body.FirstName == "" {
		writeError(w, http.StatusBadRequest, "first_name is required")
		return
	}

	user, err := s.users.CreateManual(r.Context(), body.FirstName, body.LastName, body.Phone)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleMergeClients(w http.ResponseWriter, r *http.Request) {
	result, err := s.users.MergeDuplicatePhones(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleClientMemberships(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	history, err := s.memberships.GetHistory(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"memberships": history})
}

func (s *Server) handlePurchaseMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	var body struct {
		PlanID      int64  `json:"plan_id"`
		PaymentType string `json:"payment_type"`
	}
	if err := decodeBody(r, &body); err != nil || body.PlanID <= 0 {
		writeError(w, http.StatusBadRequest, "plan_id is required")
		return
	}

	membership, err := s.memberships.Purchase(r.Context(), id, body.PlanID, body.PaymentType)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, membership)
}

func (s *Server) handleAdminFreeze(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid membership id")
		return
	}
	freeze, err := s.memberships.Freeze(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, freeze)
}

func (s *Server) handleAdminUnfreeze(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid membership id")
		return
	}
	days, err := s.memberships.Unfreeze(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"days_frozen": days})
}

func (s *Server) handleFeedbackList(w http.ResponseWriter, r *http.Request) {
	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	feedback, err := s.repo.ListFeedback(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feedback": feedback})
}

func (s *Server) handleAdminBarItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.bar.GetMenu(r.Context(), 0, false)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleCreateBarItem(w http.ResponseWriter, r *http.Request) {
	var item models.BarItem
	if err := decodeBody(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.repo.CreateBarItem(r.Context(), &item); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateBarItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var item models.BarItem
	if err := decodeBody(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	item.ID = id
	if err := s.repo.UpdateBarItem(r.Context(), &item); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleAdminBarOrders(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.BarOrderStatusPending
	}

	orders, err := s.bar.GetOrdersByStatus(r.Context(), status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (s *Server) handleSetBarOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil || body.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	if err := s.bar.SetOrderStatus(r.Context(), id, body.Status); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": body.Status})
}

func (s *Server) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := time.Parse("2006-01-02", q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := time.Parse("2006-01-02", q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	path, err := s.exporter.ExportBookings(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, path)
}
