package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	reserrors "innkeep/internal/reservations/errors"
	"innkeep/internal/reservations/service"
	roomsrepo "innkeep/internal/rooms/repository"
	apperrors "innkeep/pkg/errors"
	httputil "innkeep/pkg/http"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

type ReservationHandler struct {
	service service.ReservationService
	rooms   roomsrepo.RoomCatalog
	log     *logger.Logger
}

func NewReservationHandler(svc service.ReservationService, rooms roomsrepo.RoomCatalog, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: svc,
		rooms:   rooms,
		log:     log,
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/reservations", h.Create)
	router.GET("/reservations/:id", h.GetByID)
	router.PATCH("/reservations/:id", h.Update)
	router.POST("/reservations/:id/confirm", h.Confirm)
	router.POST("/reservations/:id/complete", h.Complete)
	router.POST("/reservations/:id/cancel", h.Cancel)
	router.GET("/reservations/:id/cancellation-fee", h.CancellationFee)
	router.POST("/reservations/:id/extras", h.AddExtra)
	router.DELETE("/reservations/:id/extras/:index", h.RemoveExtra)

	router.GET("/guests/:guest_id/reservations", h.ListByGuest)

	router.GET("/availability", h.Availability)
	router.GET("/availability/rooms", h.AvailableRooms)
	router.GET("/availability/conflicts", h.Conflicts)
	router.GET("/occupancy", h.Occupancy)
	router.GET("/stats", h.Stats)

	router.GET("/rooms", h.ListRooms)
	router.GET("/rooms/:id", h.GetRoom)
}

type createReservationRequest struct {
	RoomID   string               `json:"room_id"`
	GuestID  string               `json:"guest_id"`
	CheckIn  time.Time            `json:"check_in"`
	CheckOut time.Time            `json:"check_out"`
	Extras   []model.ExtraService `json:"extras,omitempty"`
	Opinions string               `json:"opinions,omitempty"`
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	stay, err := model.NewInterval(req.CheckIn, req.CheckOut)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reservation := &model.Reservation{
		RoomID:   req.RoomID,
		GuestID:  req.GuestID,
		Stay:     stay,
		Extras:   req.Extras,
		Opinions: req.Opinions,
	}

	if err := h.service.Create(r.Context(), reservation); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, reservation)
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, reservation)
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.ReservationUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	reservation, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, reservation)
}

func (h *ReservationHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.Confirm(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, reservation)
}

func (h *ReservationHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.Complete(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, reservation)
}

type cancellationResponse struct {
	Reservation *model.Reservation `json:"reservation"`
	Fee         float64            `json:"fee"`
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, fee, err := h.service.Cancel(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, cancellationResponse{Reservation: reservation, Fee: fee})
}

func (h *ReservationHandler) CancellationFee(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	fee, err := h.service.QuoteCancellationFee(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]float64{"fee": fee})
}

func (h *ReservationHandler) AddExtra(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var extra model.ExtraService
	if err := json.NewDecoder(r.Body).Decode(&extra); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	reservation, err := h.service.AddExtra(r.Context(), ps.ByName("id"), extra)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, reservation)
}

func (h *ReservationHandler) RemoveExtra(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	index, err := strconv.Atoi(ps.ByName("index"))
	if err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid extra index: "+ps.ByName("index")))
		return
	}

	reservation, err := h.service.RemoveExtra(r.Context(), ps.ByName("id"), index)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, reservation)
}

func (h *ReservationHandler) ListByGuest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var status *model.Status
	if s := r.URL.Query().Get("status"); s != "" {
		st := model.Status(s)
		status = &st
	}

	reservations, total, err := h.service.ListByGuest(r.Context(), ps.ByName("guest_id"), status, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, reservations, total, limit, int(offset))
}

// parseStayQuery reads check_in/check_out query params, accepting RFC 3339
// timestamps or bare dates.
func parseStayQuery(r *http.Request) (model.Interval, error) {
	checkIn, err := parseTimeParam(r.URL.Query().Get("check_in"))
	if err != nil {
		return model.Interval{}, apperrors.InvalidInput("Invalid check_in parameter")
	}
	checkOut, err := parseTimeParam(r.URL.Query().Get("check_out"))
	if err != nil {
		return model.Interval{}, apperrors.InvalidInput("Invalid check_out parameter")
	}
	return model.NewInterval(checkIn, checkOut)
}

func parseTimeParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func (h *ReservationHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stay, err := parseStayQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	roomID := r.URL.Query().Get("room_id")
	available, err := h.service.IsAvailable(r.Context(), roomID, stay)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]any{
		"room_id":   roomID,
		"check_in":  stay.CheckIn,
		"check_out": stay.CheckOut,
		"available": available,
	})
}

func (h *ReservationHandler) AvailableRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stay, err := parseStayQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rooms, err := h.service.AvailableRooms(r.Context(), stay)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]any{
		"check_in":  stay.CheckIn,
		"check_out": stay.CheckOut,
		"rooms":     rooms,
	})
}

func (h *ReservationHandler) Conflicts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stay, err := parseStayQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	conflicts, err := h.service.ConflictingReservations(r.Context(), r.URL.Query().Get("room_id"), stay)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]any{
		"room_id":   r.URL.Query().Get("room_id"),
		"check_in":  stay.CheckIn,
		"check_out": stay.CheckOut,
		"conflicts": conflicts,
	})
}

func (h *ReservationHandler) Occupancy(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stay, err := parseStayQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rate, err := h.service.OccupancyRate(r.Context(), stay)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]any{
		"check_in":  stay.CheckIn,
		"check_out": stay.CheckOut,
		"rate":      rate,
	})
}

func (h *ReservationHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, stats)
}

func (h *ReservationHandler) ListRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rooms, err := h.rooms.FindAll(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, apperrors.Internal("Failed to list rooms", err))
		return
	}

	total, err := h.rooms.Count(r.Context())
	if err != nil {
		httputil.WriteError(w, apperrors.Internal("Failed to count rooms", err))
		return
	}

	httputil.WritePaginated(w, rooms, total, limit, int(offset))
}

func (h *ReservationHandler) GetRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := h.rooms.FindByID(r.Context(), ps.ByName("id"))
	if err != nil {
		switch {
		case errors.Is(err, reserrors.ErrRoomNotFound):
			httputil.WriteError(w, apperrors.NotFoundWithID("Room", ps.ByName("id")))
		case errors.Is(err, reserrors.ErrInvalidID):
			httputil.WriteError(w, apperrors.InvalidInput("Invalid room ID format"))
		default:
			httputil.WriteError(w, err)
		}
		return
	}

	httputil.WriteSuccess(w, room)
}
