package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	httpmiddleware "github.com/wolfeidau/reservations/internal/http"
	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/session"
	"github.com/wolfeidau/reservations/internal/store"
	"github.com/wolfeidau/reservations/internal/telemetry"
)

const (
	incompleteReservationMessage = "Please Fill Full Reservation Form!"
	reservationSentMessage       = "Reservation Sent Successfully!"
	reservationNotFoundMessage   = "Reservation not found"
)

type reservationRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

func (req *reservationRequest) trim() {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
}

func (req *reservationRequest) validate() error {
	if req.FirstName == "" || req.LastName == "" || req.Email == "" ||
		req.Phone == "" || req.Date == "" || req.Time == "" {
		return httpmiddleware.BadRequest(incompleteReservationMessage)
	}

	for _, msg := range []string{
		validateName("First name", req.FirstName),
		validateName("Last name", req.LastName),
		validateEmail(req.Email),
		validatePhone(req.Phone),
		validateDate(req.Date),
		validateTime(req.Time),
	} {
		if msg != "" {
			return httpmiddleware.BadRequest(msg)
		}
	}
	return nil
}

type slotRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type reservationResponse struct {
	Success     bool                `json:"success"`
	Reservation *models.Reservation `json:"reservation"`
}

type reservationListResponse struct {
	Success      bool                  `json:"success"`
	Reservations []*models.Reservation `json:"reservations"`
}

func (s *Server) sendReservation(w http.ResponseWriter, r *http.Request) error {
	var req reservationRequest
	if err := httpmiddleware.BodyFromContext(r.Context()).Bind(&req); err != nil {
		return err
	}
	req.trim()

	if err := req.validate(); err != nil {
		return err
	}

	now := s.now()
	res := &models.Reservation{
		ID:        uuid.Must(uuid.NewV7()),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Date:      req.Date,
		Time:      req.Time,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if userID, ok := sessionUserID(r); ok {
		res.UserID = &userID
	}

	if err := s.stores.Reservations.Create(r.Context(), res); err != nil {
		return err
	}

	telemetry.GetMetrics().ReservationsCreated.Add(r.Context(), 1)
	zerolog.Ctx(r.Context()).Info().Str("reservation_id", res.ID.String()).Msg("Reservation created")

	httpmiddleware.WriteJSON(w, http.StatusCreated, messageResponse{Success: true, Message: reservationSentMessage})
	return nil
}

func (s *Server) listReservations(w http.ResponseWriter, r *http.Request) error {
	userID, ok := sessionUserID(r)
	if !ok {
		return httpmiddleware.Unauthorized(loginRequiredMessage)
	}

	list, err := s.stores.Reservations.ListByUser(r.Context(), userID)
	if err != nil {
		return err
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, reservationListResponse{Success: true, Reservations: list})
	return nil
}

func (s *Server) updateReservation(w http.ResponseWriter, r *http.Request) error {
	res, err := s.ownedReservation(r)
	if err != nil {
		return err
	}

	var req slotRequest
	if err := httpmiddleware.BodyFromContext(r.Context()).Bind(&req); err != nil {
		return err
	}
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)

	if req.Date == "" && req.Time == "" {
		return httpmiddleware.BadRequest("Provide a new date or time!")
	}
	if req.Date != "" {
		if msg := validateDate(req.Date); msg != "" {
			return httpmiddleware.BadRequest(msg)
		}
		res.Date = req.Date
	}
	if req.Time != "" {
		if msg := validateTime(req.Time); msg != "" {
			return httpmiddleware.BadRequest(msg)
		}
		res.Time = req.Time
	}
	res.UpdatedAt = s.now()

	if err := s.stores.Reservations.Update(r.Context(), res); err != nil {
		return reservationError(err)
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, reservationResponse{Success: true, Reservation: res})
	return nil
}

func (s *Server) deleteReservation(w http.ResponseWriter, r *http.Request) error {
	res, err := s.ownedReservation(r)
	if err != nil {
		return err
	}

	if err := s.stores.Reservations.Delete(r.Context(), res.ID); err != nil {
		return reservationError(err)
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Reservation cancelled"})
	return nil
}

// ownedReservation loads the reservation named by the {id} path value. Reservations owned by
// someone else are reported as not found.
func (s *Server) ownedReservation(r *http.Request) (*models.Reservation, error) {
	userID, ok := sessionUserID(r)
	if !ok {
		return nil, httpmiddleware.Unauthorized(loginRequiredMessage)
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, httpmiddleware.NotFound(reservationNotFoundMessage)
	}

	res, err := s.stores.Reservations.Get(r.Context(), id)
	if err != nil {
		return nil, reservationError(err)
	}
	if !res.OwnedBy(userID) {
		return nil, httpmiddleware.NotFound(reservationNotFoundMessage)
	}

	return res, nil
}

func reservationError(err error) error {
	if errors.Is(err, store.ErrReservationNotFound) {
		return httpmiddleware.NotFound(reservationNotFoundMessage)
	}
	return err
}

// sessionUserID returns the logged in user recorded in the request's session.
func sessionUserID(r *http.Request) (uuid.UUID, bool) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(sess.GetString(sessionUserKey))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
