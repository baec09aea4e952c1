package server

import (
	"errors"
	"net/http"
	"strconv"

	httpmiddleware "github.com/wolfeidau/reservations/internal/http"
	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/recommend"
)

type recommendationsResponse struct {
	Success bool          `json:"success"`
	Dishes  []models.Dish `json:"dishes"`
}

type dishResponse struct {
	Success bool        `json:"success"`
	Dish    models.Dish `json:"dish"`
}

func (s *Server) listRecommendations(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()

	limit := recommend.DefaultLimit
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return httpmiddleware.BadRequest("limit must be a positive integer")
		}
		limit = n
	}

	dishes := s.catalog.Recommend(query.Get("tag"), limit)

	httpmiddleware.WriteJSON(w, http.StatusOK, recommendationsResponse{Success: true, Dishes: dishes})
	return nil
}

func (s *Server) getRecommendation(w http.ResponseWriter, r *http.Request) error {
	dish, err := s.catalog.Get(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, recommend.ErrDishNotFound) {
			return httpmiddleware.NotFound("Dish not found")
		}
		return err
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, dishResponse{Success: true, Dish: dish})
	return nil
}
