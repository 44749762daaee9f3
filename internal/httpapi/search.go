package httpapi

import (
	"net/http"
	"strconv"

	"musicapp/internal/http/respond"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(w, "invalid limit")
			return
		}
		limit = n
	}
	res, err := s.search.Search(r.Context(), q.Get("query"), limit)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}
