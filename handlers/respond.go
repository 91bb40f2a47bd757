package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

// Every endpoint answers with the same envelope:
// {success, data/error, count, total, pagination, token}.
type envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Error      interface{} `json:"error,omitempty"` // string or []string
	Token      string      `json:"token,omitempty"`
	Count      *int        `json:"count,omitempty"`
	Total      *int64      `json:"total,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func respondToken(w http.ResponseWriter, status int, token string, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Token: token, Data: data})
}

func respondList(w http.ResponseWriter, data interface{}, count int, total int64, page, limit int) {
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    data,
		Count:   &count,
		Total:   &total,
		Pagination: &Pagination{
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages(total, limit),
		},
	})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

func respondErrors(w http.ResponseWriter, status int, msgs []string) {
	writeJSON(w, status, envelope{Success: false, Error: msgs})
}

// respondServerError logs the cause and returns the generic message only.
func respondServerError(w http.ResponseWriter, err error) {
	log.Println("server error:", err)
	respondError(w, http.StatusInternalServerError, "Server Error")
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return int(pages)
}

// parsePagination reads page/limit with the 1/10 defaults.
func parsePagination(r *http.Request) (page, limit int) {
	page, limit = 1, 10
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}
	return page, limit
}
