package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/api/response"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/catalog"
)

// FlagHandler serves the read-only flag catalog
type FlagHandler struct {
	catalog *catalog.Service
}

// NewFlagHandler creates a new flag handler
func NewFlagHandler(catalog *catalog.Service) *FlagHandler {
	return &FlagHandler{catalog: catalog}
}

// List handles GET /api/v1/flags
func (h *FlagHandler) List(w http.ResponseWriter, r *http.Request) {
	records := h.catalog.All()
	flags := make([]response.Flag, len(records))
	for i, record := range records {
		flags[i] = response.FlagFromModel(record, false)
	}
	response.JSON(w, http.StatusOK, response.FlagList{Count: len(flags), Flags: flags})
}

// Get handles GET /api/v1/flags/{code}
func (h *FlagHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.FlagCode(mux.Vars(r)["code"])

	record, err := h.catalog.Lookup(code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FlagFromModel(record, true))
}
