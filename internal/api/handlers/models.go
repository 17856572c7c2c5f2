package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/fluencycoach/internal/llm"
)

type ModelLister interface {
	ListModels() []llm.ModelInfo
}

type ModelsHandler struct {
	models ModelLister
}

func NewModelsHandler(m ModelLister) *ModelsHandler {
	return &ModelsHandler{models: m}
}

// List reports the provider/model pairs the gateway can route to.
func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	models := []llm.ModelInfo{}
	if h.models != nil {
		if m := h.models.ListModels(); m != nil {
			models = m
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"models": models, "count": len(models)})
}
