package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"appointments/internal/core"
	"appointments/internal/types"
)

// Routes mounts the local HTTP equivalents of the action envelope:
//
//	POST /appointments               register (body = register data)
//	GET  /appointments/{insuredId}   find
//	POST /actions                    raw action envelope
func (c *ActionController) Routes(r chi.Router) {
	r.Post("/appointments", c.handleRegister)
	r.Get("/appointments/{insuredId}", c.handleFind)
	r.Post("/actions", c.handleEnvelope)
}

func (c *ActionController) handleRegister(w http.ResponseWriter, r *http.Request) {
	var data json.RawMessage
	if err := core.DecodeJSON(w, r, &data); err != nil {
		core.Error(w, r, err)
		return
	}
	c.respond(w, r, types.ActionRequest{Action: types.ActionRegister, Data: data}, http.StatusAccepted)
}

func (c *ActionController) handleFind(w http.ResponseWriter, r *http.Request) {
	data, _ := json.Marshal(chi.URLParam(r, "insuredId"))
	c.respond(w, r, types.ActionRequest{Action: types.ActionFind, Data: data}, http.StatusOK)
}

func (c *ActionController) handleEnvelope(w http.ResponseWriter, r *http.Request) {
	var req types.ActionRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	status := http.StatusOK
	if req.Action == types.ActionRegister {
		status = http.StatusAccepted
	}
	c.respond(w, r, req, status)
}

func (c *ActionController) respond(w http.ResponseWriter, r *http.Request, req types.ActionRequest, status int) {
	result, err := c.Handle(r.Context(), req)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, status, result)
}
