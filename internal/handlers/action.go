// Package handlers binds the scheduling use cases to their transports: the
// action envelope sent by the API gateway integration (and its local HTTP
// equivalent) and the SQS batch of processing confirmations.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"appointments/internal/appointment"
	"appointments/internal/core"
	"appointments/internal/metrics"
	"appointments/internal/scheduling"
	"appointments/internal/types"
)

// Registerer runs the register use case.
type Registerer interface {
	Execute(ctx context.Context, in scheduling.RegisterInput) (*scheduling.RegisterOutput, error)
}

// Finder runs the find use case.
type Finder interface {
	Execute(ctx context.Context, rawInsuredID string) ([]*appointment.Appointment, error)
}

// Metrics is the subset of metrics.CloudWatchMetrics used by the transports.
type Metrics interface {
	RecordScheduled(ctx context.Context, country string)
	RecordNotification(ctx context.Context, result metrics.Result)
}

// RegisterAction and FindAction are the decoded variants of an ActionRequest.
type RegisterAction struct {
	Input scheduling.RegisterInput
}

type FindAction struct {
	InsuredID string
}

// ActionController serves the request/response transport.
type ActionController struct {
	register  Registerer
	find      Finder
	validator *core.Validator
	metrics   Metrics
	logger    types.Logger
}

// NewActionController wires the controller. metrics may be nil.
func NewActionController(register Registerer, find Finder, validator *core.Validator, m Metrics, logger types.Logger) *ActionController {
	if validator == nil {
		validator = core.NewValidator()
	}
	return &ActionController{register: register, find: find, validator: validator, metrics: m, logger: logger}
}

// Handle decodes req into its variant and runs the matching use case. The
// result is a *scheduling.RegisterOutput for register and a slice of
// appointments for find. Every error is returned as a *core.Failure.
func (c *ActionController) Handle(ctx context.Context, req types.ActionRequest) (any, error) {
	result, err := c.handle(ctx, req)
	if err != nil {
		failure := core.NewFailure(err)
		c.logger.Warn("action failed",
			"action", string(req.Action),
			"code", failure.Code,
			"error", failure.Message,
		)
		return nil, failure
	}
	return result, nil
}

func (c *ActionController) handle(ctx context.Context, req types.ActionRequest) (any, error) {
	variant, err := c.decode(req)
	if err != nil {
		return nil, err
	}

	switch v := variant.(type) {
	case RegisterAction:
		out, err := c.register.Execute(ctx, v.Input)
		if err != nil {
			return nil, err
		}
		if c.metrics != nil {
			c.metrics.RecordScheduled(ctx, countryOf(v.Input.CountryISO))
		}
		return out, nil
	case FindAction:
		return c.find.Execute(ctx, v.InsuredID)
	default:
		return nil, unsupportedAction(req.Action)
	}
}

// decode validates the envelope and unmarshals Data into the action's variant.
func (c *ActionController) decode(req types.ActionRequest) (any, error) {
	if req.Action != "" && req.Action != types.ActionRegister && req.Action != types.ActionFind {
		return nil, unsupportedAction(req.Action)
	}
	if err := c.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	data := bytes.TrimSpace(req.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, types.NewAppError(types.ErrCodeInvalidRequest,
			fmt.Sprintf("data is required for action %q", req.Action), nil)
	}

	switch req.Action {
	case types.ActionRegister:
		var in scheduling.RegisterInput
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&in); err != nil {
			return nil, types.NewAppError(types.ErrCodeInvalidRequest, "register data must be an object with the scheduling fields", err)
		}
		return RegisterAction{Input: in}, nil
	default:
		var insuredID string
		if err := json.Unmarshal(data, &insuredID); err != nil {
			return nil, types.NewAppError(types.ErrCodeInvalidRequest, "find data must be the insured id as a string", err)
		}
		return FindAction{InsuredID: insuredID}, nil
	}
}

func unsupportedAction(action types.Action) *types.AppError {
	return types.NewAppError(types.ErrCodeUnsupportedAction,
		fmt.Sprintf("action %q is not supported, expected register or find", action), nil)
}

// countryOf returns the normalized country for metric dimensions. The input
// has already been validated by the use case.
func countryOf(raw string) string {
	c, err := appointment.NewCountryISO(raw)
	if err != nil {
		return raw
	}
	return c.Value()
}
