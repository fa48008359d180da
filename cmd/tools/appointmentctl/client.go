package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

type registerRequest struct {
	InsuredID   string `json:"insuredId"`
	ScheduleID  int64  `json:"scheduleId"`
	CountryISO  string `json:"countryISO"`
	CenterID    int64  `json:"centerId"`
	SpecialtyID int64  `json:"specialtyId"`
	MedicID     int64  `json:"medicId"`
	Date        string `json:"date"`
}

type registerResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type appointmentView struct {
	InsuredID   string `json:"insuredId"`
	CountryID   string `json:"countryId"`
	ScheduleID  int64  `json:"scheduleId"`
	CenterID    int64  `json:"centerId"`
	SpecialtyID int64  `json:"specialtyId"`
	MedicID     int64  `json:"medicId"`
	Date        string `json:"date"`
	Estado      string `json:"estado"`
}

// apiFailure is the failure object returned by the scheduler.
type apiFailure struct {
	Kind    string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
	status  int
}

func (f *apiFailure) Error() string {
	return fmt.Sprintf("%s (%s, HTTP %d): %s", f.Kind, f.Code, f.status, f.Message)
}

type apiClient struct {
	http *http.Client
	base string
}

func (c *cli) api() *apiClient {
	return &apiClient{http: c.httpClient, base: strings.TrimRight(c.apiURL, "/")}
}

func (a *apiClient) register(ctx context.Context, in registerRequest) (*registerResponse, error) {
	var out registerResponse
	if err := a.do(ctx, http.MethodPost, "/appointments", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *apiClient) find(ctx context.Context, insuredID string) ([]appointmentView, error) {
	out := []appointmentView{}
	if err := a.do(ctx, http.MethodGet, "/appointments/"+url.PathEscape(insuredID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *apiClient) do(ctx context.Context, method, path string, body, dst any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, a.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		failure := &apiFailure{status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(failure); err != nil {
			return fmt.Errorf("%s %s: HTTP %d", method, path, resp.StatusCode)
		}
		return failure
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
