package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/medfinder-backend/api/middleware"
	"github.com/angelmondragon/medfinder-backend/internal/auth"
	"github.com/angelmondragon/medfinder-backend/internal/medicines"
	"github.com/angelmondragon/medfinder-backend/internal/pharmacies"
	"github.com/angelmondragon/medfinder-backend/internal/reservations"
	"github.com/angelmondragon/medfinder-backend/internal/stock"
	"github.com/angelmondragon/medfinder-backend/internal/users"
)

type errorEnvelope struct {
	Error struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v (body %s)", err, rec.Body.String())
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
}

func asUser(r *http.Request, userID uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithUserID(r.Context(), userID.String()))
}

type stubAuthService struct {
	loginResp  *auth.LoginResponse
	loginErr   error
	loginReq   auth.LoginRequest
	me         *users.UserDTO
	meErr      error
	loggedOut  string
	logoutErr  error
	meReceived uuid.UUID
}

func (s *stubAuthService) Login(_ context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.loginReq = req
	return s.loginResp, s.loginErr
}

func (s *stubAuthService) Me(_ context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	s.meReceived = userID
	return s.me, s.meErr
}

func (s *stubAuthService) Logout(_ context.Context, accessID string) error {
	s.loggedOut = accessID
	return s.logoutErr
}

type stubRegisterService struct {
	user *users.UserDTO
	err  error
	req  auth.RegisterRequest
}

func (s *stubRegisterService) Register(_ context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	s.req = req
	return s.user, s.err
}

type stubMedicinesService struct {
	searchInput  medicines.SearchInput
	searchResult *medicines.SearchResult
	searchErr    error
	altInput     medicines.AlternativesInput
	alternatives []medicines.Alternative
	calls        int
}

func (s *stubMedicinesService) Search(_ context.Context, input medicines.SearchInput) (*medicines.SearchResult, error) {
	s.calls++
	s.searchInput = input
	return s.searchResult, s.searchErr
}

func (s *stubMedicinesService) Alternatives(_ context.Context, input medicines.AlternativesInput) ([]medicines.Alternative, error) {
	s.calls++
	s.altInput = input
	return s.alternatives, nil
}

type stubPharmaciesService struct {
	pharmacy *pharmacies.PharmacyDTO
	list     []pharmacies.PharmacyDTO
	err      error
}

func (s *stubPharmaciesService) Get(_ context.Context, _ uuid.UUID) (*pharmacies.PharmacyDTO, error) {
	return s.pharmacy, s.err
}

func (s *stubPharmaciesService) List(_ context.Context) ([]pharmacies.PharmacyDTO, error) {
	return s.list, s.err
}

type stubReservationsService struct {
	createInput  reservations.CreateReservationInput
	approvedID   uuid.UUID
	rejectedID   uuid.UUID
	rejectReason string
	mineFor      uuid.UUID
	result       *reservations.ReservationDTO
	pending      []reservations.PendingReservationDTO
	err          error
	calls        int
}

func (s *stubReservationsService) Create(_ context.Context, input reservations.CreateReservationInput) (*reservations.ReservationDTO, error) {
	s.calls++
	s.createInput = input
	return s.result, s.err
}

func (s *stubReservationsService) Approve(_ context.Context, id uuid.UUID) (*reservations.ReservationDTO, error) {
	s.calls++
	s.approvedID = id
	return s.result, s.err
}

func (s *stubReservationsService) Reject(_ context.Context, id uuid.UUID, reason string) (*reservations.ReservationDTO, error) {
	s.calls++
	s.rejectedID = id
	s.rejectReason = reason
	return s.result, s.err
}

func (s *stubReservationsService) ListMine(_ context.Context, userID uuid.UUID) ([]reservations.ReservationDTO, error) {
	s.calls++
	s.mineFor = userID
	return []reservations.ReservationDTO{}, s.err
}

func (s *stubReservationsService) ListPending(_ context.Context) ([]reservations.PendingReservationDTO, error) {
	s.calls++
	return s.pending, s.err
}

type stubStockService struct {
	input   stock.UpdateStockInput
	entry   *stock.EntryDTO
	entries []stock.EntryDTO
	err     error
	calls   int
}

func (s *stubStockService) UpdateStock(_ context.Context, input stock.UpdateStockInput) (*stock.EntryDTO, error) {
	s.calls++
	s.input = input
	return s.entry, s.err
}

func (s *stubStockService) ListEntries(_ context.Context) ([]stock.EntryDTO, error) {
	s.calls++
	return s.entries, s.err
}
