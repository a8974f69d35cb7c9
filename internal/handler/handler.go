package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/msalazar/tanda-service/internal/integrations/copomex"
	"github.com/msalazar/tanda-service/internal/middleware"
	"github.com/msalazar/tanda-service/internal/models"
	"github.com/msalazar/tanda-service/internal/service"
	"github.com/msalazar/tanda-service/internal/utils"
)

type Handler struct {
	svc      *service.Service
	receipts *utils.ReceiptStore
	lookup   *copomex.Client
}

func NewHandler(svc *service.Service, receipts *utils.ReceiptStore, lookup *copomex.Client) *Handler {
	return &Handler{svc: svc, receipts: receipts, lookup: lookup}
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	user, err := h.svc.Register(input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	token, err := h.svc.Login(input.Email, input.Password)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CreateTanda handles tanda creation
func (h *Handler) CreateTanda(w http.ResponseWriter, r *http.Request) {
	var input service.CreateTandaInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	tanda, err := h.svc.CreateTanda(input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tanda)
}

// AddParticipant enrolls a user into a tanda
func (h *Handler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	tandaID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid tanda id", http.StatusBadRequest)
		return
	}
	var input struct {
		UserID   int64 `json:"user_id"`
		Position int   `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	participant, err := h.svc.AddParticipant(tandaID, input.UserID, input.Position)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, participant)
}

// GenerateSchedule plans the cycles and creates the payment rows
func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	tandaID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid tanda id", http.StatusBadRequest)
		return
	}
	count, err := h.svc.GenerateSchedule(tandaID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int{"payments_created": count})
}

// Pot returns the validated total of a tanda
func (h *Handler) Pot(w http.ResponseWriter, r *http.Request) {
	tandaID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid tanda id", http.StatusBadRequest)
		return
	}
	pot, err := h.svc.Pot(tandaID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]float64{"pot": pot})
}

// UploadReceipt stores the receipt file and submits it on the payment
func (h *Handler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid payment id", http.StatusBadRequest)
		return
	}
	if err := r.ParseMultipartForm(utils.MaxReceiptSize); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("receipt")
	if err != nil {
		http.Error(w, "Missing receipt file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	path, err := h.receipts.Save(file, header.Filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	payment, err := h.svc.SubmitReceipt(r.Context(), paymentID, path)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payment)
}

// ValidatePayment confirms an uploaded receipt
func (h *Handler) ValidatePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid payment id", http.StatusBadRequest)
		return
	}
	payment, err := h.svc.ValidatePayment(r.Context(), paymentID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payment)
}

// RejectPayment turns an uploaded receipt down
func (h *Handler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid payment id", http.StatusBadRequest)
		return
	}
	var input struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	payment, err := h.svc.RejectPayment(r.Context(), paymentID, input.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payment)
}

// ListUploaded returns payments awaiting validation
func (h *Handler) ListUploaded(w http.ResponseWriter, r *http.Request) {
	payments, err := h.svc.ListUploaded()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}

// MarkWinner records that a participant received the pot
func (h *Handler) MarkWinner(w http.ResponseWriter, r *http.Request) {
	participantID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid participant id", http.StatusBadRequest)
		return
	}
	if err := h.svc.MarkWinner(participantID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Notifications returns the caller's notification feed
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	userIDStr, _ := r.Context().Value(middleware.UserIDKey).(string)
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	notifications, err := h.svc.Notifications(userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

// AddressLookup resolves a postal code through copomex
func (h *Handler) AddressLookup(w http.ResponseWriter, r *http.Request) {
	postalCode := mux.Vars(r)["cp"]
	address, err := h.lookup.LookupByPostalCode(r.Context(), postalCode)
	if err != nil {
		http.Error(w, "Lookup failed", http.StatusBadGateway)
		return
	}
	respondJSON(w, http.StatusOK, address)
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[key], 10, 64)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrPaymentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrParticipantCountMismatch):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
