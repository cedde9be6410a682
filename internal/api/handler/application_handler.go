package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"origination-engine/internal/api/handler/dto"
	mw "origination-engine/internal/api/middleware"
	"origination-engine/internal/domain/application"
	"origination-engine/internal/pkg/apperrors"
)

type ApplicationHandler struct {
	service application.Service
	logger  *slog.Logger
}

func NewApplicationHandler(s application.Service, l *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		service: s,
		logger:  l.With("component", "ApplicationHandler"),
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Unauthorized."
	case errors.Is(err, apperrors.ErrUnauthorizedActor):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, apperrors.ErrInvalidTransition), errors.Is(err, apperrors.ErrConflictingUpdate),
		errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrAlreadyExists):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrGatePending), errors.Is(err, apperrors.ErrGateRejected),
		errors.Is(err, apperrors.ErrScheduleGeneration):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrInvalidPaymentAmount), errors.Is(err, apperrors.ErrLoanFullyPaid):
		status, message = http.StatusBadRequest, err.Error()
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

func actorFromRequest(r *http.Request) (application.Actor, error) {
	actor, ok := mw.ActorFromContext(r.Context())
	if !ok {
		return application.Actor{}, fmt.Errorf("%w: no authenticated actor on request", apperrors.ErrUnauthorized)
	}
	return actor, nil
}

func idFromURL(r *http.Request, param string) (int64, error) {
	idStr := chi.URLParam(r, param)
	if idStr == "" {
		return 0, fmt.Errorf("%s not found in URL path", param)
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// CreateApplication creates a draft loan application for the caller.
//
// @Summary Create a loan application
// @Description Creates a new application in draft for the authenticated borrower.
// @Tags Applications
// @Accept json
// @Produce json
// @Param request body dto.CreateApplicationRequest true "Application payload"
// @Success 201 {object} dto.ApplicationResponse "Application created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a borrower"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /applications [post]
// @Security BearerAuth
func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CreateApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	amount, _ := decimal.NewFromString(req.Amount)
	rate, _ := decimal.NewFromString(req.AnnualRatePercent)

	app, err := h.service.CreateApplication(r.Context(), actor, amount, req.TermMonths, rate, req.Purpose)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.NewApplicationResponse(app))
}

// GetApplication retrieves a single application.
//
// @Summary Retrieve an application
// @Tags Applications
// @Produce json
// @Param applicationID path int true "Application ID"
// @Success 200 {object} dto.ApplicationResponse "Application details"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{applicationID} [get]
// @Security BearerAuth
func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	applicationID, err := idFromURL(r, "applicationID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	app, err := h.service.GetApplication(r.Context(), applicationID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewApplicationResponse(app))
}

// ListMyApplications lists the caller's applications.
//
// @Summary List the caller's applications
// @Tags Applications
// @Produce json
// @Success 200 {array} dto.ApplicationResponse "Applications"
// @Router /applications [get]
// @Security BearerAuth
func (h *ApplicationHandler) ListMyApplications(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	apps, err := h.service.ListBorrowerApplications(r.Context(), actor.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewApplicationListResponse(apps))
}

// GetSchedule retrieves the repayment schedule of a disbursed application.
//
// @Summary Retrieve the installment schedule
// @Tags Applications
// @Produce json
// @Param applicationID path int true "Application ID"
// @Success 200 {object} dto.ScheduleResponse "Installment schedule"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{applicationID}/schedule [get]
// @Security BearerAuth
func (h *ApplicationHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	applicationID, err := idFromURL(r, "applicationID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	installments, err := h.service.GetSchedule(r.Context(), applicationID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewScheduleResponse(applicationID, installments, time.Now()))
}

// GetOutstanding retrieves the sum still owed on an application.
//
// @Summary Retrieve the outstanding amount
// @Tags Applications
// @Produce json
// @Param applicationID path int true "Application ID"
// @Success 200 {object} dto.OutstandingResponse "Outstanding amount"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{applicationID}/outstanding [get]
// @Security BearerAuth
func (h *ApplicationHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	applicationID, err := idFromURL(r, "applicationID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	outstanding, err := h.service.GetOutstanding(r.Context(), applicationID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.OutstandingResponse{
		ApplicationID:     strconv.FormatInt(applicationID, 10),
		OutstandingAmount: outstanding.StringFixed(2),
	})
}

type transitionFunc func(r *http.Request, applicationID int64, actor application.Actor) (*application.LoanApplication, error)

func (h *ApplicationHandler) handleTransition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	applicationID, err := idFromURL(r, "applicationID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	app, err := fn(r, applicationID, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewApplicationResponse(app))
}

// BeginKYCStage2 advances a draft application into document collection.
//
// @Summary Begin stage-2 KYC
// @Description Moves a draft application to kyc_stage2_required once the borrower's identity evidence is verified.
// @Tags Applications
// @Produce json
// @Param applicationID path int true "Application ID"
// @Success 200 {object} dto.ApplicationResponse "Application advanced"
// @Failure 403 {object} dto.ErrorResponse "Actor not authorized"
// @Failure 409 {object} dto.ErrorResponse "Invalid transition or concurrent update"
// @Failure 422 {object} dto.ErrorResponse "Identity verification pending or rejected"
// @Router /applications/{applicationID}/kyc-stage2 [post]
// @Security BearerAuth
func (h *ApplicationHandler) BeginKYCStage2(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(r *http.Request, id int64, actor application.Actor) (*application.LoanApplication, error) {
		return h.service.BeginKYCStage2(r.Context(), id, actor)
	})
}

// Submit submits an application for review.
//
// @Summary Submit an application
// @Description Moves the application to submitted; a rejected application re-submits once fresh stage-2 documents are verified.
// @Tags Applications
// @Produce json
// @Param applicationID path int true "Application ID"
// @Success 200 {object} dto.ApplicationResponse "Application submitted"
// @Failure 403 {object} dto.ErrorResponse "Actor not authorized"
// @Failure 409 {object} dto.ErrorResponse "Invalid transition or concurrent update"
// @Failure 422 {object} dto.ErrorResponse "Document verification pending or rejected"
// @Router /applications/{applicationID}/submit [post]
// @Security BearerAuth
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(r *http.Request, id int64, actor application.Actor) (*application.LoanApplication, error) {
		return h.service.Submit(r.Context(), id, actor)
	})
}

// StartReview pulls the application into review.
//
// @Summary Start review
// @Description Fetches the borrower's credit score and a risk assessment, then moves the application to under_review.
// @Tags Applications
// @Produce json
// @Param applicationID path int true "Application ID"
// @Success 200 {object} dto.ApplicationResponse "Application under review"
// @Failure 403 {object} dto.ErrorResponse "Actor not authorized"
// @Failure 409 {object} dto.ErrorResponse "Invalid transition or concurrent update"
// @Failure 422 {object} dto.ErrorResponse "Risk assessment unavailable"
// @Router /applications/{applicationID}/review [post]
// @Security BearerAuth
func (h *ApplicationHandler) StartReview(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(r *http.Request, id int64, actor application.Actor) (*application.LoanApplication, error) {
		return h.service.StartReview(r.Context(), id, actor)
	})
}

// Route sends a reviewed application to its approval queue.
//
// @Summary Route to approval
// @Description Moves the application from under_review into the pending approval state its amount requires.
// @Tags Applications
// @Produce json
// @Param applicationID path int true "Application ID"
// @Success 200 {object} dto.ApplicationResponse "Application routed"
// @Failure 403 {object} dto.ErrorResponse "Actor not authorized"
// @Failure 409 {object} dto.ErrorResponse "Invalid transition or concurrent update"
// @Failure 422 {object} dto.ErrorResponse "Risk gate holds the application"
// @Router /applications/{applicationID}/route [post]
// @Security BearerAuth
func (h *ApplicationHandler) Route(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(r *http.Request, id int64, actor application.Actor) (*application.LoanApplication, error) {
		return h.service.Route(r.Context(), id, actor)
	})
}

// RecordDisposition records a reviewer decision on a risk-held application.
//
// @Summary Record a review disposition
// @Tags Applications
// @Accept json
// @Produce json
// @Param applicationID path int true "Application ID"
// @Param request body dto.DispositionRequest true "Disposition payload"
// @Success 200 {object} dto.ApplicationResponse "Disposition recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 403 {object} dto.ErrorResponse "Actor not authorized"
// @Failure 409 {object} dto.ErrorResponse "Invalid transition or concurrent update"
// @Router /applications/{applicationID}/disposition [post]
// @Security BearerAuth
func (h *ApplicationHandler) RecordDisposition(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(r *http.Request, id int64, actor application.Actor) (*application.LoanApplication, error) {
		var req dto.DispositionRequest
		if err := decodeJSON(r, &req); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
		}
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
		}
		return h.service.RecordDisposition(r.Context(), id, actor, application.Disposition(req.Disposition), req.Note)
	})
}

// Approve approves a pending application.
//
// @Summary Approve an application
// @Description Moves the application from its pending approval state to approved. The actor must satisfy the amount's authority tier.
// @Tags Applications
// @Produce json
// @Param applicationID path int true "Application ID"
// @Success 200 {object} dto.ApplicationResponse "Application approved"
// @Failure 403 {object} dto.ErrorResponse "Actor not authorized for this tier"
// @Failure 409 {object} dto.ErrorResponse "Invalid transition or concurrent update"
// @Router /applications/{applicationID}/approve [post]
// @Security BearerAuth
func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(r *http.Request, id int64, actor application.Actor) (*application.LoanApplication, error) {
		return h.service.Approve(r.Context(), id, actor)
	})
}

// Reject rejects an application under or pending review.
//
// @Summary Reject an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param applicationID path int true "Application ID"
// @Param request body dto.TransitionRequest true "Rejection payload with reason"
// @Success 200 {object} dto.ApplicationResponse "Application rejected"
// @Failure 400 {object} dto.ErrorResponse "Missing rejection reason"
// @Failure 403 {object} dto.ErrorResponse "Actor not authorized"
// @Failure 409 {object} dto.ErrorResponse "Invalid transition or concurrent update"
// @Router /applications/{applicationID}/reject [post]
// @Security BearerAuth
func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(r *http.Request, id int64, actor application.Actor) (*application.LoanApplication, error) {
		var req dto.TransitionRequest
		if err := decodeJSON(r, &req); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
		}
		return h.service.Reject(r.Context(), id, actor, req.Reason)
	})
}

// Disburse disburses an approved application and creates its schedule.
//
// @Summary Disburse an approved application
// @Description Generates the amortized installment schedule and moves the application to disbursed in one step.
// @Tags Applications
// @Produce json
// @Param applicationID path int true "Application ID"
// @Success 200 {object} dto.ApplicationResponse "Application disbursed"
// @Failure 403 {object} dto.ErrorResponse "Actor not authorized"
// @Failure 409 {object} dto.ErrorResponse "Invalid transition or concurrent update"
// @Failure 422 {object} dto.ErrorResponse "Schedule generation failed"
// @Router /applications/{applicationID}/disburse [post]
// @Security BearerAuth
func (h *ApplicationHandler) Disburse(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(r *http.Request, id int64, actor application.Actor) (*application.LoanApplication, error) {
		return h.service.Disburse(r.Context(), id, actor)
	})
}

// RecordPayment pays the oldest unpaid installment.
//
// @Summary Record an installment payment
// @Description The amount must exactly match the oldest unpaid installment's total. Paying the final installment completes the loan.
// @Tags Applications
// @Accept json
// @Produce json
// @Param applicationID path int true "Application ID"
// @Param request body dto.RecordPaymentRequest true "Payment payload"
// @Success 200 {object} map[string]string "Payment recorded"
// @Failure 400 {object} dto.ErrorResponse "Wrong amount or loan fully paid"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{applicationID}/payments [post]
// @Security BearerAuth
func (h *ApplicationHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	applicationID, err := idFromURL(r, "applicationID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.RecordPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondError(w, fmt.Errorf("%w: invalid numeric format for amount", apperrors.ErrInvalidArgument))
		return
	}

	if err := h.service.RecordPayment(r.Context(), applicationID, amount); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Payment recorded"})
}

// MarkDefaulted marks a delinquent loan as defaulted.
//
// @Summary Mark an application defaulted
// @Description Moves a disbursed loan to defaulted once enough installments are overdue.
// @Tags Applications
// @Produce json
// @Param applicationID path int true "Application ID"
// @Success 200 {object} dto.ApplicationResponse "Application defaulted"
// @Failure 403 {object} dto.ErrorResponse "Actor not authorized"
// @Failure 422 {object} dto.ErrorResponse "Not enough overdue installments"
// @Router /applications/{applicationID}/default [post]
// @Security BearerAuth
func (h *ApplicationHandler) MarkDefaulted(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(r *http.Request, id int64, actor application.Actor) (*application.LoanApplication, error) {
		return h.service.MarkDefaulted(r.Context(), id, actor)
	})
}
