package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"origination-engine/internal/api/handler/dto"
	"origination-engine/internal/domain/application"
	"origination-engine/internal/domain/kyc"
	"origination-engine/internal/domain/profile"
	"origination-engine/internal/pkg/apperrors"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) UploadDocument(ctx context.Context, profileID int64, kind kyc.DocumentKind, applicationID *int64, fileRef string) (*kyc.Document, error) {
	args := m.Called(ctx, profileID, kind, applicationID, fileRef)
	if doc, ok := args.Get(0).(*kyc.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentService) GetDocument(ctx context.Context, documentID int64) (*kyc.Document, error) {
	args := m.Called(ctx, documentID)
	if doc, ok := args.Get(0).(*kyc.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentService) ListApplicationDocuments(ctx context.Context, applicationID int64) ([]*kyc.Document, error) {
	args := m.Called(ctx, applicationID)
	if docs, ok := args.Get(0).([]*kyc.Document); ok {
		return docs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentService) ReviewDocument(ctx context.Context, documentID int64, reviewerRole profile.Role, verdict kyc.DocumentStatus, reason string) (*kyc.Document, error) {
	args := m.Called(ctx, documentID, reviewerRole, verdict, reason)
	if doc, ok := args.Get(0).(*kyc.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentService) RefreshFromVerifier(ctx context.Context, documentID int64) (*kyc.Document, error) {
	args := m.Called(ctx, documentID)
	if doc, ok := args.Get(0).(*kyc.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentService) Stage1Verdict(ctx context.Context, profileID int64) (kyc.Verdict, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).(kyc.Verdict), args.Error(1)
}

func (m *MockDocumentService) Stage2Verdict(ctx context.Context, applicationID int64) (kyc.Verdict, error) {
	args := m.Called(ctx, applicationID)
	return args.Get(0).(kyc.Verdict), args.Error(1)
}

func (m *MockDocumentService) Stage2VerdictSince(ctx context.Context, applicationID int64, since time.Time) (kyc.Verdict, bool, error) {
	args := m.Called(ctx, applicationID, since)
	return args.Get(0).(kyc.Verdict), args.Bool(1), args.Error(2)
}

func sampleDocument(kind kyc.DocumentKind, applicationID *int64) *kyc.Document {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	stage, _ := kyc.StageFor(kind)
	return &kyc.Document{
		ID:            5,
		ProfileID:     7,
		Stage:         stage,
		Kind:          kind,
		Status:        kyc.DocumentPending,
		ApplicationID: applicationID,
		FileRef:       "s3://kyc-docs/7/payslip.pdf",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestDocumentHandlerUploadDocument(t *testing.T) {
	borrower := application.Actor{ID: 7, Role: profile.RoleBorrower}

	t.Run("uploads a stage-2 document", func(t *testing.T) {
		mockService := new(MockDocumentService)
		handler := NewDocumentHandler(mockService, handlerTestLogger)

		appID := int64(42)
		mockService.On("UploadDocument", mock.Anything, int64(7), kyc.KindProofOfIncome, &appID, "s3://kyc-docs/7/payslip.pdf").
			Return(sampleDocument(kyc.KindProofOfIncome, &appID), nil)

		body := `{"kind":"proof_of_income","applicationId":42,"fileRef":"s3://kyc-docs/7/payslip.pdf"}`
		req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewBufferString(body))
		rec := serveAsActor(handler.UploadDocument, req, borrower)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.DocumentResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "5", resp.ID)
		assert.Equal(t, 2, resp.Stage)
		assert.Equal(t, string(kyc.DocumentPending), resp.Status)
		if assert.NotNil(t, resp.ApplicationID) {
			assert.Equal(t, "42", *resp.ApplicationID)
		}
		mockService.AssertExpectations(t)
	})

	t.Run("rejects a payload without a file reference", func(t *testing.T) {
		mockService := new(MockDocumentService)
		handler := NewDocumentHandler(mockService, handlerTestLogger)

		body := `{"kind":"identity_proof"}`
		req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewBufferString(body))
		rec := serveAsActor(handler.UploadDocument, req, borrower)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "UploadDocument")
	})

	t.Run("maps a stage mismatch to bad request", func(t *testing.T) {
		mockService := new(MockDocumentService)
		handler := NewDocumentHandler(mockService, handlerTestLogger)

		mockService.On("UploadDocument", mock.Anything, int64(7), kyc.KindProofOfIncome, (*int64)(nil), "s3://kyc-docs/7/payslip.pdf").
			Return((*kyc.Document)(nil), apperrors.NewValidationError("applicationId", "stage-2 documents must reference a loan application"))

		body := `{"kind":"proof_of_income","fileRef":"s3://kyc-docs/7/payslip.pdf"}`
		req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewBufferString(body))
		rec := serveAsActor(handler.UploadDocument, req, borrower)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp dto.ErrorResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "applicationId", resp.Error.Field)
		mockService.AssertExpectations(t)
	})
}

func TestDocumentHandlerReviewDocument(t *testing.T) {
	officer := application.Actor{ID: 9, Role: profile.RoleLoanOfficer}

	t.Run("verifies a pending document", func(t *testing.T) {
		mockService := new(MockDocumentService)
		handler := NewDocumentHandler(mockService, handlerTestLogger)

		verified := sampleDocument(kyc.KindIdentityProof, nil)
		verified.Status = kyc.DocumentVerified
		mockService.On("ReviewDocument", mock.Anything, int64(5), profile.RoleLoanOfficer, kyc.DocumentVerified, "").
			Return(verified, nil)

		body := `{"verdict":"verified"}`
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/documents/5/review", bytes.NewBufferString(body)), "documentID", "5")
		rec := serveAsActor(handler.ReviewDocument, req, officer)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.DocumentResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, string(kyc.DocumentVerified), resp.Status)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects an unknown verdict", func(t *testing.T) {
		mockService := new(MockDocumentService)
		handler := NewDocumentHandler(mockService, handlerTestLogger)

		body := `{"verdict":"maybe"}`
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/documents/5/review", bytes.NewBufferString(body)), "documentID", "5")
		rec := serveAsActor(handler.ReviewDocument, req, officer)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "ReviewDocument")
	})

	t.Run("maps a non-staff reviewer to forbidden", func(t *testing.T) {
		mockService := new(MockDocumentService)
		handler := NewDocumentHandler(mockService, handlerTestLogger)

		borrower := application.Actor{ID: 7, Role: profile.RoleBorrower}
		mockService.On("ReviewDocument", mock.Anything, int64(5), profile.RoleBorrower, kyc.DocumentVerified, "").
			Return((*kyc.Document)(nil), apperrors.ErrUnauthorizedActor)

		body := `{"verdict":"verified"}`
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/documents/5/review", bytes.NewBufferString(body)), "documentID", "5")
		rec := serveAsActor(handler.ReviewDocument, req, borrower)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("maps an already verified document to conflict", func(t *testing.T) {
		mockService := new(MockDocumentService)
		handler := NewDocumentHandler(mockService, handlerTestLogger)

		mockService.On("ReviewDocument", mock.Anything, int64(5), profile.RoleLoanOfficer, kyc.DocumentRejected, "blurry scan").
			Return((*kyc.Document)(nil), apperrors.ErrConflict)

		body := `{"verdict":"rejected","reason":"blurry scan"}`
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/documents/5/review", bytes.NewBufferString(body)), "documentID", "5")
		rec := serveAsActor(handler.ReviewDocument, req, officer)

		assert.Equal(t, http.StatusConflict, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestDocumentHandlerGetDocument(t *testing.T) {
	officer := application.Actor{ID: 9, Role: profile.RoleLoanOfficer}

	t.Run("retrieves a document", func(t *testing.T) {
		mockService := new(MockDocumentService)
		handler := NewDocumentHandler(mockService, handlerTestLogger)

		mockService.On("GetDocument", mock.Anything, int64(5)).
			Return(sampleDocument(kyc.KindIdentityProof, nil), nil)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/documents/5", nil), "documentID", "5")
		rec := serveAsActor(handler.GetDocument, req, officer)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.DocumentResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "identity_proof", resp.Kind)
		assert.Nil(t, resp.ApplicationID)
		mockService.AssertExpectations(t)
	})

	t.Run("returns not found for a missing document", func(t *testing.T) {
		mockService := new(MockDocumentService)
		handler := NewDocumentHandler(mockService, handlerTestLogger)

		mockService.On("GetDocument", mock.Anything, int64(99)).
			Return((*kyc.Document)(nil), apperrors.ErrNotFound)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/documents/99", nil), "documentID", "99")
		rec := serveAsActor(handler.GetDocument, req, officer)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestDocumentHandlerListApplicationDocuments(t *testing.T) {
	officer := application.Actor{ID: 9, Role: profile.RoleLoanOfficer}
	mockService := new(MockDocumentService)
	handler := NewDocumentHandler(mockService, handlerTestLogger)

	appID := int64(42)
	docs := []*kyc.Document{
		sampleDocument(kyc.KindProofOfIncome, &appID),
		sampleDocument(kyc.KindProofOfFunds, &appID),
	}
	mockService.On("ListApplicationDocuments", mock.Anything, int64(42)).Return(docs, nil)

	req := withApplicationID(httptest.NewRequest(http.MethodGet, "/applications/42/documents", nil), "42")
	rec := serveAsActor(handler.ListApplicationDocuments, req, officer)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp []dto.DocumentResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 2)
	mockService.AssertExpectations(t)
}

func TestDocumentHandlerRefreshDocument(t *testing.T) {
	officer := application.Actor{ID: 9, Role: profile.RoleLoanOfficer}

	t.Run("returns the verifier's verdict", func(t *testing.T) {
		mockService := new(MockDocumentService)
		handler := NewDocumentHandler(mockService, handlerTestLogger)

		refreshed := sampleDocument(kyc.KindIdentityProof, nil)
		refreshed.Status = kyc.DocumentVerified
		mockService.On("RefreshFromVerifier", mock.Anything, int64(5)).Return(refreshed, nil)

		req := withURLParam(httptest.NewRequest(http.MethodPost, "/documents/5/refresh", nil), "documentID", "5")
		rec := serveAsActor(handler.RefreshDocument, req, officer)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.DocumentResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, string(kyc.DocumentVerified), resp.Status)
		mockService.AssertExpectations(t)
	})
}
