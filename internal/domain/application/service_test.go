package application

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"origination-engine/internal/domain/kyc"
	"origination-engine/internal/domain/profile"
	"origination-engine/internal/domain/schedule"
	"origination-engine/internal/pkg/apperrors"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, nil))

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) CreateApplication(ctx context.Context, app *LoanApplication) (*LoanApplication, error) {
	ret := _m.Called(ctx, app)

	var r0 *LoanApplication
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*LoanApplication)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) GetApplicationByID(ctx context.Context, applicationID int64) (*LoanApplication, error) {
	ret := _m.Called(ctx, applicationID)

	var r0 *LoanApplication
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*LoanApplication)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) ListByBorrower(ctx context.Context, borrowerID int64) ([]*LoanApplication, error) {
	ret := _m.Called(ctx, borrowerID)

	var r0 []*LoanApplication
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*LoanApplication)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) ListByStatus(ctx context.Context, status Status) ([]*LoanApplication, error) {
	ret := _m.Called(ctx, status)

	var r0 []*LoanApplication
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*LoanApplication)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) UpdateApplication(ctx context.Context, app *LoanApplication) error {
	ret := _m.Called(ctx, app)
	return ret.Error(0)
}

func (_m *MockRepository) DisburseWithSchedule(ctx context.Context, app *LoanApplication, installments []*schedule.Installment) error {
	ret := _m.Called(ctx, app, installments)
	return ret.Error(0)
}

func (_m *MockRepository) GetScheduleByApplicationID(ctx context.Context, applicationID int64) ([]*schedule.Installment, error) {
	ret := _m.Called(ctx, applicationID)

	var r0 []*schedule.Installment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*schedule.Installment)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) GetAllDisbursedIDs(ctx context.Context) ([]int64, error) {
	ret := _m.Called(ctx)

	var r0 []int64
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]int64)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	ret := _m.Called(ctx)

	var r0 pgx.Tx
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(pgx.Tx)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	ret := _m.Called(ctx, tx)
	return ret.Error(0)
}

func (_m *MockRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	ret := _m.Called(ctx, tx)
	return ret.Error(0)
}

func (_m *MockRepository) FindOldestUnpaidInstallmentForUpdate(ctx context.Context, tx pgx.Tx, applicationID int64) (*schedule.Installment, error) {
	ret := _m.Called(ctx, tx, applicationID)

	var r0 *schedule.Installment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*schedule.Installment)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) UpdateInstallmentInTx(ctx context.Context, tx pgx.Tx, inst *schedule.Installment) error {
	ret := _m.Called(ctx, tx, inst)
	return ret.Error(0)
}

func (_m *MockRepository) CountUnpaidInTx(ctx context.Context, tx pgx.Tx, applicationID int64) (int, error) {
	ret := _m.Called(ctx, tx, applicationID)
	return ret.Int(0), ret.Error(1)
}

func (_m *MockRepository) UpdateApplicationInTx(ctx context.Context, tx pgx.Tx, app *LoanApplication) error {
	ret := _m.Called(ctx, tx, app)
	return ret.Error(0)
}

type MockDocumentService struct {
	mock.Mock
}

func (_m *MockDocumentService) UploadDocument(ctx context.Context, profileID int64, kind kyc.DocumentKind, applicationID *int64, fileRef string) (*kyc.Document, error) {
	ret := _m.Called(ctx, profileID, kind, applicationID, fileRef)

	var r0 *kyc.Document
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*kyc.Document)
	}
	return r0, ret.Error(1)
}

func (_m *MockDocumentService) GetDocument(ctx context.Context, documentID int64) (*kyc.Document, error) {
	ret := _m.Called(ctx, documentID)

	var r0 *kyc.Document
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*kyc.Document)
	}
	return r0, ret.Error(1)
}

func (_m *MockDocumentService) ListApplicationDocuments(ctx context.Context, applicationID int64) ([]*kyc.Document, error) {
	ret := _m.Called(ctx, applicationID)

	var r0 []*kyc.Document
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*kyc.Document)
	}
	return r0, ret.Error(1)
}

func (_m *MockDocumentService) ReviewDocument(ctx context.Context, documentID int64, reviewerRole profile.Role, verdict kyc.DocumentStatus, reason string) (*kyc.Document, error) {
	ret := _m.Called(ctx, documentID, reviewerRole, verdict, reason)

	var r0 *kyc.Document
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*kyc.Document)
	}
	return r0, ret.Error(1)
}

func (_m *MockDocumentService) RefreshFromVerifier(ctx context.Context, documentID int64) (*kyc.Document, error) {
	ret := _m.Called(ctx, documentID)

	var r0 *kyc.Document
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*kyc.Document)
	}
	return r0, ret.Error(1)
}

func (_m *MockDocumentService) Stage1Verdict(ctx context.Context, profileID int64) (kyc.Verdict, error) {
	ret := _m.Called(ctx, profileID)
	return ret.Get(0).(kyc.Verdict), ret.Error(1)
}

func (_m *MockDocumentService) Stage2Verdict(ctx context.Context, applicationID int64) (kyc.Verdict, error) {
	ret := _m.Called(ctx, applicationID)
	return ret.Get(0).(kyc.Verdict), ret.Error(1)
}

func (_m *MockDocumentService) Stage2VerdictSince(ctx context.Context, applicationID int64, since time.Time) (kyc.Verdict, bool, error) {
	ret := _m.Called(ctx, applicationID, since)
	return ret.Get(0).(kyc.Verdict), ret.Bool(1), ret.Error(2)
}

type MockProfileRepository struct {
	mock.Mock
}

func (_m *MockProfileRepository) CreateProfile(ctx context.Context, p *profile.Profile) (*profile.Profile, error) {
	ret := _m.Called(ctx, p)

	var r0 *profile.Profile
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*profile.Profile)
	}
	return r0, ret.Error(1)
}

func (_m *MockProfileRepository) GetProfileByID(ctx context.Context, profileID int64) (*profile.Profile, error) {
	ret := _m.Called(ctx, profileID)

	var r0 *profile.Profile
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*profile.Profile)
	}
	return r0, ret.Error(1)
}

func (_m *MockProfileRepository) ListActiveProfiles(ctx context.Context) ([]*profile.Profile, error) {
	ret := _m.Called(ctx)

	var r0 []*profile.Profile
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*profile.Profile)
	}
	return r0, ret.Error(1)
}

func (_m *MockProfileRepository) UpdateStage1Status(ctx context.Context, profileID int64, status profile.Stage1Status, completed bool) error {
	ret := _m.Called(ctx, profileID, status, completed)
	return ret.Error(0)
}

func (_m *MockProfileRepository) UpdateCreditScore(ctx context.Context, profileID int64, score int) error {
	ret := _m.Called(ctx, profileID, score)
	return ret.Error(0)
}

func (_m *MockProfileRepository) SetActive(ctx context.Context, profileID int64, active bool) error {
	ret := _m.Called(ctx, profileID, active)
	return ret.Error(0)
}

type MockRiskScorer struct {
	mock.Mock
}

func (_m *MockRiskScorer) Score(ctx context.Context, applicationID int64, amount decimal.Decimal, creditScore int) (RiskAssessment, error) {
	ret := _m.Called(ctx, applicationID, amount, creditScore)
	return ret.Get(0).(RiskAssessment), ret.Error(1)
}

type MockCreditScoreProvider struct {
	mock.Mock
}

func (_m *MockCreditScoreProvider) CreditScore(ctx context.Context, borrowerID int64) (int, error) {
	ret := _m.Called(ctx, borrowerID)
	return ret.Int(0), ret.Error(1)
}

type MockAuditRecorder struct {
	mock.Mock
}

func (_m *MockAuditRecorder) RecordTransition(ctx context.Context, ev TransitionEvent) error {
	ret := _m.Called(ctx, ev)
	return ret.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (_m *MockNotifier) Notify(ctx context.Context, n Notification) error {
	ret := _m.Called(ctx, n)
	return ret.Error(0)
}

type serviceFixture struct {
	repo     *MockRepository
	docs     *MockDocumentService
	profiles *MockProfileRepository
	scorer   *MockRiskScorer
	credit   *MockCreditScoreProvider
	audit    *MockAuditRecorder
	notifier *MockNotifier
	service  *serviceImpl
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		repo:     new(MockRepository),
		docs:     new(MockDocumentService),
		profiles: new(MockProfileRepository),
		scorer:   new(MockRiskScorer),
		credit:   new(MockCreditScoreProvider),
		audit:    new(MockAuditRecorder),
		notifier: new(MockNotifier),
	}
	f.service = &serviceImpl{
		repo:     f.repo,
		docs:     f.docs,
		profiles: f.profiles,
		scorer:   f.scorer,
		credit:   f.credit,
		audit:    f.audit,
		notifier: f.notifier,
		logger:   testLogger,
		now:      func() time.Time { return transitionTime },
	}
	return f
}

// expectEmit wires the fire-and-forget audit and notification calls.
func (f *serviceFixture) expectEmit() {
	f.audit.On("RecordTransition", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
}

func TestCreateApplication(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	actor := Actor{ID: 7, Role: profile.RoleBorrower}
	amount := decimal.NewFromInt(5000)
	rate := decimal.NewFromInt(12)

	f.profiles.On("GetProfileByID", ctx, int64(7)).Return(&profile.Profile{ID: 7, Role: profile.RoleBorrower, Active: true}, nil)
	f.repo.On("CreateApplication", ctx, mock.Anything).Return(&LoanApplication{ID: 42, BorrowerID: 7, Status: StatusDraft}, nil)

	result, err := f.service.CreateApplication(ctx, actor, amount, 12, rate, "working capital")

	require.NoError(t, err)
	assert.Equal(t, int64(42), result.ID)
	assert.Equal(t, StatusDraft, result.Status)
	f.repo.AssertExpectations(t)
}

func TestCreateApplicationRequiresBorrowerRole(t *testing.T) {
	f := newServiceFixture()
	actor := Actor{ID: 10, Role: profile.RoleLoanOfficer}

	_, err := f.service.CreateApplication(context.Background(), actor, decimal.NewFromInt(5000), 12, decimal.NewFromInt(12), "")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorizedActor)
	f.repo.AssertNotCalled(t, "CreateApplication", mock.Anything, mock.Anything)
}

func TestCreateApplicationRejectsInactiveBorrower(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	actor := Actor{ID: 7, Role: profile.RoleBorrower}

	f.profiles.On("GetProfileByID", ctx, int64(7)).Return(&profile.Profile{ID: 7, Role: profile.RoleBorrower, Active: false}, nil)

	_, err := f.service.CreateApplication(ctx, actor, decimal.NewFromInt(5000), 12, decimal.NewFromInt(12), "")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBeginKYCStage2(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusDraft, 5000)

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.docs.On("Stage1Verdict", ctx, app.BorrowerID).Return(kyc.VerdictApproved, nil)
	f.repo.On("UpdateApplication", ctx, app).Return(nil)
	f.expectEmit()

	result, err := f.service.BeginKYCStage2(ctx, app.ID, borrowerActor(app))

	require.NoError(t, err)
	assert.Equal(t, StatusKYCStage2Required, result.Status)
	f.repo.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestSubmitChecksStage2Documents(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusKYCStage2Required, 5000)

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.docs.On("Stage2Verdict", ctx, app.ID).Return(kyc.VerdictPending, nil)

	_, err := f.service.Submit(ctx, app.ID, borrowerActor(app))

	assert.ErrorIs(t, err, apperrors.ErrGatePending)
	f.repo.AssertNotCalled(t, "UpdateApplication", mock.Anything, mock.Anything)
}

func TestResubmitEvaluatesOnlyFreshDocuments(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusRejected, 5000)
	app.RejectionReason = "stale documents"
	rejectedAt := transitionTime.AddDate(0, 0, -5)
	app.RejectedAt = &rejectedAt

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.docs.On("Stage2VerdictSince", ctx, app.ID, rejectedAt).Return(kyc.VerdictApproved, true, nil)
	f.repo.On("UpdateApplication", ctx, app).Return(nil)
	f.expectEmit()

	result, err := f.service.Submit(ctx, app.ID, borrowerActor(app))

	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, result.Status)
	assert.Empty(t, result.RejectionReason)
	f.docs.AssertExpectations(t)
}

func TestStartReviewFetchesAssessmentBeforeTransition(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusSubmitted, 5000)
	staff := Actor{ID: 10, Role: profile.RoleLoanOfficer}
	score := 720

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.profiles.On("GetProfileByID", ctx, app.BorrowerID).Return(&profile.Profile{ID: app.BorrowerID, CreditScore: &score}, nil)
	f.scorer.On("Score", ctx, app.ID, app.Amount, score).Return(RiskAssessment{Score: 20, Level: RiskLow}, nil)
	f.repo.On("UpdateApplication", ctx, app).Return(nil)
	f.expectEmit()

	result, err := f.service.StartReview(ctx, app.ID, staff)

	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, result.Status)
	require.NotNil(t, result.Risk)
	assert.Equal(t, 20, result.Risk.Score)
	f.scorer.AssertExpectations(t)
}

func TestStartReviewScorerFailureLeavesSubmitted(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusSubmitted, 5000)
	staff := Actor{ID: 10, Role: profile.RoleLoanOfficer}
	score := 720

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.profiles.On("GetProfileByID", ctx, app.BorrowerID).Return(&profile.Profile{ID: app.BorrowerID, CreditScore: &score}, nil)
	f.scorer.On("Score", ctx, app.ID, app.Amount, score).Return(RiskAssessment{}, errors.New("scorer timeout"))

	_, err := f.service.StartReview(ctx, app.ID, staff)

	assert.ErrorIs(t, err, apperrors.ErrGatePending)
	assert.Equal(t, StatusSubmitted, app.Status)
	assert.Nil(t, app.Risk)
	f.repo.AssertNotCalled(t, "UpdateApplication", mock.Anything, mock.Anything)
}

func TestStartReviewSkipsScorerWhenAssessmentExists(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusSubmitted, 5000)
	app.Risk = &RiskAssessment{Score: 30, Level: RiskMedium}
	staff := Actor{ID: 10, Role: profile.RoleLoanOfficer}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.repo.On("UpdateApplication", ctx, app).Return(nil)
	f.expectEmit()

	result, err := f.service.StartReview(ctx, app.ID, staff)

	require.NoError(t, err)
	assert.Equal(t, 30, result.Risk.Score)
	f.scorer.AssertNotCalled(t, "Score", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStartReviewFetchesAndCachesCreditScore(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusSubmitted, 5000)
	staff := Actor{ID: 10, Role: profile.RoleLoanOfficer}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.profiles.On("GetProfileByID", ctx, app.BorrowerID).Return(&profile.Profile{ID: app.BorrowerID}, nil)
	f.credit.On("CreditScore", ctx, app.BorrowerID).Return(655, nil)
	f.profiles.On("UpdateCreditScore", ctx, app.BorrowerID, 655).Return(nil)
	f.scorer.On("Score", ctx, app.ID, app.Amount, 655).Return(RiskAssessment{Score: 15, Level: RiskLow}, nil)
	f.repo.On("UpdateApplication", ctx, app).Return(nil)
	f.expectEmit()

	_, err := f.service.StartReview(ctx, app.ID, staff)

	require.NoError(t, err)
	f.credit.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
}

func TestRouteSelectsPendingStateByAmount(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusUnderReview, 15_000)
	app.Risk = &RiskAssessment{Score: 20, Level: RiskLow}
	staff := Actor{ID: 10, Role: profile.RoleLoanOfficer}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.repo.On("UpdateApplication", ctx, app).Return(nil)
	f.expectEmit()

	result, err := f.service.Route(ctx, app.ID, staff)

	require.NoError(t, err)
	assert.Equal(t, StatusPendingFinanceDirector, result.Status)
}

func TestRouteHeldByRiskGate(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusUnderReview, 3000)
	app.Risk = &RiskAssessment{Score: 75, Level: RiskMedium}
	staff := Actor{ID: 10, Role: profile.RoleLoanOfficer}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)

	_, err := f.service.Route(ctx, app.ID, staff)

	assert.ErrorIs(t, err, apperrors.ErrGatePending)
	assert.Equal(t, StatusUnderReview, app.Status)
}

func TestRecordDispositionApprovedRoutesImmediately(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusUnderReview, 3000)
	app.Risk = &RiskAssessment{Score: 75, Level: RiskMedium}
	staff := Actor{ID: 10, Role: profile.RoleLoanOfficer}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.repo.On("UpdateApplication", ctx, app).Return(nil)
	f.expectEmit()

	result, err := f.service.RecordDisposition(ctx, app.ID, staff, DispositionApproved, "income verified by phone")

	require.NoError(t, err)
	assert.Equal(t, StatusPendingLoanOfficer, result.Status)
	assert.Equal(t, DispositionApproved, result.Disposition)
	require.NotNil(t, result.ReviewerID)
	assert.Equal(t, staff.ID, *result.ReviewerID)
	assert.Contains(t, result.ReviewNotes, "income verified by phone")
}

func TestRecordDispositionRejectedDelegatesToReject(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusUnderReview, 3000)
	app.Risk = &RiskAssessment{Score: 80, Level: RiskHigh}
	staff := Actor{ID: 10, Role: profile.RoleLoanOfficer}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.repo.On("UpdateApplication", ctx, app).Return(nil)
	f.expectEmit()

	result, err := f.service.RecordDisposition(ctx, app.ID, staff, DispositionRejected, "unresolvable risk flags")

	require.NoError(t, err)
	assert.Equal(t, StatusRejected, result.Status)
	assert.Equal(t, "unresolvable risk flags", result.RejectionReason)
}

func TestRecordDispositionManualReviewStaysPut(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusUnderReview, 3000)
	app.Risk = &RiskAssessment{Score: 75, Level: RiskMedium}
	staff := Actor{ID: 10, Role: profile.RoleLoanOfficer}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.repo.On("UpdateApplication", ctx, app).Return(nil)

	result, err := f.service.RecordDisposition(ctx, app.ID, staff, DispositionManualReview, "awaiting payslips")

	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, result.Status)
	assert.Equal(t, DispositionManualReview, result.Disposition)
	f.audit.AssertNotCalled(t, "RecordTransition", mock.Anything, mock.Anything)
}

func TestRecordDispositionRequiresUnderReview(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusSubmitted, 3000)
	staff := Actor{ID: 10, Role: profile.RoleLoanOfficer}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)

	_, err := f.service.RecordDisposition(ctx, app.ID, staff, DispositionApproved, "")

	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestApproveComputesMonthlyInstallment(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusPendingLoanOfficer, 5000)
	staff := Actor{ID: 10, Role: profile.RoleLoanOfficer}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.repo.On("UpdateApplication", ctx, app).Return(nil)
	f.expectEmit()

	result, err := f.service.Approve(ctx, app.ID, staff)

	require.NoError(t, err)
	assert.Equal(t, StatusApproved, result.Status)
	assert.Equal(t, "444.24", result.MonthlyInstallment.StringFixed(2))
	require.NotNil(t, result.ReviewerID)
	assert.Equal(t, staff.ID, *result.ReviewerID)
}

func TestConflictingUpdateSurfacesAsConflict(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusPendingLoanOfficer, 5000)
	staff := Actor{ID: 10, Role: profile.RoleLoanOfficer}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.repo.On("UpdateApplication", ctx, app).Return(apperrors.ErrConflictingUpdate)

	_, err := f.service.Approve(ctx, app.ID, staff)

	assert.ErrorIs(t, err, apperrors.ErrConflictingUpdate)
	f.audit.AssertNotCalled(t, "RecordTransition", mock.Anything, mock.Anything)
}

func TestPublishFailureDoesNotFailTransition(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusPendingLoanOfficer, 5000)
	staff := Actor{ID: 10, Role: profile.RoleLoanOfficer}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.repo.On("UpdateApplication", ctx, app).Return(nil)
	f.audit.On("RecordTransition", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	result, err := f.service.Approve(ctx, app.ID, staff)

	require.NoError(t, err)
	assert.Equal(t, StatusApproved, result.Status)
}

func TestDisburse(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusApproved, 5000)
	financeDirector := Actor{ID: 12, Role: profile.RoleFinanceDirector}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.repo.On("DisburseWithSchedule", ctx, app, mock.Anything).Return(nil)
	f.expectEmit()

	result, err := f.service.Disburse(ctx, app.ID, financeDirector)

	require.NoError(t, err)
	assert.Equal(t, StatusDisbursed, result.Status)

	installments := f.repo.Calls[1].Arguments.Get(2).([]*schedule.Installment)
	assert.Len(t, installments, app.TermMonths)
}

func TestDisburseScheduleFailurePreventsStatusFlip(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusApproved, 5000)
	app.TermMonths = 0
	financeDirector := Actor{ID: 12, Role: profile.RoleFinanceDirector}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)

	_, err := f.service.Disburse(ctx, app.ID, financeDirector)

	assert.ErrorIs(t, err, apperrors.ErrScheduleGeneration)
	assert.Equal(t, StatusApproved, app.Status)
	f.repo.AssertNotCalled(t, "DisburseWithSchedule", mock.Anything, mock.Anything, mock.Anything)
}

type paymentTx struct {
	pgx.Tx
}

func TestRecordPayment(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusDisbursed, 5000)
	tx := &paymentTx{}
	amount := decimal.NewFromFloat(444.24)
	inst := &schedule.Installment{ApplicationID: app.ID, Sequence: 3, Total: amount, Status: schedule.InstallmentPending}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.repo.On("BeginTx", ctx).Return(tx, nil)
	f.repo.On("FindOldestUnpaidInstallmentForUpdate", ctx, tx, app.ID).Return(inst, nil)
	f.repo.On("UpdateInstallmentInTx", ctx, tx, inst).Return(nil)
	f.repo.On("CountUnpaidInTx", ctx, tx, app.ID).Return(9, nil)
	f.repo.On("CommitTx", ctx, tx).Return(nil)

	err := f.service.RecordPayment(ctx, app.ID, amount)

	require.NoError(t, err)
	assert.Equal(t, schedule.InstallmentPaid, inst.Status)
	assert.True(t, inst.PaidAmount.Equal(amount))
	require.NotNil(t, inst.PaidAt)
	assert.Equal(t, StatusDisbursed, app.Status)
	f.repo.AssertExpectations(t)
}

func TestRecordPaymentCompletesLoan(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusDisbursed, 5000)
	tx := &paymentTx{}
	amount := decimal.NewFromFloat(444.24)
	inst := &schedule.Installment{ApplicationID: app.ID, Sequence: 12, Total: amount, Status: schedule.InstallmentPending}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.repo.On("BeginTx", ctx).Return(tx, nil)
	f.repo.On("FindOldestUnpaidInstallmentForUpdate", ctx, tx, app.ID).Return(inst, nil)
	f.repo.On("UpdateInstallmentInTx", ctx, tx, inst).Return(nil)
	f.repo.On("CountUnpaidInTx", ctx, tx, app.ID).Return(0, nil)
	f.repo.On("UpdateApplicationInTx", ctx, tx, app).Return(nil)
	f.repo.On("CommitTx", ctx, tx).Return(nil)
	f.expectEmit()

	err := f.service.RecordPayment(ctx, app.ID, amount)

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, app.Status)
	f.repo.AssertExpectations(t)
}

func TestRecordPaymentRejectsWrongAmount(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusDisbursed, 5000)
	tx := &paymentTx{}
	inst := &schedule.Installment{ApplicationID: app.ID, Sequence: 1, Total: decimal.NewFromFloat(444.24), Status: schedule.InstallmentPending}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.repo.On("BeginTx", ctx).Return(tx, nil)
	f.repo.On("FindOldestUnpaidInstallmentForUpdate", ctx, tx, app.ID).Return(inst, nil)
	f.repo.On("RollbackTx", ctx, tx).Return(nil)

	err := f.service.RecordPayment(ctx, app.ID, decimal.NewFromInt(400))

	assert.ErrorIs(t, err, apperrors.ErrInvalidPaymentAmount)
	f.repo.AssertCalled(t, "RollbackTx", ctx, tx)
	f.repo.AssertNotCalled(t, "UpdateInstallmentInTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordPaymentOnFullyPaidLoan(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusDisbursed, 5000)
	tx := &paymentTx{}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.repo.On("BeginTx", ctx).Return(tx, nil)
	f.repo.On("FindOldestUnpaidInstallmentForUpdate", ctx, tx, app.ID).Return(nil, apperrors.ErrNotFound)
	f.repo.On("RollbackTx", ctx, tx).Return(nil)

	err := f.service.RecordPayment(ctx, app.ID, decimal.NewFromFloat(444.24))

	assert.ErrorIs(t, err, apperrors.ErrLoanFullyPaid)
}

func TestRecordPaymentRequiresDisbursedStatus(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusApproved, 5000)

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)

	err := f.service.RecordPayment(ctx, app.ID, decimal.NewFromFloat(444.24))

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	f.repo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestMarkDefaulted(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusDisbursed, 5000)
	staff := Actor{ID: 10, Role: profile.RoleLoanOfficer}
	installments := []*schedule.Installment{
		{Status: schedule.InstallmentPaid, DueDate: transitionTime.AddDate(0, -3, 0)},
		{Status: schedule.InstallmentPending, DueDate: transitionTime.AddDate(0, -2, 0)},
		{Status: schedule.InstallmentPending, DueDate: transitionTime.AddDate(0, -1, 0)},
	}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.repo.On("GetScheduleByApplicationID", ctx, app.ID).Return(installments, nil)
	f.repo.On("UpdateApplication", ctx, app).Return(nil)
	f.expectEmit()

	result, err := f.service.MarkDefaulted(ctx, app.ID, staff)

	require.NoError(t, err)
	assert.Equal(t, StatusDefaulted, result.Status)
}

func TestMarkDefaultedNeedsEnoughOverdue(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	app := newTestApplication(StatusDisbursed, 5000)
	staff := Actor{ID: 10, Role: profile.RoleLoanOfficer}
	installments := []*schedule.Installment{
		{Status: schedule.InstallmentPending, DueDate: transitionTime.AddDate(0, -1, 0)},
		{Status: schedule.InstallmentPending, DueDate: transitionTime.AddDate(0, 1, 0)},
	}

	f.repo.On("GetApplicationByID", ctx, app.ID).Return(app, nil)
	f.repo.On("GetScheduleByApplicationID", ctx, app.ID).Return(installments, nil)

	_, err := f.service.MarkDefaulted(ctx, app.ID, staff)

	assert.ErrorIs(t, err, apperrors.ErrGatePending)
	f.repo.AssertNotCalled(t, "UpdateApplication", mock.Anything, mock.Anything)
}
