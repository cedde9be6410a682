package kyc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func doc(stage Stage, kind DocumentKind, status DocumentStatus) *Document {
	return &Document{Stage: stage, Kind: kind, Status: status}
}

func docAt(stage Stage, kind DocumentKind, status DocumentStatus, at time.Time) *Document {
	return &Document{Stage: stage, Kind: kind, Status: status, CreatedAt: at}
}

func TestEvaluateStage1(t *testing.T) {
	assert.Equal(t, VerdictPending, Evaluate(Stage1, nil), "no documents")

	pending := []*Document{doc(Stage1, KindIdentityProof, DocumentPending)}
	assert.Equal(t, VerdictPending, Evaluate(Stage1, pending))

	verified := []*Document{doc(Stage1, KindIdentityProof, DocumentVerified)}
	assert.Equal(t, VerdictApproved, Evaluate(Stage1, verified))

	rejected := []*Document{doc(Stage1, KindIdentityProof, DocumentRejected)}
	assert.Equal(t, VerdictRejected, Evaluate(Stage1, rejected))
}

func TestEvaluateStage2RequiresBothKinds(t *testing.T) {
	incomeOnly := []*Document{doc(Stage2, KindProofOfIncome, DocumentVerified)}
	assert.Equal(t, VerdictPending, Evaluate(Stage2, incomeOnly))

	both := []*Document{
		doc(Stage2, KindProofOfIncome, DocumentVerified),
		doc(Stage2, KindProofOfFunds, DocumentVerified),
	}
	assert.Equal(t, VerdictApproved, Evaluate(Stage2, both))

	onePending := []*Document{
		doc(Stage2, KindProofOfIncome, DocumentVerified),
		doc(Stage2, KindProofOfFunds, DocumentPending),
	}
	assert.Equal(t, VerdictPending, Evaluate(Stage2, onePending))
}

func TestEvaluateSingleRejectionRejectsStage(t *testing.T) {
	docs := []*Document{
		doc(Stage2, KindProofOfIncome, DocumentVerified),
		doc(Stage2, KindProofOfFunds, DocumentRejected),
	}
	assert.Equal(t, VerdictRejected, Evaluate(Stage2, docs))
}

func TestEvaluateFreshUploadSupersedesRejection(t *testing.T) {
	rejectedAt := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	docs := []*Document{
		docAt(Stage2, KindProofOfIncome, DocumentRejected, rejectedAt),
		docAt(Stage2, KindProofOfIncome, DocumentVerified, rejectedAt.AddDate(0, 0, 3)),
		docAt(Stage2, KindProofOfFunds, DocumentVerified, rejectedAt),
	}
	assert.Equal(t, VerdictApproved, Evaluate(Stage2, docs), "a verified re-upload recovers the kind")

	reuploadPending := []*Document{
		docAt(Stage2, KindProofOfIncome, DocumentRejected, rejectedAt),
		docAt(Stage2, KindProofOfIncome, DocumentPending, rejectedAt.AddDate(0, 0, 3)),
		docAt(Stage2, KindProofOfFunds, DocumentVerified, rejectedAt),
	}
	assert.Equal(t, VerdictPending, Evaluate(Stage2, reuploadPending), "a pending re-upload lifts the rejection")
}

func TestEvaluateLaterRejectionNeverUnsettlesVerifiedKind(t *testing.T) {
	verifiedAt := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	docs := []*Document{
		docAt(Stage2, KindProofOfIncome, DocumentVerified, verifiedAt),
		docAt(Stage2, KindProofOfIncome, DocumentRejected, verifiedAt.AddDate(0, 0, 3)),
		docAt(Stage2, KindProofOfFunds, DocumentVerified, verifiedAt),
	}

	assert.Equal(t, VerdictApproved, Evaluate(Stage2, docs))
}

func TestEvaluateIgnoresOtherStages(t *testing.T) {
	docs := []*Document{
		doc(Stage1, KindIdentityProof, DocumentVerified),
		doc(Stage2, KindProofOfIncome, DocumentRejected),
	}
	assert.Equal(t, VerdictApproved, Evaluate(Stage1, docs), "a stage-2 rejection never taints stage 1")
}

func TestEvaluateIsIdempotent(t *testing.T) {
	docs := []*Document{
		doc(Stage2, KindProofOfIncome, DocumentVerified),
		doc(Stage2, KindProofOfFunds, DocumentVerified),
	}

	first := Evaluate(Stage2, docs)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Evaluate(Stage2, docs))
	}
}

func TestRequiredKinds(t *testing.T) {
	assert.Equal(t, []DocumentKind{KindIdentityProof}, RequiredKinds(Stage1))
	assert.Equal(t, []DocumentKind{KindProofOfIncome, KindProofOfFunds}, RequiredKinds(Stage2))
}
