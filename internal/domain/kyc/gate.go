package kyc

import (
	"origination-engine/internal/infrastructure/monitoring"
)

// Verdict is the gate's answer for one stage. The gate never writes anything;
// it only interprets the document set it is handed.
type Verdict string

const (
	VerdictApproved Verdict = "approved"
	VerdictRejected Verdict = "rejected"
	VerdictPending  Verdict = "pending"
)

var requiredKinds = map[Stage][]DocumentKind{
	Stage1: {KindIdentityProof},
	Stage2: {KindProofOfIncome, KindProofOfFunds},
}

// RequiredKinds returns the document kinds a stage demands.
func RequiredKinds(stage Stage) []DocumentKind {
	kinds := make([]DocumentKind, len(requiredKinds[stage]))
	copy(kinds, requiredKinds[stage])
	return kinds
}

// Evaluate applies the shared gate rule to a stage: every required kind must
// carry verified evidence. A kind without any speaks through its newest
// document, so a rejection blocks the stage only until a fresh upload
// supersedes it. Documents for other stages or kinds are ignored.
func Evaluate(stage Stage, docs []*Document) Verdict {
	verdict := evaluate(stage, docs)
	monitoring.RecordGateVerdict(stage.String(), string(verdict))
	return verdict
}

func evaluate(stage Stage, docs []*Document) Verdict {
	byKind := make(map[DocumentKind][]*Document)
	for _, d := range docs {
		if d.Stage == stage {
			byKind[d.Kind] = append(byKind[d.Kind], d)
		}
	}

	allVerified := true
	for _, kind := range requiredKinds[stage] {
		kindDocs := byKind[kind]

		// A verified document is immutable, so it settles its kind for good.
		if hasVerified(kindDocs) {
			continue
		}
		allVerified = false

		if latest := newest(kindDocs); latest != nil && latest.Status == DocumentRejected {
			return VerdictRejected
		}
	}

	if allVerified {
		return VerdictApproved
	}
	return VerdictPending
}

func hasVerified(docs []*Document) bool {
	for _, d := range docs {
		if d.Status == DocumentVerified {
			return true
		}
	}
	return false
}

func newest(docs []*Document) *Document {
	var latest *Document
	for _, d := range docs {
		if latest == nil || d.CreatedAt.After(latest.CreatedAt) ||
			(d.CreatedAt.Equal(latest.CreatedAt) && d.ID > latest.ID) {
			latest = d
		}
	}
	return latest
}
