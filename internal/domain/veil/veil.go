package veil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// AnonymizedIdentity is the client-facing label for a candidate before a
// consented disclosure. It is derived only from the job title and the
// submission id, never from candidate personal data, so it cannot be
// reversed into an identity.
type AnonymizedIdentity struct {
	Label string `json:"label"`
	Code  string `json:"code"`
}

const codeLen = 6

// Anonymize builds the deterministic label for a submission. Same submission
// id and job title always yield the same label.
func Anonymize(submissionID uuid.UUID, jobTitle string) AnonymizedIdentity {
	sum := sha256.Sum256([]byte(submissionID.String()))
	code := strings.ToUpper(hex.EncodeToString(sum[:]))[:codeLen]

	label := "Candidate #" + code
	if title := strings.TrimSpace(jobTitle); title != "" {
		label = title + " Candidate #" + code
	}

	return AnonymizedIdentity{Label: label, Code: code}
}
