// Package facematch owns the enrolled-embedding table and turns embedding
// comparisons into match decisions. All access to the store goes through the
// Engine; no other component reads the table directly.
package facematch

// VerifyOutcome classifies a one-to-one verification attempt.
type VerifyOutcome string

const (
	VerifyMatch           VerifyOutcome = "MATCH"
	VerifyNoMatch         VerifyOutcome = "NO_MATCH"
	VerifyUnknownIdentity VerifyOutcome = "UNKNOWN_IDENTITY"
	VerifyNoFace          VerifyOutcome = "NO_FACE_DETECTED"
)

// VerifyResult is the outcome of verifying a probe against one named identity.
// Distance is meaningful only for MATCH and NO_MATCH.
type VerifyResult struct {
	Outcome  VerifyOutcome
	Distance float64
}

// IdentifyOutcome classifies a one-to-many identification attempt.
type IdentifyOutcome string

const (
	IdentifyFound           IdentifyOutcome = "FOUND"
	IdentifyNoEnrolledMatch IdentifyOutcome = "NO_ENROLLED_MATCH"
	IdentifyNoFace          IdentifyOutcome = "NO_FACE_DETECTED"
)

// IdentifyResult is the outcome of identifying the nearest enrolled identity.
// IdentityKey and Distance are set only for FOUND.
type IdentifyResult struct {
	Outcome     IdentifyOutcome
	IdentityKey string
	Distance    float64
}
