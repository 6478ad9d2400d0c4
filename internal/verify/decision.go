// Package verify orchestrates two-factor gate verification: a QR gate pass
// asserting an identity, then a live face match against that identity's
// enrolled embedding.
package verify

// Outcome is the binary gate decision.
type Outcome string

const (
	OutcomeGranted Outcome = "GRANTED"
	OutcomeDenied  Outcome = "DENIED"
)

// Reason explains a decision. Every DENIED decision carries exactly one
// reason; GRANTED always carries ReasonSuccess.
type Reason string

const (
	ReasonSuccess Reason = "SUCCESS"

	// Token factor failures. The face factor is never evaluated when one
	// of these fires.
	ReasonInvalidFormat Reason = "INVALID_FORMAT"
	ReasonUnknownToken  Reason = "UNKNOWN_TOKEN"
	ReasonExpired       Reason = "EXPIRED"
	ReasonConsumed      Reason = "CONSUMED"

	// Face factor failures.
	ReasonFaceMismatch    Reason = "FACE_MISMATCH"
	ReasonUnknownIdentity Reason = "UNKNOWN_IDENTITY"
	ReasonNoFaceDetected  Reason = "NO_FACE_DETECTED"
)

// Decision is the result of one full verification attempt.
type Decision struct {
	Outcome     Outcome `json:"outcome"`
	Reason      Reason  `json:"reason"`
	IdentityKey string  `json:"identity_key,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	// Distance is the cosine distance between the probe and the enrolled
	// embedding. Set only when the face factor was evaluated and a face
	// was found; nil otherwise.
	Distance *float64 `json:"distance,omitempty"`
}

// Granted reports whether the gate should open.
func (d Decision) Granted() bool {
	return d.Outcome == OutcomeGranted
}
