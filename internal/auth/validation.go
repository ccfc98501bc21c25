package auth

// ValidationResult is the outcome of TokenService.Validate.
type ValidationResult int

const (
	ValidationValid ValidationResult = iota
	ValidationMalformed
	ValidationExpired
	ValidationUnsupported
	ValidationInvalidClaims
	ValidationInvalidSignature
)

// String returns a stable label, also used as a metric label value.
func (r ValidationResult) String() string {
	switch r {
	case ValidationValid:
		return "valid"
	case ValidationMalformed:
		return "malformed"
	case ValidationExpired:
		return "expired"
	case ValidationUnsupported:
		return "unsupported"
	case ValidationInvalidClaims:
		return "invalid_claims"
	case ValidationInvalidSignature:
		return "invalid_signature"
	default:
		return "unknown"
	}
}
