package authority

// Code is a machine-readable error code from the identity authority's
// documented vocabulary. Upstream codes outside the enumeration parse as
// CodeUnknown so new codes degrade to a generic failure instead of a
// silent mismatch.
type Code string

const (
	CodeUnknown       Code = ""
	CodeUsernameTaken Code = "USERNAME_TAKEN"
	CodePhoneTaken    Code = "PHONE_TAKEN"
	CodeEmailTaken    Code = "EMAIL_TAKEN"
	CodeUserNotFound  Code = "USER_NOT_FOUND"
	CodeRateLimited   Code = "RATE_LIMITED"
)

// ParseCode maps a raw upstream code onto the closed enumeration.
func ParseCode(raw string) Code {
	switch Code(raw) {
	case CodeUsernameTaken, CodePhoneTaken, CodeEmailTaken, CodeUserNotFound, CodeRateLimited:
		return Code(raw)
	default:
		return CodeUnknown
	}
}
