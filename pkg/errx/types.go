package errx

// Type categorizes an error for transport mapping and logging.
type Type string

const (
	// TypeInternal is an unexpected server-side failure
	TypeInternal Type = "INTERNAL"

	// TypeValidation is a malformed or incomplete input
	TypeValidation Type = "VALIDATION"

	// TypeAuthorization is a failed authentication or authorization check
	TypeAuthorization Type = "AUTHORIZATION"

	// TypeNotFound is a missing resource
	TypeNotFound Type = "NOT_FOUND"

	// TypeConflict is a resource state conflict
	TypeConflict Type = "CONFLICT"

	// TypeBusiness is a domain rule violation
	TypeBusiness Type = "BUSINESS"

	// TypeExternal is a failure reported by an external service
	TypeExternal Type = "EXTERNAL"
)

// String returns the string representation of the error type
func (t Type) String() string {
	return string(t)
}
