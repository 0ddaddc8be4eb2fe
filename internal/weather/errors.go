package weather

// FallbackMessage is shown when an error carries no text of its own.
const FallbackMessage = "Something went wrong"

// NotFoundError is returned by a Resolver when the upstream search has no match.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return "Location not found"
}

// NetworkError covers non-2xx responses, transport failures and unusable
// payloads from either upstream. Error returns the user-facing text only;
// the underlying cause is reachable through Unwrap.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	return e.Message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// GeolocationError means the device could not or would not report its position.
type GeolocationError struct {
	Message string
	// Unsupported is set when the device has no geolocation capability at all.
	Unsupported bool
}

func (e *GeolocationError) Error() string {
	return e.Message
}

// ErrGeolocationUnsupported is returned by locators on devices without geolocation.
var ErrGeolocationUnsupported = &GeolocationError{Message: "Geolocation not supported", Unsupported: true}

// UserMessage converts any error into the text shown in the alert region.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackMessage
}
