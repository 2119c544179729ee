package model

import "errors"

var (
	// ErrMissingCredential indicates no Grocy API key has been configured
	ErrMissingCredential = errors.New("grocy api key not set")

	// ErrRegistryUnavailable indicates the supervisor could not be queried
	ErrRegistryUnavailable = errors.New("supervisor registry unavailable")

	// ErrServiceNotFound indicates no installed addon matched the inventory service name
	ErrServiceNotFound = errors.New("grocy addon not found")

	// ErrAddressUnresolved indicates the addon info carried no private ip address
	ErrAddressUnresolved = errors.New("grocy addon ip address not found")

	// ErrBaseURLUnset indicates a gateway call was attempted before a base url was resolved
	ErrBaseURLUnset = errors.New("grocy base url not resolved")

	ErrUnknownAction   = errors.New("unknown stock action")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrMissingBarcode  = errors.New("barcode is required")

	// ErrFallbackDisabled indicates the public product database lookup is turned off
	ErrFallbackDisabled = errors.New("fallback product lookup disabled")

	// ErrProductNotFound is returned by the fallback product source
	ErrProductNotFound = errors.New("product not found")
)

// IsDiscoveryError reports whether err came from locating the inventory service.
func IsDiscoveryError(err error) bool {
	return errors.Is(err, ErrServiceNotFound) || errors.Is(err, ErrAddressUnresolved)
}
