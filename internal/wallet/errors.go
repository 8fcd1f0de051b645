package wallet

import "errors"

var (
	// ErrInvalidSeed is returned when a seed is not a 64 character hex string.
	ErrInvalidSeed = errors.New("seed must be a 64 character hex string")
	// ErrMissingCredentials is returned when neither a seed nor a user
	// secret with server key is provided at construction.
	ErrMissingCredentials = errors.New(
		"either a seed or a user secret with server key must be provided",
	)
	// ErrConflictingCredentials is returned when both construction modes
	// are provided at once.
	ErrConflictingCredentials = errors.New(
		"seed and user secret with server key are mutually exclusive",
	)
	// ErrInvalidMnemonic is returned for a malformed BIP-39 mnemonic.
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")
	// ErrUnknownNetwork is returned when a wallet is constructed for a
	// network without a registered coin type.
	ErrUnknownNetwork = errors.New("unknown network")

	// ErrUnexpectedAddressType is returned when an address of the wrong
	// concrete variant is inserted into an indexed wallet.
	ErrUnexpectedAddressType = errors.New("unexpected address type for indexed wallet")
	// ErrMissingAddressIndex is returned when a bulk-loaded address does
	// not carry a derivation index.
	ErrMissingAddressIndex = errors.New("address does not carry a derivation index")
	// ErrAddressNotFound is returned when signing with an address hex the
	// wallet does not contain.
	ErrAddressNotFound = errors.New("address not found in wallet")
	// ErrMissingTrustScore is returned when the trust score response has
	// no data payload or the payload lacks a trust score field.
	ErrMissingTrustScore = errors.New("trust score response carries no trust score")
)
