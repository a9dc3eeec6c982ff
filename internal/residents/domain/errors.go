package residents

import "errors"

var (
	// ErrNotFound indicates no resident record with the given id.
	ErrNotFound = errors.New("residents: not found")
	// ErrEmptyName indicates a record without a head-of-family name.
	ErrEmptyName = errors.New("residents: empty name")
	// ErrEmptyNIK indicates a record without a national identity number.
	ErrEmptyNIK = errors.New("residents: empty nik")
	// ErrEmptyFamilyCard indicates a record without a family card number.
	ErrEmptyFamilyCard = errors.New("residents: empty family card number")
)
