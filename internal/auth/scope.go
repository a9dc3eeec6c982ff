package auth

// Scope restricts a non-admin account to a single household, identified by
// housing block and house number. A zero Scope means unrestricted.
type Scope struct {
	Block       string `json:"block,omitempty"`
	HouseNumber string `json:"house_number,omitempty"`
}

// IsRestricted reports whether the scope limits visibility at all.
func (s Scope) IsRestricted() bool {
	return s.Block != "" || s.HouseNumber != ""
}

// AllowsHousehold reports whether a household with the given block and
// house number is visible under this scope.
func (s Scope) AllowsHousehold(block, houseNumber string) bool {
	if !s.IsRestricted() {
		return true
	}
	if s.Block != "" && s.Block != block {
		return false
	}
	if s.HouseNumber != "" && s.HouseNumber != houseNumber {
		return false
	}
	return true
}
