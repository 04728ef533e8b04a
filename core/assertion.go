package core

import "strings"

// Assertion binds a user to a badge
type Assertion struct {
	ID       string // Assigned by the store on persistence
	BadgeID  string // Badge being awarded
	UserID   string // Host application user
	Token    string // Capability secret for the baking callback
	IsBaked  bool   // Set once the baking service returned an image
	Evidence string
	Expires  string
	IssuedOn string
}

// NewAssertionParams holds the caller-supplied fields of a new assertion
type NewAssertionParams struct {
	BadgeID  string
	UserID   string
	Evidence string
	Expires  string
	IssuedOn string
}

// NewAssertion validates the required references and assigns a fresh token.
// The returned assertion is not persisted yet, so it has no ID.
func NewAssertion(params NewAssertionParams, tokens *TokenGenerator) (*Assertion, error) {
	if strings.TrimSpace(params.BadgeID) == "" {
		return nil, &ValidationError{Field: "badge_id", Err: ErrRequired}
	}
	if strings.TrimSpace(params.UserID) == "" {
		return nil, &ValidationError{Field: "user_id", Err: ErrRequired}
	}

	token, err := tokens.Generate()
	if err != nil {
		return nil, err
	}

	return &Assertion{
		BadgeID:  params.BadgeID,
		UserID:   params.UserID,
		Token:    token,
		Evidence: params.Evidence,
		Expires:  params.Expires,
		IssuedOn: params.IssuedOn,
	}, nil
}

// NeedsBaking reports whether a bake attempt may have any effect
func (a *Assertion) NeedsBaking() bool {
	return a.ID != "" && !a.IsBaked
}

// Issuer describes the organization awarding badges
type Issuer struct {
	Origin  string `json:"origin"`
	Name    string `json:"name"`
	Org     string `json:"org,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// Badge is owned by the host application; assertions only read it
type Badge struct {
	ID          string
	Version     string
	Name        string
	Image       string
	Description string
	Criteria    string
	Issuer      Issuer
}

// Validate checks the fields an Open Badges assertion needs from its badge
func (b Badge) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"name", b.Name},
		{"image", b.Image},
		{"description", b.Description},
		{"criteria", b.Criteria},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: "badge." + r.field, Err: ErrRequired}
		}
	}
	return nil
}
