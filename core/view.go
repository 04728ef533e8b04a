package core

// BadgeView is the public projection of a badge
type BadgeView struct {
	Version     string `json:"version"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Criteria    string `json:"criteria"`
	Issuer      Issuer `json:"issuer"`
}

// AssertionView is the public Open Badges representation of an assertion.
// It carries no token, user or baking state.
type AssertionView struct {
	Evidence  string    `json:"evidence"`
	Expires   string    `json:"expires"`
	IssuedOn  string    `json:"issued_on"`
	Recipient string    `json:"recipient"`
	Salt      string    `json:"salt"`
	Badge     BadgeView `json:"badge"`
}

// Serializer projects assertions into their public view
type Serializer struct {
	Salt   string
	Issuer Issuer // Used for badges that don't name their own issuer
}

// View renders the assertion for the recipient with the given email
func (s Serializer) View(a *Assertion, badge Badge, email string) AssertionView {
	issuer := badge.Issuer
	if issuer.Origin == "" {
		issuer = s.Issuer
	}

	return AssertionView{
		Evidence:  a.Evidence,
		Expires:   a.Expires,
		IssuedOn:  a.IssuedOn,
		Recipient: HashRecipient(email, s.Salt),
		Salt:      s.Salt,
		Badge: BadgeView{
			Version:     badge.Version,
			Name:        badge.Name,
			Image:       badge.Image,
			Description: badge.Description,
			Criteria:    badge.Criteria,
			Issuer:      issuer,
		},
	}
}
