package ports

// Tokenizer issues and verifies bearer tokens for the admin HTTP surface
type Tokenizer interface {
	IssueAdminToken(subject string) (string, error)
	VerifyAdminToken(token string) (subject string, err error)
}
