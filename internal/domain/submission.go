package domain

// SubmissionRules are the validation limits applied to photo submissions.
type SubmissionRules struct {
	AllowedExtensions []string
	MaxTitleLength    int
	MaxAuthorLength   int
}

// DefaultSubmissionRules returns the contest defaults: gif/jpg/png, 25 and 50 characters.
func DefaultSubmissionRules() SubmissionRules {
	return SubmissionRules{
		AllowedExtensions: []string{"gif", "jpg", "png"},
		MaxTitleLength:    25,
		MaxAuthorLength:   50,
	}
}
