package dto

import "github.com/devconnect/devconnect/internal/model"

// ProfileRequest represents the request body for creating or updating a profile.
// Skills is a comma-separated list; social links are flat fields.
type ProfileRequest struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Status         string `json:"status"`
	Skills         string `json:"skills"`
	Bio            string `json:"bio"`
	GitHubUsername string `json:"githubusername"`
	YouTube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	LinkedIn       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// Social collects the social links of the request.
func (r ProfileRequest) Social() model.Social {
	return model.Social{
		YouTube:   r.YouTube,
		Twitter:   r.Twitter,
		Facebook:  r.Facebook,
		LinkedIn:  r.LinkedIn,
		Instagram: r.Instagram,
	}
}

// ExperienceRequest represents the request body for adding experience.
// Dates are RFC 3339 timestamps or YYYY-MM-DD.
type ExperienceRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// EducationRequest represents the request body for adding education.
type EducationRequest struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}
