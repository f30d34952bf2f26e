package model

import (
	"slices"
	"time"
)

// Profile is the public developer profile owned by a single user.
// Experience and Education are stored inside the profile document.
type Profile struct {
	ID             string       `json:"_id"`
	UserID         string       `json:"-"`
	User           UserSummary  `json:"user"`
	Company        string       `json:"company,omitempty"`
	Website        string       `json:"website,omitempty"`
	Location       string       `json:"location,omitempty"`
	Status         string       `json:"status"`
	Skills         []string     `json:"skills"`
	Bio            string       `json:"bio,omitempty"`
	GitHubUsername string       `json:"githubusername,omitempty"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	Social         Social       `json:"social"`
	Version        int64        `json:"-"`
	CreatedAt      time.Time    `json:"date"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// OwnerID returns the identity that created the profile.
func (p *Profile) OwnerID() string {
	return p.UserID
}

// Experience is a single job entry of a profile.
type Experience struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

// Education is a single school entry of a profile.
type Education struct {
	ID           string     `json:"_id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

// Social holds the optional social network links of a profile.
type Social struct {
	YouTube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// ExperienceIndex returns the position of the entry with the given ID, or -1.
func (p *Profile) ExperienceIndex(id string) int {
	return slices.IndexFunc(p.Experience, func(e Experience) bool { return e.ID == id })
}

// EducationIndex returns the position of the entry with the given ID, or -1.
func (p *Profile) EducationIndex(id string) int {
	return slices.IndexFunc(p.Education, func(e Education) bool { return e.ID == id })
}
