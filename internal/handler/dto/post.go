package dto

// TextRequest represents the body of post and comment writes.
type TextRequest struct {
	Text string `json:"text"`
}
