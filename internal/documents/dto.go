package documents

// UpdateRequest is the JSON body of a partial document update. Nil fields
// are left unchanged.
type UpdateRequest struct {
	Title        *string `json:"title"`
	Content      *string `json:"content"`
	ImageURL     *string `json:"imageUrl"`
	DocumentType *string `json:"documentType"`
}

// Params converts the request body to repo update params.
func (r UpdateRequest) Params() UpdateParams {
	return UpdateParams{
		Title:        r.Title,
		Content:      r.Content,
		ImageURL:     r.ImageURL,
		DocumentType: r.DocumentType,
	}
}
