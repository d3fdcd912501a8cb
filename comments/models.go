package comments

// Comment is a short note attached to a movie. It is removed together with its movie.
type Comment struct {
	ID        int    `json:"id" example:"12"`
	MovieID   int    `json:"movie_id" example:"3"`
	Text      string `json:"text" example:"Watch it for the soundtrack alone."`
	Important bool   `json:"important" example:"false"`
}

// NewCommentRequest is the body of POST /api/movies/{id}/comments. MovieID may
// be omitted; when present it has to match the movie in the path.
type NewCommentRequest struct {
	Text      string `json:"text" validate:"required,min=10" example:"Watch it for the soundtrack alone."`
	Important bool   `json:"important" example:"false"`
	MovieID   *int   `json:"movie_id,omitempty" example:"3"`
}

// UpdateCommentRequest is the body of PUT /api/movies/{id}/comments/{commentId}.
// ID must equal the comment id in the path.
type UpdateCommentRequest struct {
	ID        int    `json:"id" validate:"required,gt=0" example:"12"`
	Text      string `json:"text" validate:"required,min=10" example:"On second viewing, the ending lands."`
	Important bool   `json:"important" example:"true"`
}
