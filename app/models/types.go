package models

// Post represents a blog post.
type Post struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
	Sender  string `json:"sender" validate:"required"`
}

// Comment represents a comment on a blog post.
type Comment struct {
	Content string `json:"content" validate:"required"`
	PostID  string `json:"postId" validate:"required"`
	Sender  string `json:"sender" validate:"required"`
}
