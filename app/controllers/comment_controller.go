package controllers

import "postsapi/app/repositories"

// NewCommentController serves /comment from the comments collection.
func NewCommentController(comments repositories.Collection) *ResourceController {
	return NewResourceController(comments)
}
