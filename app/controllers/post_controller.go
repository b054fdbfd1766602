package controllers

import "postsapi/app/repositories"

// NewPostController serves /post from the posts collection.
func NewPostController(posts repositories.Collection) *ResourceController {
	return NewResourceController(posts)
}
