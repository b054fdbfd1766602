package models

// CommentSchema accepts content, postId and sender. The referenced post is not checked.
var CommentSchema = NewSchema("comment", false, func() any { return &Comment{} })
