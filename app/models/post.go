package models

// PostSchema accepts title, content and sender, and stamps createdAt on insert.
var PostSchema = NewSchema("post", true, func() any { return &Post{} })
