package domain

// DefaultBlogCategory is applied when a post does not name one.
const DefaultBlogCategory = "General"

// BlogPost is an announcement published by the site administrators.
type BlogPost struct {
	PostID    string  `json:"postId"`
	Title     *string `json:"title"`
	Summary   *string `json:"summary"`
	Content   *string `json:"content"`
	Author    string  `json:"author"`
	Category  string  `json:"category"`
	ImageURL  *string `json:"imageUrl"`
	CreatedAt int64   `json:"createdAt"`
}

// BlogPostInput carries the permitted fields of a new post.
type BlogPostInput struct {
	Title    *string `json:"title"`
	Summary  *string `json:"summary"`
	Content  *string `json:"content"`
	Author   *string `json:"author"`
	Category *string `json:"category"`
	ImageURL *string `json:"imageUrl"`
}

// NewBlogPost builds a post stamped at createdAt.
func NewBlogPost(in BlogPostInput, caller string, createdAt int64) *BlogPost {
	category := DefaultBlogCategory
	if in.Category != nil {
		category = *in.Category
	}
	return &BlogPost{
		PostID:    NewID(),
		Title:     in.Title,
		Summary:   in.Summary,
		Content:   in.Content,
		Author:    Attribution(in.Author, caller, DefaultAdminAuthor),
		Category:  category,
		ImageURL:  in.ImageURL,
		CreatedAt: createdAt,
	}
}
