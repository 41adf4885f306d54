package model

type BlogPost struct {
	Content
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Body          string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	FeaturedImage string   `json:"featured_image,omitempty"`
	Tags          []string `json:"tags"`
}

func (p *BlogPost) Kind() Kind { return KindBlogPost }
func (p *BlogPost) Label() string { return p.Title }

func (p *BlogPost) SlugSource() string { return p.Title }
func (p *BlogPost) CurrentSlug() string { return p.Slug }
func (p *BlogPost) SetSlug(slug string) { p.Slug = slug }

var (
	_ Reviewable = (*BlogPost)(nil)
	_ Slugged    = (*BlogPost)(nil)
)
