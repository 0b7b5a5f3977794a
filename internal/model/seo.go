package model

// PageMeta is the head content the front end renders for a page.
type PageMeta struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	CanonicalURL string         `json:"canonical_url"`
	OpenGraph    OpenGraph      `json:"open_graph"`
	JSONLD       map[string]any `json:"json_ld,omitempty"`
}

type OpenGraph struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"site_name"`
}

type ProductMetaRequest struct {
	Slug string `param:"slug" validate:"required,max=160"`
}

func (r *ProductMetaRequest) Validate() error {
	return validate.Struct(r)
}

type CategoryMetaRequest struct {
	Category string `param:"category" validate:"required,max=64"`
}

func (r *CategoryMetaRequest) Validate() error {
	return validate.Struct(r)
}

type SitemapRequest struct{}

func (r *SitemapRequest) Validate() error {
	return nil
}

type RobotsRequest struct{}

func (r *RobotsRequest) Validate() error {
	return nil
}
