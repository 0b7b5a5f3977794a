package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/lib/utils"
	"github.com/deppfellow/storefront/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	metaDescriptionLimit = 160
	sitemapNS            = "http://www.sitemaps.org/schemas/sitemap/0.9"
	schemaOrg            = "https://schema.org"
)

// staticPages are the storefront routes listed in the sitemap besides
// products and categories.
var staticPages = []struct {
	path       string
	changeFreq string
	priority   string
}{
	{"/", "daily", "1.0"},
	{"/products", "daily", "0.9"},
	{"/delivery", "monthly", "0.4"},
	{"/about", "yearly", "0.3"},
	{"/contact", "yearly", "0.3"},
}

type SEOService struct {
	products  ProductStore
	reviews   ReviewStore
	siteName  string
	publicURL string
	currency  string
}

func NewSEOService(products ProductStore, reviews ReviewStore, siteName, publicURL, currency string) *SEOService {
	return &SEOService{
		products:  products,
		reviews:   reviews,
		siteName:  siteName,
		publicURL: strings.TrimRight(publicURL, "/"),
		currency:  currency,
	}
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Sitemap renders sitemap.xml: static pages, category pages and every
// available product.
func (s *SEOService) Sitemap(ctx context.Context) ([]byte, error) {
	products, err := s.products.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.products.Categories(ctx)
	if err != nil {
		return nil, err
	}

	set := sitemapURLSet{Xmlns: sitemapNS}
	for _, p := range staticPages {
		set.URLs = append(set.URLs, sitemapURL{Loc: s.url(p.path), ChangeFreq: p.changeFreq, Priority: p.priority})
	}
	for _, c := range categories {
		set.URLs = append(set.URLs, sitemapURL{Loc: s.categoryURL(c.Category), ChangeFreq: "weekly", Priority: "0.7"})
	}
	for _, p := range products {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.productURL(p.Slug),
			LastMod:    p.UpdatedAt.UTC().Format(model.DeliveryDateLayout),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// Robots renders robots.txt.
func (s *SEOService) Robots() string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("Disallow: /checkout\n")
	b.WriteString("Disallow: /account\n")
	b.WriteString("\nSitemap: " + s.url("/sitemap.xml") + "\n")
	return b.String()
}

func (s *SEOService) ProductMeta(ctx context.Context, slug string) (*model.PageMeta, error) {
	p, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundAs(err, "Product not found")
	}
	if !p.Available {
		return nil, errs.NewNotFoundError("Product not found", true, nil)
	}
	summary, err := s.reviews.Summary(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	title := p.Name + " | " + s.siteName
	description := utils.Truncate(p.Description, metaDescriptionLimit)
	if description == "" {
		description = utils.Truncate(fmt.Sprintf("%s, delivered fresh by %s.", p.Name, s.siteName), metaDescriptionLimit)
	}
	canonical := s.productURL(p.Slug)

	offer := map[string]any{
		"@type":         "Offer",
		"price":         p.Price.StringFixed(2),
		"priceCurrency": s.currency,
		"availability":  schemaOrg + "/InStock",
		"url":           canonical,
	}
	ld := map[string]any{
		"@context":    schemaOrg,
		"@type":       "Product",
		"name":        p.Name,
		"description": description,
		"sku":         p.Slug,
		"category":    s.categoryTitle(p.Category),
		"url":         canonical,
		"offers":      offer,
	}
	if len(p.ImageURLs) > 0 {
		ld["image"] = p.ImageURLs
	}
	if summary.TotalCount > 0 {
		ld["aggregateRating"] = map[string]any{
			"@type":       "AggregateRating",
			"ratingValue": summary.AverageRating,
			"reviewCount": summary.TotalCount,
			"bestRating":  5,
			"worstRating": 1,
		}
	}

	return &model.PageMeta{
		Title:        title,
		Description:  description,
		CanonicalURL: canonical,
		OpenGraph: model.OpenGraph{
			Type:        "product",
			Title:       title,
			Description: description,
			URL:         canonical,
			Image:       p.PrimaryImage(),
			SiteName:    s.siteName,
		},
		JSONLD: ld,
	}, nil
}

func (s *SEOService) CategoryMeta(ctx context.Context, category string) (*model.PageMeta, error) {
	categories, err := s.products.Categories(ctx)
	if err != nil {
		return nil, err
	}

	var found *model.CategoryCount
	for i := range categories {
		if strings.EqualFold(categories[i].Category, category) {
			found = &categories[i]
			break
		}
	}
	if found == nil {
		return nil, errs.NewNotFoundError("Category not found", true, nil)
	}

	name := s.categoryTitle(found.Category)
	title := name + " | " + s.siteName
	description := utils.Truncate(fmt.Sprintf(
		"Order %s online from %s. %d designs available for same-day and scheduled delivery.",
		strings.ToLower(name), s.siteName, found.Count,
	), metaDescriptionLimit)
	canonical := s.categoryURL(found.Category)

	return &model.PageMeta{
		Title:        title,
		Description:  description,
		CanonicalURL: canonical,
		OpenGraph: model.OpenGraph{
			Type:        "website",
			Title:       title,
			Description: description,
			URL:         canonical,
			SiteName:    s.siteName,
		},
		JSONLD: map[string]any{
			"@context":    schemaOrg,
			"@type":       "CollectionPage",
			"name":        name,
			"description": description,
			"url":         canonical,
		},
	}, nil
}

// categoryTitle turns "birthday-flowers" into "Birthday Flowers". A Caser
// is stateful, so each call gets its own.
func (s *SEOService) categoryTitle(category string) string {
	return cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(category))
}

func (s *SEOService) url(path string) string {
	return s.publicURL + path
}

func (s *SEOService) productURL(slug string) string {
	return s.url("/products/" + url.PathEscape(slug))
}

func (s *SEOService) categoryURL(category string) string {
	return s.url("/categories/" + url.PathEscape(category))
}
