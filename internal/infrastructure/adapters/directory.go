package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/collection"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// DirectorySource is the source label of directory candidates
const DirectorySource = "directory"

// Listing containers seen on chamber of commerce and local directory pages
var listingClasses = []string{
	"gz-card", "gz-list-card", "gz-directory-card", "directory-listing",
	"listing", "member", "business-listing", "company-card",
}

var (
	nameSelectors     = []string{"[itemprop=name]", ".gz-card-title", ".business-name", ".company-name", ".name", "h2", "h3", "h4"}
	addressSelectors  = []string{"[itemprop=address]", "[itemprop=streetAddress]", ".gz-card-address", ".address", ".location", "address"}
	phoneSelectors    = []string{"[itemprop=telephone]", ".gz-card-phone", ".phone", ".tel"}
	websiteSelectors  = []string{"[itemprop=url]", ".website", ".gz-card-website"}
	categorySelectors = []string{".gz-card-categories", ".categories", ".category", "[itemprop=industry]"}
	descSelectors     = []string{"[itemprop=description]", ".gz-card-excerpt", ".description", ".summary", "p"}
)

// DirectoryConfig configures the directory adapter
type DirectoryConfig struct {
	URLs []string
}

// DirectoryAdapter parses listing blocks from business directory pages
type DirectoryAdapter struct {
	client *Client
	cfg    DirectoryConfig
	logger *zap.Logger
}

var _ collection.Adapter = (*DirectoryAdapter)(nil)

// NewDirectoryAdapter creates a directory adapter
func NewDirectoryAdapter(client *Client, cfg DirectoryConfig, logger *zap.Logger) *DirectoryAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryAdapter{client: client, cfg: cfg, logger: logger.With(zap.String("adapter", DirectorySource))}
}

// Name implements collection.Adapter
func (a *DirectoryAdapter) Name() string { return DirectorySource }

// Fetch implements collection.Adapter
func (a *DirectoryAdapter) Fetch(ctx context.Context, yield collection.YieldFunc) error {
	var failures []error
	for _, page := range a.cfg.URLs {
		if err := ctx.Err(); err != nil {
			return err
		}
		body, err := a.client.Get(ctx, page, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Warn("Failed to fetch directory page", zap.String("url", page), zap.Error(err))
			failures = append(failures, err)
			continue
		}
		if err := yieldListings(ctx, body, page, DirectorySource, a.logger, yield); err != nil {
			return err
		}
	}
	if len(failures) > 0 && len(failures) == len(a.cfg.URLs) {
		return fmt.Errorf("all directory pages failed: %w", errors.Join(failures...))
	}
	return nil
}

// yieldListings parses a listing page and yields one candidate per listing
func yieldListings(ctx context.Context, body []byte, pageURL, source string, logger *zap.Logger, yield collection.YieldFunc) error {
	doc, err := parseHTML(body)
	if err != nil {
		logger.Warn("Failed to parse listing page", zap.String("url", pageURL), zap.Error(err))
		return nil
	}
	base, _ := url.Parse(pageURL)
	listings := parseListings(doc, base)
	if len(listings) == 0 {
		logger.Info("No listings found", zap.String("url", pageURL))
	}
	for _, c := range listings {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.Name == "" {
			logger.Debug("Skipping listing without a name", zap.String("url", pageURL))
			continue
		}
		c.Source = source
		if c.SourceURL == "" {
			c.SourceURL = pageURL
		}
		if err := yield(c); err != nil {
			return err
		}
	}
	return nil
}

// parseListings extracts candidates from every listing block in doc
func parseListings(doc *html.Node, base *url.URL) []business.Candidate {
	blocks := findAll(doc, isListing)
	out := make([]business.Candidate, 0, len(blocks))
	for _, block := range blocks {
		out = append(out, parseListing(block, base))
	}
	return out
}

func isListing(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if strings.Contains(attr(n, "itemtype"), "schema.org/LocalBusiness") {
		return true
	}
	for _, c := range listingClasses {
		if hasClass(n, c) {
			return true
		}
	}
	return false
}

func parseListing(block *html.Node, base *url.URL) business.Candidate {
	c := business.Candidate{
		Name:        textContent(findFirst(block, nameSelectors...)),
		Address:     textContent(findFirst(block, addressSelectors...)),
		Industry:    textContent(findFirst(block, categorySelectors...)),
		Description: truncate(textContent(findFirst(block, descSelectors...))),
	}

	if n := findFirst(block, phoneSelectors...); n != nil {
		c.Phone = textContent(n)
	} else if tel := find(block, func(n *html.Node) bool {
		return matches(n, "a") && strings.HasPrefix(strings.ToLower(attr(n, "href")), "tel:")
	}); tel != nil {
		c.Phone = strings.TrimPrefix(strings.ToLower(attr(tel, "href")), "tel:")
	}

	c.Website = listingWebsite(block, base)
	if detail := listingDetailLink(block, base); detail != "" {
		c.SourceURL = detail
	}
	if c.Address == "" {
		c.IslandText, _ = business.LocatePlace(textContent(block))
	}
	return c
}

// listingWebsite prefers a marked website link, then the first link
// leaving the directory's host
func listingWebsite(block *html.Node, base *url.URL) string {
	if n := findFirst(block, websiteSelectors...); n != nil {
		href := attr(n, "href")
		if href == "" {
			if a := find(n, func(c *html.Node) bool { return matches(c, "a") }); a != nil {
				href = attr(a, "href")
			}
		}
		if href == "" {
			href = attr(n, "content")
		}
		if href == "" {
			if text := textContent(n); strings.Contains(text, ".") && !strings.Contains(text, " ") {
				href = "https://" + strings.TrimPrefix(strings.TrimPrefix(text, "https://"), "http://")
			}
		}
		if abs := resolveURL(base, href); abs != "" {
			return abs
		}
	}
	for _, a := range findAll(block, func(n *html.Node) bool { return matches(n, "a") }) {
		abs := resolveURL(base, attr(a, "href"))
		if abs == "" || !strings.HasPrefix(abs, "http") {
			continue
		}
		u, err := url.Parse(abs)
		if err != nil {
			continue
		}
		if base == nil || !strings.EqualFold(u.Host, base.Host) {
			return abs
		}
	}
	return ""
}

// listingDetailLink returns the listing's own page on the directory host
func listingDetailLink(block *html.Node, base *url.URL) string {
	if base == nil {
		return ""
	}
	for _, a := range findAll(block, func(n *html.Node) bool { return matches(n, "a") }) {
		abs := resolveURL(base, attr(a, "href"))
		if abs == "" {
			continue
		}
		u, err := url.Parse(abs)
		if err == nil && strings.EqualFold(u.Host, base.Host) && u.Path != base.Path {
			return abs
		}
	}
	return ""
}
