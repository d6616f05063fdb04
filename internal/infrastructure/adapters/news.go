package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/collection"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// NewsSource is the source label of news candidates
const NewsSource = "news"

var articleLinkMarkers = []string{"/article/", "/news/", "/story/"}

var defaultArticleSelectors = []string{
	"article", ".article-content", ".story-content", "[itemprop=articleBody]", ".entry-content",
}

// Company mentions: a run of capitalized words ending in a corporate suffix,
// or followed by an announcement verb. Matches never span lines.
var (
	companySuffixPattern = regexp.MustCompile(`\b([A-Z][\w&'-]*(?: +(?:[A-Z&][\w&'-]*|of|and))* +(?:Inc\.?|LLC|Corp\.?|Corporation|Company|Co\.))`)
	companyVerbPattern   = regexp.MustCompile(`\b([A-Z][\w&'-]*(?: +(?:[A-Z&][\w&'-]*|of|and))*) +(?:announced|launched|opened|expanded)\b`)
	markdownLink         = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
	markdownNoise        = strings.NewReplacer("**", "", "__", "", "#", "", "> ", "", "`", "")
)

// Words that begin sentences and are never company names on their own
var mentionStopwords = map[string]bool{
	"The": true, "This": true, "That": true, "A": true, "An": true, "It": true,
	"He": true, "She": true, "They": true, "We": true, "In": true, "On": true,
}

// NewsConfig configures the news adapter
type NewsConfig struct {
	IndexURLs       []string
	MaxArticles     int
	ArticleSelector string
}

// NewsAdapter reads Hawaii business news sites and yields the companies
// mentioned in their articles
type NewsAdapter struct {
	client *Client
	cfg    NewsConfig
	logger *zap.Logger
}

var _ collection.Adapter = (*NewsAdapter)(nil)

// NewNewsAdapter creates a news adapter
func NewNewsAdapter(client *Client, cfg NewsConfig, logger *zap.Logger) *NewsAdapter {
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NewsAdapter{client: client, cfg: cfg, logger: logger.With(zap.String("adapter", NewsSource))}
}

// Name implements collection.Adapter
func (a *NewsAdapter) Name() string { return NewsSource }

// Fetch implements collection.Adapter. An unreachable index page is skipped;
// the adapter fails only when every index page fails.
func (a *NewsAdapter) Fetch(ctx context.Context, yield collection.YieldFunc) error {
	var failures []error
	for _, index := range a.cfg.IndexURLs {
		if err := ctx.Err(); err != nil {
			return err
		}
		links, err := a.articleLinks(ctx, index)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Warn("Failed to fetch news index", zap.String("url", index), zap.Error(err))
			failures = append(failures, err)
			continue
		}
		for _, link := range links {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := a.fetchArticle(ctx, link, yield); err != nil {
				return err
			}
		}
	}
	if len(failures) > 0 && len(failures) == len(a.cfg.IndexURLs) {
		return fmt.Errorf("all news index pages failed: %w", errors.Join(failures...))
	}
	return nil
}

func (a *NewsAdapter) articleLinks(ctx context.Context, index string) ([]string, error) {
	base, err := url.Parse(index)
	if err != nil {
		return nil, fmt.Errorf("invalid index url %q: %w", index, err)
	}
	body, err := a.client.Get(ctx, index, nil)
	if err != nil {
		return nil, err
	}
	doc, err := parseHTML(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index %s: %w", index, err)
	}
	return extractArticleLinks(doc, base, a.cfg.MaxArticles), nil
}

// fetchArticle yields the mentions of one article. Only errors returned by
// yield are propagated; a broken article is logged and skipped.
func (a *NewsAdapter) fetchArticle(ctx context.Context, link string, yield collection.YieldFunc) error {
	body, err := a.client.Get(ctx, link, nil)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.Warn("Failed to fetch article", zap.String("url", link), zap.Error(err))
		return nil
	}
	text, err := a.articleText(body)
	if err != nil {
		a.logger.Warn("Failed to read article", zap.String("url", link), zap.Error(err))
		return nil
	}

	location, _ := business.LocatePlace(text)
	mentions := companyMentions(text)
	if location == "" {
		if len(mentions) > 0 {
			a.logger.Debug("Skipping article without a Hawaii location",
				zap.String("url", link), zap.Int("mentions", len(mentions)))
		}
		return nil
	}

	signals := growthSignals(text)
	employees := employeeCount(text)
	description := truncate(strings.Join(strings.Fields(text), " "))
	for _, name := range mentions {
		c := business.Candidate{
			Name:                  name,
			IslandText:            location,
			Description:           description,
			Source:                NewsSource,
			SourceURL:             link,
			GrowthSignals:         signals,
			EmployeeCountEstimate: employees,
		}
		if err := yield(c); err != nil {
			return err
		}
	}
	return nil
}

// articleText converts the article body to plain text through markdown
func (a *NewsAdapter) articleText(body []byte) (string, error) {
	doc, err := parseHTML(body)
	if err != nil {
		return "", err
	}
	selectors := defaultArticleSelectors
	if a.cfg.ArticleSelector != "" {
		selectors = append([]string{a.cfg.ArticleSelector}, selectors...)
	}
	node := findFirst(doc, selectors...)
	if node == nil {
		node = findFirst(doc, "body")
	}
	if node == nil {
		node = doc
	}
	md, err := htmltomarkdown.ConvertString(renderHTML(node))
	if err != nil {
		return "", fmt.Errorf("failed to convert article: %w", err)
	}
	return markdownToText(md), nil
}

// markdownToText strips markdown syntax, keeping one line per block
func markdownToText(md string) string {
	md = markdownLink.ReplaceAllString(md, "$1")
	md = markdownNoise.Replace(md)
	var lines []string
	for _, line := range strings.Split(md, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// extractArticleLinks returns up to limit distinct absolute article URLs in
// page order
func extractArticleLinks(doc *html.Node, base *url.URL, limit int) []string {
	seen := make(map[string]bool)
	var links []string
	anchors := findAll(doc, func(n *html.Node) bool { return matches(n, "a") })
	for _, a := range anchors {
		href := attr(a, "href")
		if !isArticleLink(href) {
			continue
		}
		abs := resolveURL(base, href)
		if abs == "" || seen[abs] {
			continue
		}
		seen[abs] = true
		links = append(links, abs)
		if len(links) == limit {
			break
		}
	}
	return links
}

func isArticleLink(href string) bool {
	for _, m := range articleLinkMarkers {
		if strings.Contains(href, m) {
			return true
		}
	}
	return false
}

// companyMentions returns distinct company names in order of appearance
func companyMentions(text string) []string {
	type hit struct {
		pos  int
		name string
	}
	var hits []hit
	for _, re := range []*regexp.Regexp{companySuffixPattern, companyVerbPattern} {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			hits = append(hits, hit{pos: m[2], name: text[m[2]:m[3]]})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	seen := make(map[string]bool)
	var out []string
	for _, h := range hits {
		name := trimLeadingStopwords(h.name)
		if len(name) < 3 {
			continue
		}
		key := business.NameKey(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

func trimLeadingStopwords(name string) string {
	words := strings.Fields(name)
	for len(words) > 0 && mentionStopwords[words[0]] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}
