package adapters

import (
	"strings"

	"github.com/hawaiibiz/intel/internal/domain/collection"
	"github.com/hawaiibiz/intel/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Set is the adapters enabled by configuration plus anything they own
type Set struct {
	Adapters []collection.Adapter
	chrome   *ChromeRenderer
}

// Close releases adapter resources such as the headless browser
func (s *Set) Close() {
	if s.chrome != nil {
		s.chrome.Close()
	}
}

// Build constructs the enabled adapters. Each network adapter gets its own
// client so politeness delays apply per origin.
func Build(cfg config.AdaptersConfig, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	clientCfg := ClientConfig{
		UserAgent:       cfg.HTTP.UserAgent,
		RequestTimeout:  cfg.HTTP.RequestTimeout,
		PolitenessDelay: cfg.HTTP.PolitenessDelay,
		MaxRetries:      cfg.HTTP.MaxRetries,
		MaxBodyBytes:    cfg.HTTP.MaxBodyBytes,
	}

	set := &Set{}
	if cfg.News.Enabled {
		set.Adapters = append(set.Adapters, NewNewsAdapter(NewClient(clientCfg, logger), NewsConfig{
			IndexURLs:       cfg.News.IndexURLs,
			MaxArticles:     cfg.News.MaxArticles,
			ArticleSelector: cfg.News.ArticleSelector,
		}, logger))
	}
	if cfg.Directory.Enabled {
		set.Adapters = append(set.Adapters, NewDirectoryAdapter(NewClient(clientCfg, logger), DirectoryConfig{
			URLs: cfg.Directory.URLs,
		}, logger))
	}
	if cfg.Places.Enabled {
		set.Adapters = append(set.Adapters, NewPlacesAdapter(NewClient(clientCfg, logger), PlacesConfig{
			APIKey:     cfg.Places.APIKey,
			BaseURL:    cfg.Places.BaseURL,
			DetailsURL: cfg.Places.DetailsURL,
			Areas:      cfg.Places.Areas,
			Queries:    cfg.Places.Queries,
			MaxPages:   cfg.Places.MaxPages,
		}, logger))
	}
	if cfg.Social.Enabled {
		set.chrome = NewChromeRenderer(ChromeConfig{
			RemoteURL: cfg.Social.RemoteURL,
			WaitReady: cfg.Social.WaitReady,
			UserAgent: cfg.HTTP.UserAgent,
			NoSandbox: cfg.Social.NoSandbox,
		}, logger)
		set.Adapters = append(set.Adapters, NewSocialAdapter(set.chrome, SocialConfig{URLs: cfg.Social.URLs}, logger))
	}
	if cfg.CSV.Enabled {
		set.Adapters = append(set.Adapters, NewCSVAdapter(CSVConfig{
			Paths:     cfg.CSV.Paths,
			Delimiter: cfg.CSV.Delimiter,
		}, logger))
	}

	names := make([]string, len(set.Adapters))
	for i, a := range set.Adapters {
		names[i] = a.Name()
	}
	logger.Info("Source adapters configured", zap.String("adapters", strings.Join(names, ",")))
	return set
}
