// Package app wires configuration into a ready GlobeService.
package app

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/jengzang/tracemap-backend-go/internal/config"
	"github.com/jengzang/tracemap-backend-go/internal/render"
	"github.com/jengzang/tracemap-backend-go/internal/repository"
	"github.com/jengzang/tracemap-backend-go/internal/resolver"
	"github.com/jengzang/tracemap-backend-go/internal/route"
	"github.com/jengzang/tracemap-backend-go/internal/segment"
	"github.com/jengzang/tracemap-backend-go/internal/service"
	"github.com/jengzang/tracemap-backend-go/internal/source"
)

const (
	httpSourceTimeout = 30 * time.Second
	dnsTimeout        = 3 * time.Second
	dnsCacheTTL       = time.Hour
)

// NewSource picks the HTTP source when a URL is configured, else the data directory.
// Either is cached for cfg.CacheTTL when it is positive.
func NewSource(cfg *config.Config) source.Source {
	var src source.Source
	if cfg.SourceURL != "" {
		src = source.NewHTTPSource(cfg.SourceURL, httpSourceTimeout)
		log.Printf("[App] Reading routes from %s", cfg.SourceURL)
	} else {
		src = source.NewFileSource(cfg.DataDir)
		log.Printf("[App] Reading routes from %s", cfg.DataDir)
	}

	if cfg.CacheTTL > 0 {
		src = source.NewCachedSource(src, cfg.CacheTTL)
	}
	return src
}

// NewGlobeService builds the coordinator, repositories and collaborators from cfg
func NewGlobeService(cfg *config.Config, db *sql.DB, recorder *render.Recorder) (*service.GlobeService, error) {
	policy, err := segment.ParsePolicy(cfg.SegmentDedup)
	if err != nil {
		return nil, fmt.Errorf("failed to configure segment dedup: %w", err)
	}

	var renderer render.Renderer = render.Discard{}
	if recorder != nil {
		renderer = recorder
	}
	coord := route.NewCoordinator(renderer, route.Options{
		Policy:           policy,
		FetchConcurrency: cfg.FetchConcurrency,
	})

	var res resolver.Resolver = resolver.Nop{}
	if cfg.ResolveHostnames {
		res = resolver.NewDNSResolver(cfg.DNSServer, dnsTimeout, dnsCacheTTL)
	}

	return service.NewGlobeService(coord, recorder,
		repository.NewRouteRunRepository(db),
		repository.NewPointRepository(db),
		repository.NewSegmentRepository(db),
		service.GlobeOptions{
			Source:           NewSource(cfg),
			Resolver:         res,
			ResolveHostnames: cfg.ResolveHostnames,
			TargetsFile:      cfg.TargetsFile,
		}), nil
}
