package storage

import (
	"sonagg/internal/models"
)

// Storage defines the interface for different storage backends
type Storage interface {
	// Source registry
	ListSources() ([]models.FeedSource, error)
	GetSource(id string) (*models.FeedSource, error)
	SaveSource(source *models.FeedSource) error
	DeleteSource(id string) error
	SeedSources(sources []models.FeedSource) error

	// Story pool snapshot
	SavePool(pool *models.StoryPool) error
	LoadPool() (*models.StoryPool, error)
	GetPoolInfo() (*models.PoolInfo, error)

	// UpdateThumbnail patches a stored article that has no image yet.
	UpdateThumbnail(articleID, thumbnail string) error

	Close() error
}
