// Package store is the persistence layer: raw SQL over the shared
// database handle, one store per aggregate. JSON-shaped columns
// (avatar, images, languages) are marshalled in and out here so the
// rest of the app only sees domain types.
package store

import (
	"errors"

	"biolink/internal/db"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store bundles every aggregate store over one database handle.
type Store struct {
	Users   *UserStore
	Pages   *PageStore
	Blocks  *BlockStore
	Socials *SocialLinkStore
	Stats   *StatsStore
}

func New(database *db.DB) *Store {
	return &Store{
		Users:   &UserStore{db: database},
		Pages:   &PageStore{db: database},
		Blocks:  &BlockStore{db: database},
		Socials: &SocialLinkStore{db: database},
		Stats:   &StatsStore{db: database},
	}
}
