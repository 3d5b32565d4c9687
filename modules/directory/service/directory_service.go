package service

import (
	"context"
	"strings"

	"quorum-booking/core/cache"
	"quorum-booking/core/config"
	"quorum-booking/core/logger"
)

var defaultUsers = map[string]string{
	"user@example.com":    "Soham Joshi",
	"john@example.com":    "John Smith",
	"sarah@example.com":   "Sarah Johnson",
	"mike@example.com":    "Mike Wilson",
	"tom@example.com":     "Tom Smith",
	"lisa@example.com":    "Lisa Brown",
	"david@example.com":   "David Davis",
	"kate@example.com":    "Kate Johnson",
	"alex@example.com":    "Alex Miller",
	"sophie@example.com":  "Sophie Clark",
	"alice@example.com":   "Alice White",
	"bob@example.com":     "Bob Green",
	"charlie@example.com": "Charlie Black",
	"diana@example.com":   "Diana Gray",
	"eve@example.com":     "Eve Blue",
	"frank@example.com":   "Frank Red",
	"grace@example.com":   "Grace Purple",
	"henry@example.com":   "Henry Orange",
	"anna@example.com":    "Anna Pink",
	"peter@example.com":   "Peter Silver",
	"mary@example.com":    "Mary Gold",
	"james@example.com":   "James Bronze",
	"emily@example.com":   "Emily Copper",
	"robert@example.com":  "Robert Steel",
}

// DirectoryServiceInterface resolves participant ids to the names used in
// notice text. Resolution never fails.
type DirectoryServiceInterface interface {
	ResolveDisplayName(ctx context.Context, id string) string
}

type DirectoryService struct {
	names map[string]string
	cache cache.Cache
}

// NewDirectoryService builds the static directory from config, falling back
// to the built-in user list. c may be nil.
func NewDirectoryService(users []config.UserConfig, c cache.Cache) *DirectoryService {
	names := make(map[string]string, len(users))
	for _, u := range users {
		id := strings.TrimSpace(u.ID)
		if id != "" && strings.TrimSpace(u.Name) != "" {
			names[id] = strings.TrimSpace(u.Name)
		}
	}
	if len(names) == 0 {
		for id, name := range defaultUsers {
			names[id] = name
		}
	}
	return &DirectoryService{names: names, cache: c}
}

// ResolveDisplayName looks in the shared cache, then the static directory,
// and finally falls back to the local part of an email address.
func (s *DirectoryService) ResolveDisplayName(ctx context.Context, id string) string {
	if s.cache != nil {
		name, ok, err := s.cache.GetDisplayName(ctx, id)
		if err != nil {
			logger.Warn("DirectoryService:ResolveDisplayName:CacheError", "id", id, "error", err)
		} else if ok && name != "" {
			return name
		}
	}
	if name, ok := s.names[id]; ok {
		return name
	}
	return LocalPart(id)
}

// Seed publishes the static directory to the shared cache.
func (s *DirectoryService) Seed(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.SetDisplayNames(ctx, s.names); err != nil {
		return err
	}
	logger.Info("DirectoryService:Seed", "users", len(s.names))
	return nil
}

// LocalPart returns the text before the first "@", or id itself.
func LocalPart(id string) string {
	local, _, _ := strings.Cut(id, "@")
	return local
}
