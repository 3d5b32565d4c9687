package service

import (
	"fmt"
	"slices"
	"strings"

	"quorum-booking/core/config"
	"quorum-booking/core/errors"
	"quorum-booking/core/logger"
	"quorum-booking/modules/catalog/entity"

	"github.com/gosimple/slug"
)

var defaultRooms = []config.RoomConfig{
	{Name: "Discussion Room A", Capacity: 4},
	{Name: "Discussion Room B", Capacity: 4},
	{Name: "Discussion Room C", Capacity: 4},
}

var defaultSlots = []string{
	"08:00-10:00",
	"10:00-12:00",
	"12:00-14:00",
	"14:00-16:00",
	"16:00-18:00",
	"18:00-20:00",
}

type CatalogServiceInterface interface {
	ListResources() []entity.Resource
	GetResource(id string) (*entity.Resource, *errors.AppError)
	Slots() []string
	ValidSlot(slot string) bool
}

// CatalogService is immutable after construction and safe for concurrent use.
type CatalogService struct {
	resources []entity.Resource
	byID      map[string]int
	slots     []string
}

// NewCatalogService builds the catalog from config. Empty sections fall back
// to the three discussion rooms and the six two-hour slots.
func NewCatalogService(cfg config.CatalogConfig) (*CatalogService, error) {
	rooms := cfg.Rooms
	if len(rooms) == 0 {
		rooms = defaultRooms
	}
	slots := cfg.Slots
	if len(slots) == 0 {
		slots = defaultSlots
	}

	s := &CatalogService{
		byID:  make(map[string]int, len(rooms)),
		slots: make([]string, 0, len(slots)),
	}
	for _, r := range rooms {
		name := strings.TrimSpace(r.Name)
		id := slug.Make(name)
		if id == "" {
			return nil, fmt.Errorf("room %q has no usable id", r.Name)
		}
		if _, dup := s.byID[id]; dup {
			return nil, fmt.Errorf("duplicate room id %q", id)
		}
		s.byID[id] = len(s.resources)
		s.resources = append(s.resources, entity.Resource{ID: id, Name: name, Capacity: r.Capacity})
	}
	for _, slot := range slots {
		slot = strings.TrimSpace(slot)
		if slot == "" || slices.Contains(s.slots, slot) {
			return nil, fmt.Errorf("invalid or duplicate slot %q", slot)
		}
		s.slots = append(s.slots, slot)
	}

	logger.Info("CatalogService:Init", "resources", len(s.resources), "slots", len(s.slots))
	return s, nil
}

func (s *CatalogService) ListResources() []entity.Resource {
	return slices.Clone(s.resources)
}

func (s *CatalogService) GetResource(id string) (*entity.Resource, *errors.AppError) {
	i, ok := s.byID[id]
	if !ok {
		return nil, errors.NewAppError(errors.ErrNotFound, fmt.Sprintf("resource %s not found", id), nil)
	}
	r := s.resources[i]
	return &r, nil
}

func (s *CatalogService) Slots() []string {
	return slices.Clone(s.slots)
}

func (s *CatalogService) ValidSlot(slot string) bool {
	return slices.Contains(s.slots, slot)
}
