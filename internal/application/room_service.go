package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/roombooking/internal/persistence"
)

// RoomRepository captures the persistence interactions needed by RoomService.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	CountRooms(ctx context.Context) (int, error)
}

// RoomService exposes room lookup and registration. Registration is only
// reachable from startup seeding; there is no room management surface.
type RoomService struct {
	rooms       RoomRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService constructs a RoomService with the provided dependencies.
func NewRoomService(rooms RoomRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{
		rooms:       rooms,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateRoom validates and registers a room.
func (s *RoomService) CreateRoom(ctx context.Context, input RoomInput) (room Room, err error) {
	if s == nil || s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "RoomService", "CreateRoom", "name", input.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity != nil && *input.Capacity < 1 {
		vErr.add("capacity", "capacity must be at least 1")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	room, err = s.rooms.CreateRoom(ctx, Room{
		ID:          s.idGenerator(),
		Name:        strings.TrimSpace(input.Name),
		Color:       strings.TrimSpace(input.Color),
		Description: strings.TrimSpace(input.Description),
		Capacity:    input.Capacity,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return
}

// GetRoom retrieves a room by identifier.
func (s *RoomService) GetRoom(ctx context.Context, id string) (Room, error) {
	if s == nil || s.rooms == nil {
		return Room{}, fmt.Errorf("room repository not configured")
	}
	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Room{}, ErrRoomNotFound
		}
		return Room{}, err
	}
	return room, nil
}

// ListRooms returns every registered room.
func (s *RoomService) ListRooms(ctx context.Context) ([]Room, error) {
	if s == nil || s.rooms == nil {
		return nil, fmt.Errorf("room repository not configured")
	}
	return s.rooms.ListRooms(ctx)
}

// CountRooms reports how many rooms exist, used to decide whether to seed.
func (s *RoomService) CountRooms(ctx context.Context) (int, error) {
	if s == nil || s.rooms == nil {
		return 0, fmt.Errorf("room repository not configured")
	}
	return s.rooms.CountRooms(ctx)
}
