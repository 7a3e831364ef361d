package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/roombooking/internal/application"
	"github.com/example/roombooking/internal/config"
	httptransport "github.com/example/roombooking/internal/http"
	"github.com/example/roombooking/internal/notify"
	"github.com/example/roombooking/internal/persistence"
	"github.com/example/roombooking/internal/persistence/sqlite"
	"github.com/example/roombooking/internal/schedule"
	"github.com/example/roombooking/internal/session"
)

const dateLayout = "2006-01-02"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	signer, err := session.NewSigner(cfg.SessionSecret, application.SessionTTL, nil)
	if err != nil {
		logger.Error("failed to initialise session signer", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() (string, error) { return randomToken(32) }
	now := time.Now

	bookingRepo := newBookingRepositoryAdapter(sqlite.NewBookingRepository(pool))
	roomStore := sqlite.NewRoomRepository(pool)
	roomRepo := newRoomRepositoryAdapter(roomStore)
	adminDirectory := newAdminDirectoryAdapter(sqlite.NewAdminRepository(pool))

	var notifier application.Notifier
	if cfg.MailEnabled {
		notifier = notify.NewEmailNotifier(notify.EmailConfig{
			Host:     cfg.MailHost,
			Port:     cfg.MailPort,
			Username: cfg.MailUsername,
			Password: cfg.MailPassword,
			From:     cfg.MailFrom,
			BaseURL:  cfg.BaseURL,
		}, logger)
	} else {
		notifier = notify.NewLogNotifier(cfg.BaseURL, logger)
	}

	roomService := application.NewRoomService(roomRepo, idGenerator, now, logger)
	bookingService := application.NewBookingService(bookingRepo, roomService, notifier, idGenerator, tokenGenerator, now, logger)
	authService := application.NewAuthService(adminDirectory, signer, idGenerator, now, logger)

	if err := seedRooms(ctx, roomService, logger); err != nil {
		logger.Error("failed to seed rooms", "error", err)
		os.Exit(1)
	}
	if err := backfillRoomCapacities(ctx, roomStore, logger); err != nil {
		logger.Error("failed to backfill room capacities", "error", err)
		os.Exit(1)
	}
	if cfg.AdminUsername != "" {
		created, err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			logger.Error("failed to ensure admin account", "error", err)
			os.Exit(1)
		}
		if created {
			logger.Info("admin account created from environment", "username", cfg.AdminUsername)
		}
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		API:        httptransport.NewAPIHandler(bookingService, roomService, logger),
		Pages:      httptransport.NewPageHandler(roomService, bookingService, logger),
		Admin:      httptransport.NewAdminHandler(authService, bookingService, roomService, logger),
		Guard:      httptransport.RequireAdmin(signer, logger),
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// stockRoomCapacities holds the capacities of the rooms this service ships
// with, used when seeding and when filling in catalogs that predate the
// capacity column.
var stockRoomCapacities = map[string]int{
	"Sala Amarilla": 12,
	"Sala Morada":   8,
}

// seedRooms registers the default rooms on an empty catalog so a fresh
// deployment is immediately usable.
func seedRooms(ctx context.Context, rooms *application.RoomService, logger *slog.Logger) error {
	count, err := rooms.CountRooms(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	capacity := func(value int) *int { return &value }
	defaults := []application.RoomInput{
		{Name: "Sala Amarilla", Color: "#FFD700", Description: "Sala grande junto a recepción", Capacity: capacity(stockRoomCapacities["Sala Amarilla"])},
		{Name: "Sala Morada", Color: "#800080", Description: "Sala pequeña de la segunda planta", Capacity: capacity(stockRoomCapacities["Sala Morada"])},
	}
	for _, input := range defaults {
		room, err := rooms.CreateRoom(ctx, input)
		if err != nil {
			return err
		}
		logger.Info("seeded room", "room_id", room.ID, "name", room.Name)
	}
	return nil
}

// backfillRoomCapacities fills in the capacity of the stock rooms on catalogs
// created before the capacity column existed. Rooms with a capacity already
// set, and rooms this service does not know, are left alone.
func backfillRoomCapacities(ctx context.Context, rooms persistence.RoomRepository, logger *slog.Logger) error {
	stored, err := rooms.ListRooms(ctx)
	if err != nil {
		return err
	}
	for _, room := range stored {
		capacity, known := stockRoomCapacities[room.Name]
		if !known || room.Capacity != nil {
			continue
		}
		room.Capacity = &capacity
		if err := rooms.UpdateRoom(ctx, room); err != nil {
			return err
		}
		logger.Info("backfilled room capacity", "room_id", room.ID, "name", room.Name, "capacity", capacity)
	}
	return nil
}

// randomToken returns a URL-safe cancellation token. A failed entropy read
// is an error, never a fallback token.
func randomToken(bytes int) (string, error) {
	if bytes <= 0 {
		bytes = 32
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

type bookingRepositoryAdapter struct {
	repo *sqlite.BookingRepository
}

func newBookingRepositoryAdapter(repo *sqlite.BookingRepository) *bookingRepositoryAdapter {
	return &bookingRepositoryAdapter{repo: repo}
}

func (a *bookingRepositoryAdapter) CreateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	if err := a.repo.CreateBooking(ctx, toPersistenceBooking(booking)); err != nil {
		return application.Booking{}, err
	}
	return a.GetBooking(ctx, booking.ID)
}

func (a *bookingRepositoryAdapter) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	stored, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) GetBookingByCancelToken(ctx context.Context, token string) (application.Booking, error) {
	stored, err := a.repo.GetBookingByCancelToken(ctx, token)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) UpdateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	if err := a.repo.UpdateBooking(ctx, toPersistenceBooking(booking)); err != nil {
		return application.Booking{}, err
	}
	return a.GetBooking(ctx, booking.ID)
}

func (a *bookingRepositoryAdapter) DeleteBooking(ctx context.Context, id string) error {
	return a.repo.DeleteBooking(ctx, id)
}

func (a *bookingRepositoryAdapter) ListBookings(ctx context.Context, filter application.BookingFilter) ([]application.Booking, error) {
	persistenceFilter := persistence.BookingFilter{RoomID: filter.RoomID}
	if filter.Date != nil {
		persistenceFilter.Date = filter.Date.Format(dateLayout)
	}

	stored, err := a.repo.ListBookings(ctx, persistenceFilter)
	if err != nil {
		return nil, err
	}
	bookings := make([]application.Booking, 0, len(stored))
	for _, model := range stored {
		bookings = append(bookings, toApplicationBooking(model))
	}
	return bookings, nil
}

type roomRepositoryAdapter struct {
	repo *sqlite.RoomRepository
}

func newRoomRepositoryAdapter(repo *sqlite.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.CreateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	return a.GetRoom(ctx, room.ID)
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	stored, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, 0, len(stored))
	for _, model := range stored {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

func (a *roomRepositoryAdapter) CountRooms(ctx context.Context) (int, error) {
	return a.repo.CountRooms(ctx)
}

type adminDirectoryAdapter struct {
	repo *sqlite.AdminRepository
}

func newAdminDirectoryAdapter(repo *sqlite.AdminRepository) *adminDirectoryAdapter {
	return &adminDirectoryAdapter{repo: repo}
}

func (a *adminDirectoryAdapter) GetAdminByUsername(ctx context.Context, username string) (application.AdminCredentials, error) {
	stored, err := a.repo.GetAdminByUsername(ctx, username)
	if err != nil {
		return application.AdminCredentials{}, err
	}
	return application.AdminCredentials{
		Admin: application.AdminUser{
			ID:        stored.ID,
			Username:  stored.Username,
			Active:    stored.Active,
			CreatedAt: stored.CreatedAt,
		},
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *adminDirectoryAdapter) CreateAdmin(ctx context.Context, admin application.AdminUser, passwordHash string) (application.AdminUser, error) {
	err := a.repo.CreateAdmin(ctx, persistence.AdminUser{
		ID:           admin.ID,
		Username:     admin.Username,
		PasswordHash: passwordHash,
		Active:       admin.Active,
		CreatedAt:    admin.CreatedAt,
	})
	if err != nil {
		return application.AdminUser{}, err
	}
	return admin, nil
}

func toPersistenceBooking(booking application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:                   booking.ID,
		UserName:             booking.UserName,
		UserEmail:            booking.UserEmail,
		Area:                 booking.Area,
		Date:                 booking.Date.Format(dateLayout),
		StartMinutes:         int(booking.Start),
		EndMinutes:           int(booking.End),
		RoomID:               booking.RoomID,
		Attendees:            booking.Attendees,
		CancelToken:          booking.CancelToken,
		CancelTokenExpiresAt: booking.CancelTokenExpiresAt,
		CreatedAt:            booking.CreatedAt,
	}
}

func toApplicationBooking(model persistence.Booking) application.Booking {
	date, _ := time.Parse(dateLayout, model.Date)
	return application.Booking{
		ID:                   model.ID,
		UserName:             model.UserName,
		UserEmail:            model.UserEmail,
		Area:                 model.Area,
		Date:                 date,
		Start:                schedule.TimeOfDay(model.StartMinutes),
		End:                  schedule.TimeOfDay(model.EndMinutes),
		RoomID:               model.RoomID,
		Attendees:            model.Attendees,
		CancelToken:          model.CancelToken,
		CancelTokenExpiresAt: model.CancelTokenExpiresAt,
		CreatedAt:            model.CreatedAt,
	}
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		ID:          room.ID,
		Name:        room.Name,
		Color:       room.Color,
		Description: room.Description,
		Capacity:    room.Capacity,
		CreatedAt:   room.CreatedAt,
		UpdatedAt:   room.UpdatedAt,
	}
}

func toApplicationRoom(model persistence.Room) application.Room {
	return application.Room{
		ID:          model.ID,
		Name:        model.Name,
		Color:       model.Color,
		Description: model.Description,
		Capacity:    model.Capacity,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
