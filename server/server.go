// Package server wires bedrock into a host process: configuration from the
// environment, logging, the optional journal and hibernator, and the room
// manager
package server

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kode4food/bedrock/journal"
	"github.com/kode4food/bedrock/player"
	"github.com/kode4food/bedrock/room"
	"github.com/kode4food/bedrock/terrain"
	"github.com/kode4food/bedrock/world"
)

// Server owns the shared resources of every room in the process
type Server struct {
	config     Config
	logger     *zap.Logger
	store      *journal.Store
	hibernator journal.Hibernator
	rooms      *room.Manager
}

// New assembles the terrain table, journal, and hibernator described by
// cfg
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := terrain.NewRegistry()
	if err := terrain.RegisterBase(reg); err != nil {
		return nil, err
	}

	s := &Server{config: cfg, logger: logger}

	if cfg.Journal.Enabled {
		store, err := journal.NewStore(ctx, cfg.Journal.store())
		if err != nil {
			return nil, err
		}
		s.store = store
		logger.Info("journal connected", zap.String("addr", cfg.Journal.Addr))
	}

	hib, err := openHibernator(ctx, cfg.Hibernate)
	if err != nil {
		_ = s.closeStore()
		return nil, err
	}
	s.hibernator = hib

	pc := player.DefaultConfig(world.Width, world.PlayerSurfaceRow)
	pc.JumpHeight = cfg.Player.JumpHeight
	pc.JumpDuration = cfg.Player.JumpDuration

	s.rooms = room.NewManager(room.Config{
		Terrain:    reg,
		Plan:       world.DefaultPlanProvider(reg),
		Player:     pc,
		Logger:     logger,
		Store:      s.store,
		Recorder:   cfg.Journal.recorder(),
		Hibernator: hib,
	}, cfg.RecentRooms)
	return s, nil
}

// OpenRoom starts a room under a fresh session id
func (s *Server) OpenRoom() (*room.Room, error) {
	return s.rooms.Open(uuid.NewString())
}

// Rooms exposes the room manager
func (s *Server) Rooms() *room.Manager {
	return s.rooms
}

// Hibernator returns the configured hibernator, or nil
func (s *Server) Hibernator() journal.Hibernator {
	return s.hibernator
}

// Close ends every room and releases the journal and hibernator
func (s *Server) Close(ctx context.Context) error {
	errs := []error{s.rooms.CloseAll(ctx), s.closeStore()}
	if c, ok := s.hibernator.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (s *Server) closeStore() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

func openHibernator(
	ctx context.Context, cfg HibernateConfig,
) (journal.Hibernator, error) {
	switch cfg.Driver {
	case DriverBolt:
		return journal.NewBoltHibernator(cfg.Path)
	case DriverPostgres:
		h, err := journal.NewPostgresHibernator(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := h.EnsureSchema(ctx); err != nil {
			_ = h.Close()
			return nil, err
		}
		return h, nil
	default:
		return nil, nil
	}
}
