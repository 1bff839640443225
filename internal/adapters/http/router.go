package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/dkeye/huddle/internal/adapters/ws"
	"github.com/dkeye/huddle/internal/app"
	"github.com/dkeye/huddle/internal/config"
	"github.com/dkeye/huddle/internal/core"
	"github.com/dkeye/huddle/internal/domain"
	"github.com/dkeye/huddle/internal/proto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SessionIDMiddleware tags every request with a fresh connection id.
func SessionIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("sid", uuid.NewString())
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.ServerConfig, orch *app.Orchestrator) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(SessionIDMiddleware())

	ctrl := ws.NewController(orch, ws.Options{
		SendBuffer: cfg.SendBuffer,
		WriteWait:  cfg.WriteWait,
		PingPeriod: cfg.PingPeriod,
	}, cfg.ReadLimit)

	listRooms := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": orch.Rooms.List()})
	}
	r.GET(proto.RoomsPath, listRooms)

	api := r.Group("/api")
	api.GET("/rooms", listRooms)

	// GET /api/rooms/:room: room info with both member lists
	api.GET("/rooms/:room", func(c *gin.Context) {
		room, err := orch.Rooms.Get(domain.RoomID(c.Param("room")))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, core.ErrRoomNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		info := room.Room()
		c.JSON(http.StatusOK, gin.H{
			"id":       info.ID,
			"name":     info.Name,
			"capacity": info.Capacity,
			"text":     room.MembersSnapshot(domain.TextChannel),
			"voice":    room.MembersSnapshot(domain.VoiceChannel),
		})
	})

	r.GET(proto.ChatRoute, func(c *gin.Context) {
		ctrl.HandleChat(ctx, c)
	})
	r.GET(proto.VoiceRoute, func(c *gin.Context) {
		ctrl.HandleVoice(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
