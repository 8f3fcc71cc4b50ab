package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shine-lab/orchestration-core/internal/apperr"
	"github.com/shine-lab/orchestration-core/internal/cache"
	"github.com/shine-lab/orchestration-core/internal/config"
	"github.com/shine-lab/orchestration-core/internal/eventbus"
	"github.com/shine-lab/orchestration-core/internal/models"
	"github.com/shine-lab/orchestration-core/internal/scheduler"
	"github.com/shine-lab/orchestration-core/internal/store"
)

// GameDataHandler implements GET /game-data (§6). Every read first runs
// lazy timeout reconciliation so a participant who was away longer than a
// task's budget never sees a stale timeline (§4.3).
type GameDataHandler struct {
	store *store.Store
	game  *config.Game
	sched *scheduler.Scheduler
	cache *cache.Cache
}

// NewGameDataHandler builds a GameDataHandler.
func NewGameDataHandler(st *store.Store, game *config.Game, sched *scheduler.Scheduler, c *cache.Cache) *GameDataHandler {
	return &GameDataHandler{store: st, game: game, sched: sched, cache: c}
}

// RegisterRoutes registers the game-data endpoint.
func (h *GameDataHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/game-data", h.GetGameData)
}

type environmentResponse struct {
	Time timeResponse `json:"time"`
}

type timeResponse struct {
	StartTime string `json:"startTime"`
	Speed     float64 `json:"speed"`
	GameStart int64   `json:"gameStart"`
}

type interactionResponse struct {
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	CurrentState struct {
		Value interface{} `json:"value"`
	} `json:"currentState"`
}

type deviceResponse struct {
	DeviceID     string                 `json:"deviceId"`
	Interactions []interactionResponse  `json:"interactions"`
}

type wallResponse struct {
	ID      string           `json:"id"`
	Devices []deviceResponse `json:"devices"`
}

type roomResponse struct {
	ID    string         `json:"id"`
	Walls []wallResponse `json:"walls"`
}

type gameConfigResponse struct {
	Environment environmentResponse `json:"environment"`
	Rooms       []roomResponse      `json:"rooms"`
}

type gameDataResponse struct {
	GameConfig gameConfigResponse  `json:"gameConfig"`
	Tasks      []eventbus.TaskView `json:"tasks"`
}

// GetGameData handles GET /game-data?session_id=… (§6).
func (h *GameDataHandler) GetGameData(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing-fields", Message: "session_id is required"})
		return
	}

	ctx := c.Request.Context()
	sess, err := h.store.GetSession(ctx, sessionID)
	if err != nil {
		if appErr, ok := apperr.As(err); ok && appErr.Kind == apperr.KindNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "not-found", Message: "session not found"})
			return
		}
		writeAppError(c, err)
		return
	}
	if sess.IsCompleted {
		c.JSON(http.StatusNotFound, gin.H{"session_completed": true})
		return
	}

	reconciled, err := h.sched.ReconcileTimeouts(ctx, sessionID, time.Now())
	if err != nil {
		writeAppError(c, err)
		return
	}
	if reconciled.Changed {
		h.cache.InvalidateGameData(ctx, sessionID)
	} else if cached, ok := h.cache.GetGameData(ctx, sessionID); ok {
		c.Data(http.StatusOK, "application/json", []byte(cached))
		return
	}

	devices, err := h.store.GetDevices(ctx, sessionID)
	if err != nil {
		writeAppError(c, err)
		return
	}
	tasks, err := h.store.GetTasks(ctx, sessionID)
	if err != nil {
		writeAppError(c, err)
		return
	}

	resp := gameDataResponse{
		GameConfig: h.buildGameConfig(devices, sess.StartTime),
		Tasks:      h.buildTaskViews(tasks),
	}

	body, err := json.Marshal(resp)
	if err != nil {
		writeAppError(c, apperr.Internal("marshal game data", err))
		return
	}
	h.cache.SetGameData(ctx, sessionID, string(body))
	c.Data(http.StatusOK, "application/json", body)
}

func (h *GameDataHandler) buildGameConfig(devices []models.Device, sessionStart time.Time) gameConfigResponse {
	byID := make(map[string]*models.Device, len(devices))
	for i := range devices {
		byID[devices[i].DeviceID] = &devices[i]
	}

	rooms := make([]roomResponse, 0, len(h.game.Rooms))
	for _, room := range h.game.Rooms {
		walls := make([]wallResponse, 0, len(room.Walls))
		for _, wall := range room.Walls {
			devs := make([]deviceResponse, 0, len(wall.Devices))
			for _, dc := range wall.Devices {
				devs = append(devs, h.buildDeviceResponse(dc, byID[dc.DeviceID]))
			}
			walls = append(walls, wallResponse{ID: wall.ID, Devices: devs})
		}
		rooms = append(rooms, roomResponse{ID: room.ID, Walls: walls})
	}

	return gameConfigResponse{
		Environment: environmentResponse{Time: timeResponse{
			StartTime: fmt.Sprintf("%02d:%02d", h.game.Environment.Time.StartTime.Hour, h.game.Environment.Time.StartTime.Minute),
			Speed:     h.game.Environment.Time.Speed,
			GameStart: sessionStart.UnixMilli(),
		}},
		Rooms: rooms,
	}
}

func (h *GameDataHandler) buildDeviceResponse(dc config.DeviceConfig, live *models.Device) deviceResponse {
	interactions := make([]interactionResponse, 0, len(dc.Interactions))
	for _, ic := range dc.Interactions {
		ir := interactionResponse{Name: ic.Name, Type: string(ic.Type)}
		ir.CurrentState.Value = ic.Value
		if live != nil {
			if found := live.Find(ic.Name); found != nil {
				ir.CurrentState.Value = found.Value
			}
		}
		interactions = append(interactions, ir)
	}
	return deviceResponse{DeviceID: dc.DeviceID, Interactions: interactions}
}

func (h *GameDataHandler) buildTaskViews(tasks []models.Task) []eventbus.TaskView {
	views := make([]eventbus.TaskView, 0, len(tasks))
	for _, t := range tasks {
		tc, _ := h.game.TaskByID(t.TaskID)
		var abortionOptions []string
		abortable := h.game.Tasks.GlobalAbortable()
		var env []map[string]interface{}
		if tc != nil {
			abortionOptions = tc.AbortionOptions
			abortable = tc.AbortOverride().Resolve(h.game.Tasks.GlobalAbortable())
			for _, e := range tc.Environment {
				env = append(env, map[string]interface{}{"name": e.Name, "value": e.Value})
			}
		}
		views = append(views, eventbus.TaskView{
			TaskID:          t.TaskID,
			Description:     t.Description,
			IsCompleted:     t.IsCompleted,
			IsAborted:       t.IsAborted,
			IsTimedOut:      t.IsTimedOut,
			AbortionOptions: abortionOptions,
			Abortable:       abortable,
			Environment:     env,
		})
	}
	return views
}
