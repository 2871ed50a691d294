package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/almanac/internal/amap"
	"github.com/agenthands/almanac/internal/config"
	"github.com/agenthands/almanac/internal/core"
	"github.com/agenthands/almanac/internal/core/advisor"
	"github.com/agenthands/almanac/internal/core/merge"
	"github.com/agenthands/almanac/internal/core/model"
	"github.com/agenthands/almanac/internal/core/route"
	"github.com/agenthands/almanac/internal/llm"
	"github.com/agenthands/almanac/internal/store"
)

type Server struct {
	Assistant  *core.Assistant
	Store      store.Store
	Aggregator *route.Aggregator
	Geocoder   merge.Geocoder
}

// New wires pre-built components; used directly by tests.
func New(assistant *core.Assistant, s store.Store, aggregator *route.Aggregator, geocoder merge.Geocoder) *Server {
	return &Server{
		Assistant:  assistant,
		Store:      s,
		Aggregator: aggregator,
		Geocoder:   geocoder,
	}
}

// NewServer bootstraps everything from config/config.toml plus env-var
// overrides and exits on unrecoverable setup failures.
func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Env vars win over the file.
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("AMAP_API_KEY"); v != "" {
		cfg.AMap.APIKey = v
	}
	if v := os.Getenv("AMAP_CITY"); v != "" {
		cfg.AMap.City = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "ollama"
		cfg.LLM.Model = "gpt-oss:latest"
		cfg.LLM.BaseURL = "http://localhost:11434"
	}

	var s store.Store
	if cfg.Storage.Path == "" || cfg.Storage.Path == ":memory:" {
		s = store.NewMemory()
		log.Println("No storage path configured, keeping events in memory")
	} else {
		s, err = store.NewSQLite(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to open event database: %v", err)
		}
		log.Printf("Events stored in %s", cfg.Storage.Path)
	}

	oracle, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	amapClient := amap.NewClient(cfg.AMap)
	merger := merge.NewCoordinator(s, amapClient)

	assistant := core.NewAssistant(oracle, s, merger)
	assistant.SystemPrompt = cfg.Assistant.System
	if cfg.Assistant.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Assistant.Timezone)
		if err != nil {
			log.Fatalf("Invalid assistant timezone %q: %v", cfg.Assistant.Timezone, err)
		}
		assistant.Location = loc
	}

	adv := advisor.New(advisor.Policy{
		WalkMaxMeters: cfg.Advisor.WalkMaxMeters,
		BufferMinutes: cfg.Advisor.BufferMinutes,
		TransitFactor: cfg.Advisor.TransitFactor,
	})
	aggregator := route.NewAggregator(amapClient, adv, cfg.Concurrency.RouteSegments)

	return New(assistant, s, aggregator, amapClient)
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/chat", s.Chat)
	r.GET("/events", s.ListEvents)
	r.POST("/events", s.CreateEvent)
	r.PUT("/events/:id", s.UpdateEvent)
	r.DELETE("/events/:id", s.DeleteEvent)
	r.POST("/routes/plan", s.PlanRoutes)

	return r
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (s *Server) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := s.Assistant.Analyze(c.Request.Context(), req.Message)
	if err != nil {
		log.Printf("Failed to analyze message: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) ListEvents(c *gin.Context) {
	events, err := s.Store.List(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list events: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// CreateEvent inserts a user-created event. Unlike oracle proposals,
// manual entries are the user's explicit decision, so conflicts are not
// checked here; the location is still geocoded best-effort.
func (s *Server) CreateEvent(c *gin.Context) {
	var ev model.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if ev.Title == "" || !ev.End.After(ev.Start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event needs a title and end after start"})
		return
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	if ev.Location != "" && ev.Coordinates == nil && s.Geocoder != nil {
		coords, address, err := s.Geocoder.Geocode(c.Request.Context(), ev.Location)
		if err != nil {
			log.Printf("geocoding %q failed: %v", ev.Location, err)
		} else {
			ev.Coordinates = &coords
			ev.Address = address
		}
	}

	if err := s.Store.Put(c.Request.Context(), ev); err != nil {
		log.Printf("Failed to save event: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": ev})
}

func (s *Server) UpdateEvent(c *gin.Context) {
	var ev model.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	ev.ID = c.Param("id")
	if ev.Title == "" || !ev.End.After(ev.Start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event needs a title and end after start"})
		return
	}

	_, ok, err := s.Store.Get(c.Request.Context(), ev.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	if err := s.Store.Put(c.Request.Context(), ev); err != nil {
		log.Printf("Failed to update event: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": ev})
}

func (s *Server) DeleteEvent(c *gin.Context) {
	if err := s.Store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		log.Printf("Failed to delete event: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

type PlanRequest struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// PlanRoutes builds travel segments for the stored events, optionally
// restricted to those starting inside [start, end].
func (s *Server) PlanRoutes(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	events, err := s.Store.List(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list events: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list events"})
		return
	}

	if req.Start != nil && req.End != nil {
		var filtered []model.Event
		for _, ev := range events {
			if ev.Start.Before(*req.Start) || ev.Start.After(*req.End) {
				continue
			}
			filtered = append(filtered, ev)
		}
		events = filtered
	}

	segments, errs := s.Aggregator.Plan(c.Request.Context(), events)
	for _, e := range errs {
		log.Printf("route lookup degraded: %v", e)
	}

	if segments == nil {
		segments = []model.RouteSegment{}
	}
	c.JSON(http.StatusOK, gin.H{"segments": segments})
}
