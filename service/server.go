package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/devskill-org/suntrack/solarpos"
	"github.com/devskill-org/suntrack/utils"
)

// WebServer provides HTTP endpoints for health checking, monitoring, and live data
type WebServer struct {
	estimator *Estimator
	server    *http.Server
	port      int
	startTime time.Time
	upgrader  websocket.Upgrader
	clients   sync.Map
	broadcast chan []byte
	done      chan struct{}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Version   string          `json:"version,omitempty"`
	Estimator EstimatorHealth `json:"estimator"`
	System    SystemHealth    `json:"system"`
}

// EstimatorHealth represents estimator-specific health information
type EstimatorHealth struct {
	IsRunning         bool    `json:"is_running"`
	HasForecast       bool    `json:"has_forecast"`
	SampleCount       int     `json:"sample_count"`
	ModeledPower      float64 `json:"modeled_power"`
	MeasuredPower     float64 `json:"measured_power"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	SampleInterval    string  `json:"sample_interval"`
	IntegrationPeriod string  `json:"integration_period"`
}

// SystemHealth represents system-level health information
type SystemHealth struct {
	Uptime     string `json:"uptime"`
	Memory     string `json:"memory,omitempty"`
	Goroutines int    `json:"goroutines,omitempty"`
}

// NewWebServer creates a new web server with health and data endpoints
func NewWebServer(estimator *Estimator, port int) *WebServer {
	if port <= 0 {
		return nil // Web server disabled
	}

	mux := http.NewServeMux()
	ws := &WebServer{
		estimator: estimator,
		port:      port,
		startTime: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in development
			},
		},
		broadcast: make(chan []byte, 256),
		done:      make(chan struct{}),
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	// Register API routes
	mux.HandleFunc("/api/health", ws.healthHandler)
	mux.HandleFunc("/api/ready", ws.readinessHandler)
	mux.HandleFunc("/api/status", ws.statusHandler)
	mux.HandleFunc("/api/position", ws.positionHandler)
	mux.HandleFunc("/api/day", ws.dayHandler)
	mux.HandleFunc("/api/profile", ws.profileHandler)
	mux.HandleFunc("/api/ws", ws.wsHandler)

	// Serve static files from web folder
	fs := http.FileServer(http.Dir("./web/dist"))
	mux.Handle("/", fs)

	return ws
}

// Start starts the web server
func (ws *WebServer) Start() error {
	if ws == nil {
		return nil // Web server disabled
	}

	// Start the broadcast handler
	go ws.handleBroadcasts()

	// Start periodic status broadcaster
	go ws.broadcastStatus()

	go func() {
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Log error but don't crash the main application
			fmt.Printf("Web server error: %v\n", err)
		}
	}()

	return nil
}

// Stop gracefully stops the web server
func (ws *WebServer) Stop(ctx context.Context) error {
	if ws == nil {
		return nil // Web server disabled
	}

	// Signal goroutines to stop
	close(ws.done)

	// Close all WebSocket connections
	ws.clients.Range(func(key, value any) bool {
		if conn, ok := key.(*websocket.Conn); ok {
			conn.Close()
		}
		return true
	})

	return ws.server.Shutdown(ctx)
}

// healthHandler handles the /api/health endpoint
func (ws *WebServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := ws.buildHealth()

	if health.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// readinessHandler handles the /api/ready endpoint
func (ws *WebServer) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := ws.estimator.GetStatus()

	ready := map[string]any{
		"ready":     status.IsRunning,
		"timestamp": utils.UTCString(time.Now()),
	}

	w.Header().Set("Content-Type", "application/json")

	if !status.IsRunning {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(ready); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// statusHandler handles the /api/status endpoint (detailed status)
func (ws *WebServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := ws.buildStatus()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// positionHandler handles the /api/position endpoint
func (ws *WebServer) positionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	at := time.Now()
	if v := r.URL.Query().Get("at"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid at parameter: %v", err), http.StatusBadRequest)
			return
		}
		at = parsed
	}

	position, err := solarpos.Position(at, ws.estimator.GetConfig().Location())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := map[string]any{
		"timestamp": utils.UTCString(at),
		"position":  position,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// dayHandler handles the /api/day endpoint
func (ws *WebServer) dayHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date := time.Now().UTC()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid date parameter: %v", err), http.StatusBadRequest)
			return
		}
		date = parsed
	}

	config := ws.estimator.GetConfig()
	summary, err := solarpos.DaySummaryAltitude(date, config.Location(), solarpos.StandardHorizon)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := map[string]any{
		"date":       utils.DateString(date),
		"kind":       summary.Kind.String(),
		"solar_noon": utils.UTCString(summary.SolarNoon),
		"day_length": summary.DayLength.String(),
	}

	if summary.Kind == solarpos.NormalDay {
		response["sunrise"] = utils.UTCString(summary.Sunrise)
		response["sunset"] = utils.UTCString(summary.Sunset)
	}

	if energy, err := ws.estimator.ExpectedDailyEnergy(date); err == nil {
		response["expected_energy_wh"] = energy
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// profileHandler handles the /api/profile endpoint
func (ws *WebServer) profileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date := time.Now().UTC()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid date parameter: %v", err), http.StatusBadRequest)
			return
		}
		date = parsed
	}

	step := solarpos.DefaultProfileStep
	if v := r.URL.Query().Get("step"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid step parameter", http.StatusBadRequest)
			return
		}
		step = parsed
	}

	samples, err := solarpos.Profile(date, ws.estimator.GetConfig().Location(), step)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := map[string]any{
		"date":    utils.DateString(date),
		"step":    step.String(),
		"samples": samples,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// wsHandler handles WebSocket connections
func (ws *WebServer) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		fmt.Printf("WebSocket upgrade error: %v\n", err)
		return
	}

	// Register new client
	ws.clients.Store(conn, true)

	clientCount := 0
	ws.clients.Range(func(key, value any) bool {
		clientCount++
		return true
	})
	fmt.Printf("New WebSocket client connected. Total clients: %d\n", clientCount)

	// Send initial data immediately
	ws.sendStatusToClient(conn)

	// Handle client disconnection
	defer func() {
		ws.clients.Delete(conn)
		conn.Close()

		clientCount := 0
		ws.clients.Range(func(key, value any) bool {
			clientCount++
			return true
		})
		fmt.Printf("WebSocket client disconnected. Total clients: %d\n", clientCount)
	}()

	// Read messages from client (ping/pong, close)
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				fmt.Printf("WebSocket error: %v\n", err)
			}
			break
		}
	}
}

// handleBroadcasts sends messages to all connected clients
func (ws *WebServer) handleBroadcasts() {
	for {
		select {
		case message := <-ws.broadcast:
			ws.clients.Range(func(key, value any) bool {
				conn, ok := key.(*websocket.Conn)
				if !ok {
					return true
				}

				err := conn.WriteMessage(websocket.TextMessage, message)
				if err != nil {
					fmt.Printf("WebSocket write error: %v\n", err)
					conn.Close()
					ws.clients.Delete(conn)
				}
				return true
			})
		case <-ws.done:
			return
		}
	}
}

// broadcastStatus periodically broadcasts status updates
func (ws *WebServer) broadcastStatus() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			hasClients := false
			ws.clients.Range(func(key, value any) bool {
				hasClients = true
				return false // Stop after finding first client
			})

			if hasClients {
				data := ws.buildStatusData()
				message, err := json.Marshal(data)
				if err != nil {
					fmt.Printf("Failed to marshal status data: %v\n", err)
					continue
				}
				ws.broadcast <- message
			}
		case <-ws.done:
			return
		}
	}
}

// sendStatusToClient sends status data to a specific client
func (ws *WebServer) sendStatusToClient(conn *websocket.Conn) {
	data := ws.buildStatusData()
	if err := conn.WriteJSON(data); err != nil {
		fmt.Printf("Failed to send initial data: %v\n", err)
	}
}

// buildHealth builds the health response
func (ws *WebServer) buildHealth() HealthResponse {
	status := ws.estimator.GetStatus()
	config := ws.estimator.GetConfig()

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: utils.UTCString(time.Now()),
		Version:   "1.0.0",
		Estimator: EstimatorHealth{
			IsRunning:         status.IsRunning,
			HasForecast:       status.HasForecast,
			SampleCount:       status.SampleCount,
			ModeledPower:      status.ModeledPower,
			MeasuredPower:     status.MeasuredPower,
			Latitude:          config.Latitude,
			Longitude:         config.Longitude,
			SampleInterval:    config.SampleInterval.String(),
			IntegrationPeriod: config.IntegrationPeriod.String(),
		},
		System: SystemHealth{
			Uptime:     formatUptime(time.Since(ws.startTime)),
			Goroutines: 0, // Placeholder - would need runtime.NumGoroutine()
		},
	}

	if !status.IsRunning {
		health.Status = "unhealthy"
	}

	return health
}

// buildStatus builds the detailed status map
func (ws *WebServer) buildStatus() map[string]any {
	status := ws.estimator.GetStatus()

	response := map[string]any{
		"estimator_status": status,
		"timestamp":        utils.UTCString(time.Now()),
	}

	if position, err := ws.estimator.CurrentPosition(); err == nil {
		response["position"] = position
	}

	if inverterStatus := ws.estimator.GetInverterStatus(); inverterStatus != nil {
		response["inverter"] = inverterStatus
	}

	if summary, err := ws.estimator.TodaySummary(); err == nil {
		day := map[string]any{
			"kind":       summary.Kind.String(),
			"solar_noon": utils.UTCString(summary.SolarNoon),
			"day_length": summary.DayLength.String(),
		}
		if summary.Kind == solarpos.NormalDay {
			day["sunrise"] = utils.UTCString(summary.Sunrise)
			day["sunset"] = utils.UTCString(summary.Sunset)
		}
		response["day"] = day
	}

	return response
}

// buildStatusData builds combined health and status data for websocket clients
func (ws *WebServer) buildStatusData() map[string]any {
	return map[string]any{
		"type":   "status_update",
		"health": ws.buildHealth(),
		"status": ws.buildStatus(),
	}
}

// Helper functions

// formatUptime formats a duration as a string with seconds rounded to integer
func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
