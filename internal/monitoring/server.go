package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Alert thresholds
const (
	cpuAlertPercent  = 90.0
	memAlertPercent  = 90.0
	diskAlertPercent = 85.0
	sampleInterval   = 30 * time.Second
)

type Alert struct {
	ID        int       `json:"id"`
	Severity  string    `json:"severity"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type Stats struct {
	DatabaseStatus string  `json:"database_status"`
	ResponseTime   int64   `json:"response_time_ms"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemoryPercent  float64 `json:"memory_percent"`
	DiskPercent    float64 `json:"disk_percent"`
	ActiveAlerts   int     `json:"active_alerts"`
}

// Server is the ops monitoring endpoint: a stats JSON route plus a
// websocket that pushes resource alerts to connected dashboards.
type Server struct {
	db   *pgxpool.Pool
	port int

	alertsMux sync.RWMutex
	alerts    []Alert
	nextID    int

	clientsMux sync.Mutex
	clients    map[*websocket.Conn]bool
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewServer(db *pgxpool.Pool, port int) *Server {
	return &Server{
		db:      db,
		port:    port,
		alerts:  make([]Alert, 0),
		clients: make(map[*websocket.Conn]bool),
	}
}

func (s *Server) Start() {
	r := mux.NewRouter()
	r.HandleFunc("/stats", s.statsHandler).Methods("GET")
	r.HandleFunc("/alerts", s.alertsHandler).Methods("GET")
	r.HandleFunc("/ws", s.wsHandler)

	go s.sampleLoop()

	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("[Monitoring] listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Printf("[Monitoring] server stopped: %v", err)
	}
}

func (s *Server) collect() Stats {
	stats := Stats{DatabaseStatus: "healthy"}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	start := time.Now()
	if err := s.db.Ping(ctx); err != nil {
		stats.DatabaseStatus = "unhealthy"
	}
	stats.ResponseTime = time.Since(start).Milliseconds()

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = vm.UsedPercent
	}
	if du, err := disk.Usage("/"); err == nil {
		stats.DiskPercent = du.UsedPercent
	}

	s.alertsMux.RLock()
	stats.ActiveAlerts = len(s.alerts)
	s.alertsMux.RUnlock()
	return stats
}

func (s *Server) sampleLoop() {
	ticker := time.NewTicker(sampleInterval)
	defer ticker.Stop()

	for range ticker.C {
		stats := s.collect()
		if stats.DatabaseStatus != "healthy" {
			s.raise("critical", "database", "database ping failed")
		}
		if stats.CPUPercent > cpuAlertPercent {
			s.raise("warning", "cpu", fmt.Sprintf("CPU at %.0f%%", stats.CPUPercent))
		}
		if stats.MemoryPercent > memAlertPercent {
			s.raise("warning", "memory", fmt.Sprintf("memory at %.0f%%", stats.MemoryPercent))
		}
		if stats.DiskPercent > diskAlertPercent {
			s.raise("warning", "disk", fmt.Sprintf("disk at %.0f%%", stats.DiskPercent))
		}
	}
}

func (s *Server) raise(severity, alertType, message string) {
	s.alertsMux.Lock()
	s.nextID++
	alert := Alert{
		ID:        s.nextID,
		Severity:  severity,
		Type:      alertType,
		Message:   message,
		Timestamp: time.Now(),
	}
	s.alerts = append(s.alerts, alert)
	if len(s.alerts) > 100 {
		s.alerts = s.alerts[len(s.alerts)-100:]
	}
	s.alertsMux.Unlock()

	log.Printf("[Monitoring] %s alert (%s): %s", severity, alertType, message)
	s.broadcastAlert(alert)
}

func (s *Server) broadcastAlert(alert Alert) {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(alert); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.collect())
}

func (s *Server) alertsHandler(w http.ResponseWriter, r *http.Request) {
	s.alertsMux.RLock()
	defer s.alertsMux.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.alerts)
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Monitoring] websocket upgrade failed: %v", err)
		return
	}

	s.clientsMux.Lock()
	s.clients[conn] = true
	s.clientsMux.Unlock()

	// Reader loop just detects disconnect.
	go func() {
		defer func() {
			s.clientsMux.Lock()
			delete(s.clients, conn)
			s.clientsMux.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
