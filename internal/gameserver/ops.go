package gameserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

// statsResponse is what /stats reports. The tick goroutine is the only
// writer of Server's game/session state (spec §5's single-writer rule), so
// the ops HTTP server never touches it directly — it reads a copy stashed
// into statsSnapshot once per tick instead.
type statsResponse struct {
	ServerName   string `json:"server_name"`
	Mode         string `json:"mode"`
	Players      int    `json:"players"`
	PlayerMax    int    `json:"player_max"`
	GameNumber   int    `json:"game_number"`
	RedScore     uint32 `json:"red_score"`
	BlueScore    uint32 `json:"blue_score"`
	Period       uint32 `json:"period"`
	UptimeSecond int64  `json:"uptime_seconds"`
}

func (s *Server) publishStats() {
	s.statsSnapshot.Store(statsResponse{
		ServerName:   s.cfg.ServerName,
		Mode:         s.cfg.ModeParams.Mode,
		Players:      s.sessions.Count(),
		PlayerMax:    s.cfg.PlayerMax,
		GameNumber:   s.game.GameNumber,
		RedScore:     s.game.RedScore,
		BlueScore:    s.game.BlueScore,
		Period:       s.game.Period,
		UptimeSecond: int64(time.Since(s.startTime).Seconds()),
	})
}

// OpsHandler builds the httprouter mux serving /health and /stats.
func (s *Server) OpsHandler() http.Handler {
	r := httprouter.New()
	r.GET("/health", s.handleHealth)
	r.GET("/stats", s.handleStats)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	resp, _ := s.statsSnapshot.Load().(statsResponse)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
