package server

import (
	"context"
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// systemStatusResponse is the payload for GET /api/system/status.
type systemStatusResponse struct {
	Status        string                 `json:"status"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	CPUPercent    float64                `json:"cpu_percent"`
	Memory        map[string]interface{} `json:"memory"`
	Disk          map[string]interface{} `json:"disk"`
	Databases     map[string]string      `json:"databases"`
	Scheduler     interface{}            `json:"scheduler"`
}

// handleSystemStatus reports host resource usage, database health and
// recent computation timings.
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := systemStatusResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
		Memory:        map[string]interface{}{},
		Disk:          map[string]interface{}{},
		Databases:     map[string]string{},
		Scheduler:     s.scheduler.Stats(),
	}

	// Instantaneous CPU sample; zero interval avoids blocking the request.
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		resp.CPUPercent = percents[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		resp.Memory = map[string]interface{}{
			"total_mb":     vm.Total / 1024 / 1024,
			"used_mb":      vm.Used / 1024 / 1024,
			"used_percent": vm.UsedPercent,
		}
	}

	if du, err := disk.Usage(s.cfg.DataDir); err == nil {
		resp.Disk = map[string]interface{}{
			"total_mb":     du.Total / 1024 / 1024,
			"used_mb":      du.Used / 1024 / 1024,
			"used_percent": du.UsedPercent,
		}
	}

	for name, db := range map[string]interface {
		QuickCheck(context.Context) error
	}{
		"tour":  s.tourDB,
		"cache": s.cacheDB,
	} {
		if err := db.QuickCheck(ctx); err != nil {
			resp.Databases[name] = "error: " + err.Error()
			resp.Status = "degraded"
		} else {
			resp.Databases[name] = "ok"
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}
