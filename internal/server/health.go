package server

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// healthHandler reports process, host and generator status.
func (s *Server) healthHandler(c echo.Context) error {
	ctx := c.Request().Context()

	status := "up"
	if !s.generation.Configured {
		status = "degraded"
	}

	runtimeInfo := map[string]interface{}{
		"uptime":     time.Since(s.startTime).Round(time.Second).String(),
		"start_time": s.startTime.Format(time.RFC3339),
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
	}
	if hInfo, err := host.InfoWithContext(ctx); err == nil && hInfo != nil {
		runtimeInfo["os"] = hInfo.OS
		runtimeInfo["platform"] = hInfo.Platform
		runtimeInfo["arch"] = hInfo.KernelArch
		runtimeInfo["hostname"] = hInfo.Hostname
	}

	resp := map[string]interface{}{
		"status":     status,
		"runtime":    runtimeInfo,
		"generation": s.generation,
	}

	// A zero interval compares against the previous call instead of sleeping.
	if cpuPercent, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(cpuPercent) > 0 {
		resp["cpu"] = map[string]interface{}{
			"usage_percent": fmt.Sprintf("%.2f%%", cpuPercent[0]),
			"cores":         runtime.NumCPU(),
		}
	}

	if v, err := mem.VirtualMemoryWithContext(ctx); err == nil && v != nil {
		resp["memory"] = map[string]interface{}{
			"total_gb":     fmt.Sprintf("%.2f GB", float64(v.Total)/1024/1024/1024),
			"used_gb":      fmt.Sprintf("%.2f GB", float64(v.Used)/1024/1024/1024),
			"used_percent": fmt.Sprintf("%.2f%%", v.UsedPercent),
		}
	}

	return c.JSON(http.StatusOK, resp)
}
