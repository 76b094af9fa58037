package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// DB is the subset of *pgxpool.Pool the checker needs.
type DB interface {
	Ping(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type HealthChecker struct {
	db DB
	// optional dependencies report "disabled" when nil
	cacheHealthy func() bool
	startedAt    time.Time
}

type HealthStatus struct {
	Status   string         `json:"status"`
	Database DatabaseHealth `json:"database"`
}

type DatabaseHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

type DetailedStatus struct {
	HealthStatus
	Cache         string  `json:"cache"`
	Uptime        string  `json:"uptime"`
	DBSize        string  `json:"db_size,omitempty"`
	DBConnections int     `json:"db_connections"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    string  `json:"memory_used,omitempty"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskUsed      string  `json:"disk_used,omitempty"`
}

func NewHealthChecker(db DB) *HealthChecker {
	return &HealthChecker{db: db, startedAt: time.Now()}
}

// SetCacheProbe wires the cache health check into detailed status.
func (h *HealthChecker) SetCacheProbe(probe func() bool) {
	h.cacheHealthy = probe
}

func (h *HealthChecker) CheckBasic() HealthStatus {
	dbHealth := h.checkDatabase()

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	}

	return HealthStatus{
		Status:   status,
		Database: dbHealth,
	}
}

// CheckDetailed adds database and host statistics to the basic check.
func (h *HealthChecker) CheckDetailed(ctx context.Context) DetailedStatus {
	out := DetailedStatus{
		HealthStatus: h.CheckBasic(),
		Cache:        "disabled",
		Uptime:       time.Since(h.startedAt).Round(time.Second).String(),
	}

	if h.cacheHealthy != nil {
		if h.cacheHealthy() {
			out.Cache = "healthy"
		} else {
			out.Cache = "unhealthy"
		}
	}

	if out.Database.Status == "healthy" {
		qctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		var sizeBytes int64
		if err := h.db.QueryRow(qctx, "SELECT pg_database_size(current_database())").Scan(&sizeBytes); err == nil {
			out.DBSize = formatBytes(uint64(sizeBytes))
		}
		_ = h.db.QueryRow(qctx, "SELECT count(*) FROM pg_stat_activity WHERE datname = current_database()").Scan(&out.DBConnections)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		out.MemoryPercent = vm.UsedPercent
		out.MemoryUsed = formatBytes(vm.Used) + " / " + formatBytes(vm.Total)
	}
	if du, err := disk.Usage("/"); err == nil {
		out.DiskPercent = du.UsedPercent
		out.DiskUsed = formatBytes(du.Used) + " / " + formatBytes(du.Total)
	}

	return out
}

func (h *HealthChecker) checkDatabase() DatabaseHealth {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return DatabaseHealth{
			Status:       "unhealthy",
			ResponseTime: responseTime,
		}
	}

	return DatabaseHealth{
		Status:       "healthy",
		ResponseTime: responseTime,
	}
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
