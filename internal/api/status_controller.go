package api

import (
	"encoding/json"
	"net/http"

	"github.com/grossamos/throwscape/application/core"
	"github.com/grossamos/throwscape/internal/config"
	"github.com/grossamos/throwscape/internal/consts"
	"github.com/grossamos/throwscape/internal/scheduler"
)

// PoolStats is the part of the worker pool the status endpoint reads.
type PoolStats interface {
	Stats() (scheduler.Stats, bool)
}

// ListenAddr is implemented by the static server.
type ListenAddr interface {
	Addr() string
}

type StatusController struct {
	*core.BaseComponent
	cfg    *config.Config
	pool   PoolStats
	server ListenAddr
}

func NewStatusController(cfg *config.Config, pool PoolStats, server ListenAddr) *StatusController {
	return &StatusController{
		BaseComponent: core.NewBaseComponent(consts.COMP_CTRL_STATUS, consts.COMP_SVC_WORKER_POOL, consts.COMP_SVC_STATIC_SERVER),
		cfg:           cfg,
		pool:          pool,
		server:        server,
	}
}

type statusView struct {
	Listen    string           `json:"listen"`
	Root      string           `json:"root"`
	IndexFile string           `json:"index_file"`
	Pool      *scheduler.Stats `json:"pool,omitempty"`
}

func (c *StatusController) getStatus(w http.ResponseWriter, r *http.Request) {
	view := statusView{
		Root:      c.cfg.ServeRoot(),
		IndexFile: c.cfg.IndexFile,
	}
	if c.server != nil {
		view.Listen = c.server.Addr()
	}
	if c.pool != nil {
		if st, ok := c.pool.Stats(); ok {
			view.Pool = &st
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
