package api

import (
	"fmt"

	"github.com/go-chi/chi/v5"

	"github.com/grossamos/throwscape/application/components/http_server"
	"github.com/grossamos/throwscape/application/core"
	"github.com/grossamos/throwscape/internal/consts"
)

func init() {
	http_server.RegisterRoutes(func(r chi.Router, c *core.Container) error {
		if !c.Has(consts.COMP_CTRL_STATUS) {
			return nil
		}
		comp, err := c.Resolve(consts.COMP_CTRL_STATUS)
		if err != nil {
			return err
		}
		ctrl, ok := comp.(*StatusController)
		if !ok {
			return fmt.Errorf("%s type assertion failed", consts.COMP_CTRL_STATUS)
		}
		Mount(r, ctrl)
		return nil
	})
}

// Mount adds the status routes to r.
func Mount(r chi.Router, ctrl *StatusController) {
	r.Get("/status", ctrl.getStatus)
}
