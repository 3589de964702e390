package consts

const (
	COMP_SVC_WORKER_POOL   = "worker_pool"
	COMP_SVC_STATIC_SERVER = "static_server"
	COMP_CTRL_STATUS       = "status_ctrl"
)
