package config

import (
	"flag"
	"time"
)

// Flags holds command line overrides for the biz config. Only flags that were set
// explicitly on the command line are applied.
type Flags struct {
	fs *flag.FlagSet

	host      string
	port      int
	source    string
	timeout   int
	index     string
	notFound  string
	workers   int
	debug     bool
	supervise bool
}

// BindFlags registers the server flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.host, "host", DefaultHost, "listen host")
	fs.IntVar(&f.port, "port", DefaultPort, "listen port")
	fs.StringVar(&f.source, "source", DefaultSource, "directory to serve")
	fs.IntVar(&f.timeout, "timeout", int(DefaultTimeout/time.Second), "read timeout in seconds")
	fs.StringVar(&f.index, "index", DefaultIndexFile, "index file name for directory requests")
	fs.StringVar(&f.notFound, "not-found", "", "file served as the body of 404 responses")
	fs.IntVar(&f.workers, "workers", DefaultWorkers, "number of pool workers")
	fs.BoolVar(&f.debug, "debug", false, "log per connection failures")
	fs.BoolVar(&f.supervise, "supervise", false, "restart workers after a job panic")
	return f
}

// Apply copies explicitly set flags onto cfg. Must run before cfg.Finalize.
func (f *Flags) Apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "host":
			cfg.Host = f.host
		case "port":
			cfg.Port = f.port
		case "source":
			cfg.Source = f.source
		case "timeout":
			cfg.Timeout = time.Duration(f.timeout) * time.Second
		case "index":
			cfg.IndexFile = f.index
		case "not-found":
			cfg.NotFoundFile = f.notFound
		case "workers":
			cfg.Workers = f.workers
		case "debug":
			cfg.Debug = f.debug
		case "supervise":
			cfg.SuperviseWorkers = f.supervise
		}
	})
}
