package config

import (
	"os"
	"runtime"
	"time"

	"github.com/codeprep/go-runner/envexec"
	"github.com/koding/multiconfig"
)

// Config defines runner server configuration
type Config struct {
	// worker
	Parallelism int    `flagUsage:"control the # of concurrency execution (default equal to number of cpu)"`
	Dir         string `flagUsage:"specifies directory to create workspaces in (temp dir by default)"`

	// toolchain
	LanguageConf string `flagUsage:"specifies language toolchain configuration file" default:"language.yaml"`

	// runner limit
	CompileTimeLimit time.Duration `flagUsage:"specifies wall clock limit for each compile" default:"10s"`
	OutputLimit      *envexec.Size `flagUsage:"specifies stdout / stderr capture limit for each process" default:"64m"`
	MaxCodeSize      *envexec.Size `flagUsage:"specifies max accepted source code size" default:"1m"`

	// server config
	HTTPAddr      string `flagUsage:"specifies the http binding address" default:":5050"`
	MonitorAddr   string `flagUsage:"specifies the metrics binding address" default:":5052"`
	AuthToken     string `flagUsage:"bearer token auth for REST / WebSocket"`
	EnableDebug   bool   `flagUsage:"enable debug endpoint"`
	EnableMetrics bool   `flagUsage:"enable promethus metrics endpoint"`

	// logger config
	Release bool `flagUsage:"release level of logs"`
	Silent  bool `flagUsage:"do not print logs"`

	// show version and exit
	Version bool `flagUsage:"show version and exit"`
}

// Load loads config from flag & environment variables
func (c *Config) Load() error {
	cl := multiconfig.MultiLoader(
		&multiconfig.TagLoader{},
		&multiconfig.EnvironmentLoader{
			Prefix:    "RUNNER",
			CamelCase: true,
		},
		&multiconfig.FlagLoader{
			CamelCase: true,
			EnvPrefix: "RUNNER",
		},
	)
	if os.Getpid() == 1 {
		c.Release = true
	}
	if err := cl.Load(c); err != nil {
		return err
	}
	if c.Parallelism <= 0 {
		c.Parallelism = runtime.NumCPU()
	}
	return nil
}
