// Command go-runner starts a http server that judges source code against
// test cases by running it as a host process.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/codeprep/go-runner/cmd/go-runner/config"
	restexecutor "github.com/codeprep/go-runner/cmd/go-runner/rest_executor"
	"github.com/codeprep/go-runner/cmd/go-runner/version"
	wsexecutor "github.com/codeprep/go-runner/cmd/go-runner/ws_executor"
	"github.com/codeprep/go-runner/judger"
	"github.com/codeprep/go-runner/language"
	"github.com/codeprep/go-runner/worker"
	"github.com/codeprep/go-runner/workspace"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

var logger *zap.Logger

func main() {
	conf := loadConf()
	if conf.Version {
		fmt.Println(version.Version)
		return
	}
	initLogger(conf)
	defer logger.Sync()
	if ce := logger.Check(zap.InfoLevel, "Config loaded"); ce != nil {
		ce.Write(zap.String("config", fmt.Sprintf("%+v", conf)))
	}
	warnIfNotUnix()

	// Init judger
	registry := newRegistry(conf)
	ws, wsCleanUp := newWorkspaceManager(conf)
	work := newWorker(conf, registry, ws)
	work.Start()
	logger.Info("Worker started",
		zap.Int("parallelism", conf.Parallelism),
		zap.String("dir", conf.Dir),
		zap.Strings("languages", registry.Languages()))

	servers := []initFunc{
		initHTTPServer(conf, work, registry.Languages()),
		initMonitorHTTPServer(conf),
	}
	// run in order once the servers are down, the workspace root must outlive
	// every request
	cleanUps := []stopFunc{
		cleanUpWorker(work),
		cleanUpWorkspace(wsCleanUp),
	}

	// Gracefully shutdown, with signal / HTTP server / Monitor HTTP server
	sig := make(chan os.Signal, 1+len(servers))

	stops := []stopFunc{}
	for _, s := range servers {
		start, stop := s()
		if start != nil {
			go func() {
				start()
				sig <- os.Interrupt
			}()
		}
		if stop != nil {
			stops = append(stops, stop)
		}
	}

	// Graceful shutdown...
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	signal.Reset(syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Shutting Down...")

	ctx, cancel := context.WithTimeout(context.TODO(), judger.CaseTimeLimit+time.Second)
	defer cancel()

	err := shutdown(ctx, stops, cleanUps)
	logger.Info("Shutdown Finished", zap.Error(err))
}

// shutdown stops all servers together, then runs cleanUps one by one
func shutdown(ctx context.Context, stops, cleanUps []stopFunc) error {
	var eg errgroup.Group
	for _, s := range stops {
		eg.Go(func() error {
			return s(ctx)
		})
	}
	errs := []error{eg.Wait()}
	for _, c := range cleanUps {
		if c != nil {
			errs = append(errs, c(ctx))
		}
	}
	return errors.Join(errs...)
}

func warnIfNotUnix() {
	switch runtime.GOOS {
	case "linux", "darwin", "freebsd":
	default:
		logger.Warn("Platform is not primarily supported", zap.String("GOOS", runtime.GOOS))
		logger.Warn("Process group kill is not available, child processes may outlive their time limit")
	}
}

func loadConf() *config.Config {
	var conf config.Config
	if err := conf.Load(); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		log.Fatalln("load config failed ", err)
	}
	return &conf
}

type (
	stopFunc func(ctx context.Context) error
	initFunc func() (start func(), cleanUp stopFunc)
)

// cleanUpWorker cancels requests in flight, which kills their processes
func cleanUpWorker(work worker.Worker) stopFunc {
	return func(ctx context.Context) error {
		work.Shutdown()
		logger.Info("Worker shutdown")
		return nil
	}
}

func cleanUpWorkspace(wsCleanUp func() error) stopFunc {
	if wsCleanUp == nil {
		return nil
	}
	return func(ctx context.Context) error {
		err := wsCleanUp()
		logger.Info("Workspace root cleaned up")
		return err
	}
}

func initHTTPServer(conf *config.Config, work worker.Worker, languages []string) initFunc {
	return func() (start func(), cleanUp stopFunc) {
		// Init http handle
		r := initHTTPMux(conf, work, languages)
		srv := http.Server{
			Addr:    conf.HTTPAddr,
			Handler: r,
		}

		return func() {
				logger.Info("Starting http server", zap.String("addr", conf.HTTPAddr))
				if err := srv.ListenAndServe(); errors.Is(err, http.ErrServerClosed) {
					logger.Info("Http server stopped", zap.Error(err))
				} else {
					logger.Error("Http server stopped", zap.Error(err))
				}
			}, func(ctx context.Context) error {
				logger.Info("Http server shutting down")
				return srv.Shutdown(ctx)
			}
	}
}

func initMonitorHTTPServer(conf *config.Config) initFunc {
	return func() (start func(), cleanUp stopFunc) {
		// Init monitor HTTP server
		mr := initMonitorHTTPMux(conf)
		if mr == nil {
			return nil, nil
		}
		msrv := http.Server{
			Addr:    conf.MonitorAddr,
			Handler: mr,
		}
		return func() {
				logger.Info("Starting monitoring http server", zap.String("addr", conf.MonitorAddr))
				logger.Info("Monitoring http server stopped", zap.Error(msrv.ListenAndServe()))
			}, func(ctx context.Context) error {
				logger.Info("Monitoring http server shutdown")
				return msrv.Shutdown(ctx)
			}
	}
}

func initLogger(conf *config.Config) {
	if conf.Silent {
		logger = zap.NewNop()
		return
	}

	var err error
	if conf.Release {
		logger, err = zap.NewProduction()
	} else {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if !conf.EnableDebug {
			config.Level.SetLevel(zap.InfoLevel)
		}
		logger, err = config.Build()
	}
	if err != nil {
		log.Fatalln("init logger failed ", err)
	}
}

func initHTTPMux(conf *config.Config, work worker.Worker, languages []string) http.Handler {
	var r *gin.Engine
	if conf.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	r = gin.New()
	r.Use(ginzap.Ginzap(logger, "", false))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	// Metrics Handle
	if conf.EnableMetrics {
		initGinMetrics(r)
	}

	// Status handle
	r.GET("/", generateHandleStatus(languages))

	// Version handle
	r.GET("/version", generateHandleVersion())

	// Config handle
	r.GET("/config", generateHandleConfig(conf, languages))

	// Add auth token
	if conf.AuthToken != "" {
		r.Use(tokenAuth(conf.AuthToken))
		logger.Info("Attach token auth")
	}

	// Rest Handle
	cmdHandle := restexecutor.NewCmdHandle(work, languages, *conf.MaxCodeSize, logger)
	cmdHandle.Register(r)

	// WebSocket Handle
	wsHandle := wsexecutor.New(work, *conf.MaxCodeSize, logger)
	wsHandle.Register(r)

	return r
}

func initMonitorHTTPMux(conf *config.Config) http.Handler {
	if !conf.EnableMetrics && !conf.EnableDebug {
		return nil
	}
	mux := http.NewServeMux()
	if conf.EnableMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}
	if conf.EnableDebug {
		initDebugRoute(mux)
	}
	return mux
}

func initDebugRoute(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

func initGinMetrics(r *gin.Engine) {
	p := ginprometheus.NewWithConfig(ginprometheus.Config{
		Subsystem:          "gin",
		DisableBodyReading: true,
	})
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		return c.FullPath()
	}
	r.Use(p.HandlerFunc())
}

func tokenAuth(token string) gin.HandlerFunc {
	const bearer = "Bearer "
	return func(c *gin.Context) {
		reqToken := c.GetHeader("Authorization")
		if strings.HasPrefix(reqToken, bearer) && reqToken[len(bearer):] == token {
			c.Next()
			return
		}
		c.AbortWithStatus(http.StatusUnauthorized)
	}
}

func newRegistry(conf *config.Config) *language.Registry {
	tc, err := language.LoadToolchain(conf.LanguageConf)
	if err != nil {
		logger.Fatal("load language toolchain failed", zap.Error(err))
	}
	r, err := language.NewDefaultRegistry(tc, language.Options{
		CompileTimeLimit: conf.CompileTimeLimit,
		OutputLimit:      *conf.OutputLimit,
	})
	if err != nil {
		logger.Fatal("create language registry failed", zap.Error(err))
	}
	return r
}

func newWorkspaceManager(conf *config.Config) (workspace.Manager, func() error) {
	var cleanUp func() error
	if conf.Dir == "" {
		conf.Dir = filepath.Join(os.TempDir(), "go-runner")
		err := os.Mkdir(conf.Dir, 0o755)
		if err != nil && !errors.Is(err, os.ErrExist) {
			logger.Fatal("Failed to create workspace default dir", zap.Error(err))
		}
		cleanUp = func() error {
			return os.RemoveAll(conf.Dir)
		}
	}
	m, err := workspace.NewLocalManager(conf.Dir, logger)
	if err != nil {
		logger.Fatal("create workspace manager failed", zap.Error(err))
	}
	if conf.EnableMetrics {
		m = &metricsWorkspaceManager{m}
	}
	return m, cleanUp
}

func newWorker(conf *config.Config, registry *language.Registry, ws workspace.Manager) worker.Worker {
	j := &judger.Judger{
		Languages: registry,
		Workspace: ws,
		Logger:    logger,
	}
	var observer func(worker.Response)
	if conf.EnableMetrics {
		observer = execObserve
	}
	return worker.New(worker.Config{
		Judger:       j,
		Parallelism:  conf.Parallelism,
		ExecObserver: observer,
	})
}

func generateHandleStatus(languages []string) func(*gin.Context) {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"languages": languages,
		})
	}
}

func generateHandleVersion() func(*gin.Context) {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"buildVersion": version.Version,
			"goVersion":    runtime.Version(),
			"platform":     runtime.GOARCH,
			"os":           runtime.GOOS,
		})
	}
}

func generateHandleConfig(conf *config.Config, languages []string) func(*gin.Context) {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"languages":        languages,
			"caseTimeLimit":    judger.CaseTimeLimit.String(),
			"compileTimeLimit": conf.CompileTimeLimit.String(),
			"outputLimit":      conf.OutputLimit.String(),
			"maxCodeSize":      conf.MaxCodeSize.String(),
			"parallelism":      conf.Parallelism,
			"javaMainClass":    language.JavaMainClass,
		})
	}
}
