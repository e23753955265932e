package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	dig_container "github.com/trezcool/riskwatch/apps/api/di/dig"
	echoapi "github.com/trezcool/riskwatch/apps/api/echo"
	"github.com/trezcool/riskwatch/core"
)

func main() {
	c := dig_container.New(core.NewConfig)
	if err := c.Invoke(run); err != nil {
		log.Fatal(err)
	}
}

func run(conf *core.Config, logger core.Logger, server *echoapi.Server) {
	logger.Info(fmt.Sprintf("riskwatch api %q starting (env %s, store %s:%s)", conf.Build, conf.Env, conf.Store.Driver, conf.Store.Path))
	defer logger.Info("riskwatch api stopped")

	serveDebug(conf, logger)

	logger.Info(fmt.Sprintf("listening on %s", conf.Server.Address))
	go server.Start()

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)
	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v received; draining requests", sig))
		stop(conf, logger, server)
	}
}

// serveDebug exposes pprof and expvar (/debug/pprof, /debug/vars) on the debug host, when one is set.
func serveDebug(conf *core.Config, logger core.Logger) {
	if conf.Server.DebugHost == "" {
		return
	}
	vars := expvar.NewMap("riskwatch")
	for k, v := range map[string]string{"build": conf.Build, "env": conf.Env, "store": conf.Store.Driver + ":" + conf.Store.Path} {
		s := new(expvar.String)
		s.Set(v)
		vars.Set(k, s)
	}

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error("debug server stopped", err)
		}
	}()
}

func stop(conf *core.Config, logger core.Logger, server *echoapi.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed; closing", err)
		if err = server.Close(); err != nil {
			logger.Fatal(fmt.Sprintf("could not close server: %v", err), err)
		}
	}
}
