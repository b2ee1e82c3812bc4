package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dzm2020/gactor/internal/actor"
	"github.com/dzm2020/gactor/internal/config"
	"github.com/dzm2020/gactor/internal/host"
	"github.com/dzm2020/gactor/pkg/glog"
)

var (
	configPath = flag.String("config", "", "config file (yaml or json)")
	dumpConfig = flag.Bool("dump-config", false, "print the effective config and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		glog.Fatal("load config", zap.String("path", *configPath), zap.Error(err))
	}
	if *dumpConfig {
		if err = cfg.Dump(os.Stdout); err != nil {
			glog.Fatal("dump config", zap.Error(err))
		}
		return
	}

	glog.Init(&cfg.Glog)
	defer glog.Stop()

	h, err := host.New(cfg)
	if err != nil {
		glog.Fatal("create host", zap.Error(err))
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = h.Start(ctx); err != nil {
		glog.Fatal("start host", zap.Error(err))
	}
	echo, err := h.Spawn("echo", EchoClass, &Echo{})
	if err != nil {
		glog.Fatal("spawn echo", zap.Error(err))
	}
	glog.Info("node ready", zap.Stringer("echo", echo))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = h.Shutdown(shutdownCtx); err != nil {
		glog.Error("shutdown host", zap.Error(err))
	}
}

// EchoClass 演示 actor 的能力声明
var EchoClass = &actor.Class{
	Name: "Echo",
	Tell: []string{"Log"},
	Ask:  []string{"Echo", "Count"},
}

// Echo 原样返回收到的内容并计数
type Echo struct {
	count int
}

func (e *Echo) Echo(v any) any {
	e.count++
	return v
}

func (e *Echo) Log(v any) {
	e.count++
	glog.Info("echo", zap.Any("value", v))
}

func (e *Echo) Count() int {
	return e.count
}
