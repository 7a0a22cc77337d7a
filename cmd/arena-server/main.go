package main

import (
	"fmt"
	"os"
	"time"

	"github.com/liangdas/mqant"
	"github.com/liangdas/mqant/module"
	"github.com/liangdas/mqant/registry"
	"github.com/liangdas/mqant/registry/consul"
	"github.com/nats-io/nats.go"

	docs "robot-arena/docs/arena"
	"robot-arena/internal/modules/arena"
	"robot-arena/internal/pkg/config"
	"robot-arena/internal/pkg/log"
)

// @title           Robot Arena API
// @version         1.0
// @description     机器人对战竞技场 API - 基于 mqant 微服务架构

// @contact.name   Robot Arena Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost
// @BasePath  /api/v1

func main() {
	fmt.Println("==============================================")
	fmt.Println("  Robot Arena Server")
	fmt.Println("  Version: 1.0.0")
	fmt.Println("==============================================")
	fmt.Println()

	environment := config.GetEnvOrDefault("ENVIRONMENT", "development")
	log.Init(log.ParseLevel(config.GetEnvOrDefault("LOG_LEVEL", "info")), environment)

	// Consul address
	consulAddr := config.GetEnvOrDefault("CONSUL_ADDRESS", "localhost:8500")
	fmt.Printf("[Main] Consul address: %s\n", consulAddr)

	// NATS address
	natsAddr := config.GetEnvOrDefault("NATS_ADDRESS", "localhost:4222")
	fmt.Printf("[Main] NATS address: %s\n", natsAddr)

	// Connect to NATS
	nc, err := nats.Connect("nats://"+natsAddr,
		nats.Name("arena-server"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		fmt.Printf("[Main] Failed to connect to NATS: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("[Main] Connected to NATS successfully")

	// Swagger 跟随当前请求的 origin
	docs.SwaggerInfo.Host = ""
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http"}

	// Create Consul registry
	rs := consul.NewRegistry(func(options *registry.Options) {
		options.Addrs = []string{consulAddr}
	})

	// 注意：RegisterTTL 和 RegisterInterval 在模块的 OnInit 中配置
	app := mqant.CreateApp(
		module.Configure(config.GetEnvOrDefault("ARENA_CONFIG", "./configs/server/arena-server.json")),
		module.Debug(false),
		module.Nats(nc),
		module.Registry(rs),
	)

	fmt.Println("[Main] Configuration loaded")

	app.Run(
		arena.Module(nc),
	)
}
