// @title CoinBrief API
// @version 1.0
// @description 加密资讯简报与答题奖励服务。
// @termsOfService http://swagger.io/terms/

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api

package main

import (
	"coinbrief_backend/internal/app"
	"coinbrief_backend/internal/config"
	"coinbrief_backend/pkg/logger"
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库建表，完成后退出")
	flag.Parse()

	// .env 不存在时忽略
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.MigrateOnly = *migrateOnly

	application, err := app.NewApp(cfg, *configDir)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer logger.Log.Sync()

	if *migrateOnly {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := application.Migrate(ctx); err != nil {
			logger.Log.Fatal("Migration failed", zap.Error(err))
		}
		logger.Log.Info("数据库建表完成，退出程序")
		application.Close()
		return
	}

	application.Run()
}
