package configwatcher

import (
	"coinbrief_backend/internal/config"
	"coinbrief_backend/pkg/logger"
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const configFileName = "config.yaml"

type ConfigReloader func(cfg *config.Config)

// Watch 监听配置目录，config.yaml 变更后防抖重新加载，直到 ctx 结束
func Watch(ctx context.Context, configDir string, debounce time.Duration, reloader ConfigReloader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	absDir, err := filepath.Abs(configDir)
	if err != nil {
		watcher.Close()
		return err
	}

	// 监听目录而不是文件，编辑器用 rename 方式保存时文件句柄会变
	if err := watcher.Add(absDir); err != nil {
		watcher.Close()
		return err
	}

	go run(ctx, watcher, absDir, debounce, reloader)
	return nil
}

func run(ctx context.Context, watcher *fsnotify.Watcher, dir string, debounce time.Duration, reloader ConfigReloader) {
	defer watcher.Close()

	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFileName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// 防抖处理，Reset 后不会再收到旧的触发
			timer.Reset(debounce)
		case <-timer.C:
			newCfg, err := config.LoadConfig(dir)
			if err != nil {
				logger.Log.Error("Failed to reload config", zap.Error(err))
				continue
			}
			logger.Log.Info("Config reloaded", zap.String("dir", dir))
			reloader(newCfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Error("Config watcher error", zap.Error(err))
		}
	}
}
