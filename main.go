/**
 * TypeFlow 主入口文件
 *
 * 这是托盘应用的启动点，负责：
 * 1. 初始化日志和配置
 * 2. 创建并启动 App 实例
 * 3. 运行系统托盘菜单
 */

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/chenyang-zz/typeflow/internal/app"
	"github.com/chenyang-zz/typeflow/internal/infrastructure/config"
	"github.com/chenyang-zz/typeflow/internal/tray"
	"github.com/chenyang-zz/typeflow/internal/typing"
	"github.com/chenyang-zz/typeflow/pkg/logger"
)

func main() {
	if err := logger.InitLogger(); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}

	configManager, err := config.NewManager()
	if err != nil {
		logger.Fatal("加载配置失败", zap.Error(err))
	}

	typeflowApp, err := app.New(configManager)
	if err != nil {
		logger.Fatal("创建应用失败", zap.Error(err))
	}

	cfg := configManager.Get()
	trayMenu := tray.New(tray.Callbacks{
		OnPaste: func() {
			if err := typeflowApp.PasteClipboard(); err != nil {
				logger.Error("手动粘贴失败", zap.Error(err))
			}
		},
		OnCancel: typeflowApp.CancelTyping,
		OnSpeedChange: func(speed typing.Speed) {
			if err := typeflowApp.SetTypingSpeed(speed); err != nil {
				logger.Error("修改打字速度失败", zap.Error(err))
			}
		},
		OnMonitorToggle: func() bool {
			enabled := !typeflowApp.MonitorEnabled()
			if err := typeflowApp.SetMonitorEnabled(enabled); err != nil {
				logger.Error("切换剪贴板监控失败", zap.Error(err))
			}
			return typeflowApp.MonitorEnabled()
		},
		OnNotificationsToggle: func() bool {
			enabled := !typeflowApp.NotificationsEnabled()
			if err := typeflowApp.SetNotificationsEnabled(enabled); err != nil {
				logger.Error("切换桌面通知失败", zap.Error(err))
			}
			return typeflowApp.NotificationsEnabled()
		},
	}, tray.Options{
		Speed:                cfg.Typing.Speed,
		MonitorEnabled:       cfg.Monitor.Enabled,
		NotificationsEnabled: cfg.Notifications.Enabled,
	})

	// Ctrl+C 等信号也走托盘退出路径
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		trayMenu.Quit()
	}()

	// Shutdown 挂在托盘的退出回调上，菜单退出和信号退出
	// 都经过 systray.Quit 汇聚到这里，恰好执行一次
	trayMenu.Run(func() {
		if err := typeflowApp.Startup(); err != nil {
			logger.Error("启动应用失败", zap.Error(err))
			trayMenu.Quit()
		}
	}, typeflowApp.Shutdown)
}
