package utils

import (
	"log"

	"go.uber.org/zap"
)

// InitLogger 初始化全局日志（zap），之后统一用 zap.S() 打日志
func InitLogger(debug bool) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	zap.ReplaceGlobals(logger)
}
