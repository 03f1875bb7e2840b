package inits

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Logger(debugMode bool) (l *zap.Logger, err error) {
	if debugMode {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction(zap.AddStacktrace(zapcore.ErrorLevel))
	}
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	return l.Named("hp"), nil
}
