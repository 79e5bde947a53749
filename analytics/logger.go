package analytics

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogFileDataCollector struct {
	fileName string
	logger   *zap.Logger
}

func NewLogFileDataCollector(fileName string) (*LogFileDataCollector, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.StacktraceKey = ""
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
	logFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(fileEncoder, zapcore.AddSync(logFile), zapcore.InfoLevel)
	return &LogFileDataCollector{
		fileName: fileName,
		logger:   zap.New(core),
	}, nil
}

func transitionFields(tr Transition) []zap.Field {
	return []zap.Field{
		zap.String("master", tr.MasterKey),
		zap.String("user", tr.ActUser),
		zap.String("from", tr.From),
		zap.String("to", tr.To),
		zap.Bool("backward", tr.Backward),
		zap.Bool("delete", tr.Delete),
	}
}

func (lc *LogFileDataCollector) RecordTransitionSuccess(tr Transition) {
	lc.logger.Info("success", transitionFields(tr)...)
}

func (lc *LogFileDataCollector) RecordTransitionFailure(tr Transition, reason string) {
	lc.logger.Info("failure", append(transitionFields(tr), zap.String("reason", reason))...)
}

func (lc *LogFileDataCollector) Sync() error {
	return lc.logger.Sync()
}
