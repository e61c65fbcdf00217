package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prismstudio/director-core/common/config"
)

const RequestIdKey = "X-Request-Id"

const (
	loggerDEBUG = "debug"
	loggerINFO  = "info"
	loggerWarn  = "warn"
	loggerError = "error"
)

// LogEntry is the JSON line shape written for every log record.
type LogEntry struct {
	Ts        string `json:"ts"`
	Level     string `json:"level"`
	RequestId string `json:"request_id,omitempty"`
	Msg       string `json:"msg"`
	Service   string `json:"service"`
	Instance  string `json:"instance"`
}

var LogDir = os.Getenv("LOG_DIR")

var setupLogLock sync.Mutex
var generalLogFile *os.File
var errorLogFile *os.File

func SetupLogger() {
	if LogDir == "" {
		return
	}
	ok := setupLogLock.TryLock()
	if !ok {
		log.Println("setup log is already working")
		return
	}
	defer setupLogLock.Unlock()

	dateStr := time.Now().Format("20060102")

	generalLogPath := filepath.Join(LogDir, fmt.Sprintf("director-%s.log", dateStr))
	fd, err := os.OpenFile(generalLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatal("failed to open general log file")
	}

	errorLogPath := filepath.Join(LogDir, fmt.Sprintf("director-error-%s.log", dateStr))
	errFd, err := os.OpenFile(errorLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatal("failed to open error log file")
	}

	if generalLogFile != nil {
		generalLogFile.Close()
	}
	if errorLogFile != nil {
		errorLogFile.Close()
	}
	generalLogFile = fd
	errorLogFile = errFd

	// INFO/WARN/DEBUG go to stdout + general log file, ERROR to stderr + error log file.
	gin.DefaultWriter = io.MultiWriter(os.Stdout, generalLogFile)
	gin.DefaultErrorWriter = io.MultiWriter(os.Stderr, errorLogFile)
}

func writeJSONLog(writer io.Writer, level, requestId, msg string) {
	entry := LogEntry{
		Ts:        time.Now().Format(time.RFC3339Nano),
		Level:     level,
		RequestId: requestId,
		Msg:       msg,
		Service:   config.ServiceName,
		Instance:  config.InstanceId,
	}
	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		_, _ = fmt.Fprintf(writer, `{"ts":"%s","level":"%s","msg":"json marshal error","service":"%s","instance":"%s"}`+"\n",
			entry.Ts, level, config.ServiceName, config.InstanceId)
		return
	}
	_, _ = writer.Write(append(jsonBytes, '\n'))
}

func requestIdFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(RequestIdKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func logHelper(ctx context.Context, level string, msg string) {
	writer := gin.DefaultWriter
	if level == loggerError {
		writer = gin.DefaultErrorWriter
	}
	writeJSONLog(writer, level, requestIdFromContext(ctx), msg)
}

func SysLog(s string) {
	writeJSONLog(gin.DefaultWriter, loggerINFO, "", s)
}

func SysError(s string) {
	writeJSONLog(gin.DefaultErrorWriter, loggerError, "", s)
}

func FatalLog(s string) {
	writeJSONLog(gin.DefaultErrorWriter, loggerError, "", s)
	os.Exit(1)
}

func Debug(ctx context.Context, msg string) {
	if config.DebugEnabled {
		logHelper(ctx, loggerDEBUG, msg)
	}
}

func Info(ctx context.Context, msg string) {
	logHelper(ctx, loggerINFO, msg)
}

func Warn(ctx context.Context, msg string) {
	logHelper(ctx, loggerWarn, msg)
}

func Error(ctx context.Context, msg string) {
	logHelper(ctx, loggerError, msg)
}

func Debugf(ctx context.Context, format string, a ...any) {
	Debug(ctx, fmt.Sprintf(format, a...))
}

func Infof(ctx context.Context, format string, a ...any) {
	Info(ctx, fmt.Sprintf(format, a...))
}

func Warnf(ctx context.Context, format string, a ...any) {
	Warn(ctx, fmt.Sprintf(format, a...))
}

func Errorf(ctx context.Context, format string, a ...any) {
	Error(ctx, fmt.Sprintf(format, a...))
}
