package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

const modulePath = "github.com/loganlanou/profiledesk"

func init() {
	handler, err := newLogHandler(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE"))
	if err != nil {
		panic(err)
	}
	slog.SetDefault(slog.New(handler))
}

// newLogHandler returns a colored tint handler with source locations for
// debug runs and a JSON handler otherwise. JSON logs are mirrored to a
// rotated file when file is set.
func newLogHandler(out io.Writer, level, file string) (slog.Handler, error) {
	logLevel := slog.LevelInfo
	if level != "" {
		if err := logLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level: %s", level)
		}
	}

	if logLevel == slog.LevelDebug {
		return tint.NewHandler(out, &tint.Options{
			Level:       slog.LevelDebug,
			TimeFormat:  time.TimeOnly,
			ReplaceAttr: debugAttr,
			AddSource:   true,
		}), nil
	}

	if file != "" {
		out = io.MultiWriter(out, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: logLevel}), nil
}

func debugAttr(_ []string, a slog.Attr) slog.Attr {
	if source, ok := a.Value.Any().(*slog.Source); ok && a.Key == slog.SourceKey {
		source.File = relativeSource(source.File)
	}
	if err, ok := a.Value.Any().(error); ok {
		aErr := tint.Err(err)
		aErr.Key = a.Key
		return aErr
	}
	return a
}

// relativeSource shortens a source path to its location inside the repo,
// for both -trimpath module paths and checkout paths
func relativeSource(file string) string {
	if _, rest, ok := strings.Cut(file, modulePath+"/"); ok {
		return rest
	}
	if i := strings.LastIndex(file, "/profiledesk/"); i != -1 {
		return file[i+len("/profiledesk/"):]
	}
	return file
}
