// Package log provides the structured logging facade used across tacet.
//
// Messages go to a daily file under the logs directory when logs.write is
// set, and to stderr otherwise, so the long-running modes stay observable
// from the terminal they were started in.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tacet-cli/tacet/filesystem"
	"github.com/tacet-cli/tacet/key"
	"github.com/tacet-cli/tacet/where"
)

// Fields is an alias kept so callers do not import logrus directly.
type Fields = logrus.Fields

// Setup configures output, formatting and severity from the global configuration.
func Setup() error {
	out, err := output()
	if err != nil {
		return err
	}
	logrus.SetOutput(out)

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	return nil
}

func output() (io.Writer, error) {
	if !viper.GetBool(key.LogsWrite) {
		return os.Stderr, nil
	}

	dir := where.Logs()
	if dir == "" {
		return nil, errors.New("log directory path is empty")
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
	if exists := lo.Must(filesystem.API().Exists(path)); !exists {
		lo.Must(filesystem.API().Create(path))
	}

	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// With returns an entry carrying the given fields, for component-scoped logging.
func With(fields Fields) *logrus.Entry {
	return logrus.WithFields(fields)
}

// Component is shorthand for With(Fields{"component": name}).
func Component(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}

func Error(args ...interface{})                 { logrus.Error(args...) }
func Errorf(format string, args ...interface{}) { logrus.Errorf(format, args...) }
func Warn(args ...interface{})                  { logrus.Warn(args...) }
func Warnf(format string, args ...interface{})  { logrus.Warnf(format, args...) }
func Info(args ...interface{})                  { logrus.Info(args...) }
func Infof(format string, args ...interface{})  { logrus.Infof(format, args...) }
func Debug(args ...interface{})                 { logrus.Debug(args...) }
func Debugf(format string, args ...interface{}) { logrus.Debugf(format, args...) }
