package common

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

func init() {
	logger := logrus.StandardLogger()
	logger.Out = os.Stdout
	logger.Formatter = &logrus.TextFormatter{}
	logger.AddHook(&DefaultFieldsHook{})
}

// ConfigureLogging switches the standard logger to the given level and format.
// Unknown levels keep the current one.
func ConfigureLogging(level, format string) {
	logger := logrus.StandardLogger()
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	} else if level != "" {
		logrus.Warnf("unknown log level '%s', keep %s", level, logger.GetLevel())
	}
	if strings.EqualFold(format, "json") {
		logger.Formatter = &logrus.JSONFormatter{}
	}
}

type DefaultFieldsHook struct {
}

func (hook *DefaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *DefaultFieldsHook) Fire(e *logrus.Entry) error {
	e.Data["serviceName"] = GetServiceName()
	e.Data["serviceInstance"] = GetServiceInstance()
	return nil
}
