package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	logger "github.com/sirupsen/logrus"
)

// InitLogger applies the logging section of the config to the global logrus logger.
func InitLogger() logger.FieldLogger {
	if Config.Logging.OutputStderr {
		logger.SetOutput(os.Stderr)
	}
	if Config.Logging.OutputLevel != "" {
		level, err := logger.ParseLevel(Config.Logging.OutputLevel)
		if err != nil {
			logger.Errorf("invalid log level %v, falling back to info", Config.Logging.OutputLevel)
			level = logger.InfoLevel
		}
		logger.SetLevel(level)
	}
	if Config.Logging.FilePath != "" {
		f, err := os.OpenFile(Config.Logging.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Errorf("could not open log file %v: %v", Config.Logging.FilePath, err)
		} else {
			logger.SetOutput(f)
		}
	}

	return logger.StandardLogger()
}

// LogFatal logs a fatal error with callstack info that skips callerSkip many levels with arbitrarily many additional infos.
// callerSkip equal to 0 gives you info directly where LogFatal is called.
func LogFatal(err error, errorMsg interface{}, callerSkip int, additionalInfos ...map[string]interface{}) {
	logErrorInfo(err, callerSkip, additionalInfos...).Fatal(errorMsg)
}

// LogError logs an error with callstack info that skips callerSkip many levels with arbitrarily many additional infos.
// callerSkip equal to 0 gives you info directly where LogError is called.
func LogError(err error, errorMsg interface{}, callerSkip int, additionalInfos ...map[string]interface{}) {
	logErrorInfo(err, callerSkip, additionalInfos...).Error(errorMsg)
}

func logErrorInfo(err error, callerSkip int, additionalInfos ...map[string]interface{}) *logger.Entry {
	logFields := logger.NewEntry(logger.StandardLogger())

	pc, fullFilePath, line, ok := runtime.Caller(callerSkip + 2)
	if ok {
		logFields = logFields.WithFields(logger.Fields{
			"_file":     filepath.Base(fullFilePath),
			"_function": runtime.FuncForPC(pc).Name(),
			"_line":     line,
		})
	} else {
		logFields = logFields.WithField("runtime", "Callstack cannot be read")
	}

	if err != nil {
		logFields = logFields.WithField("errType", fmt.Sprintf("%T", err)).WithError(err)
	}

	for _, infoMap := range additionalInfos {
		for name, info := range infoMap {
			logFields = logFields.WithField(name, info)
		}
	}

	return logFields
}
