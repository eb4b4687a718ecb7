package logging

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the global logrus instance shared by the whole service.
var Logger = logrus.New()

var once sync.Once

// InitLogger configures the global logger. When LOG_FILE is set the output
// rotates through lumberjack; otherwise it goes to stdout. LOG_LEVEL
// selects the level (default info).
func InitLogger() {
	once.Do(func() {
		if file := os.Getenv("LOG_FILE"); file != "" {
			Logger.SetOutput(&lumberjack.Logger{
				Filename:   file,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			})
		} else {
			Logger.SetOutput(os.Stdout)
		}

		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

		level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
		if err != nil {
			level = logrus.InfoLevel
		}
		Logger.SetLevel(level)
	})
}
