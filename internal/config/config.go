// Package config is responsible for setting the program config from
// the config file and command-line arguments
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"
	"gopkg.in/natefinch/lumberjack.v2"
)

const Version = "v0.3.1"

const (
	defaultFocusMinutes = 20

	// MinFocusMinutes and MaxFocusMinutes bound a focus duration.
	MinFocusMinutes = 1
	MaxFocusMinutes = 999
)

// Config represents the program configuration derived from the config file
// and command-line arguments.
type Config struct {
	PathToConfig    string `json:"path_to_config"`
	PathToDB        string `json:"path_to_db"`
	PathToKV        string `json:"path_to_kv"`
	CompletionSound string `json:"completion_sound"`
	SessionCmd      string `json:"session_cmd"`
	FocusMinutes    int    `json:"focus_mins"`
	Notify          bool   `json:"notify"`
	TwentyFourHour  bool   `json:"twenty_four_hour_clock"`
	DarkTheme       bool   `json:"dark_theme"`
}

var (
	appDir         = "taskfocus"
	configFileName = "config.yml"
	dbFileName     = "taskfocus.db"
	kvDirName      = "state"
	logFileName    = "taskfocus.log"

	configFilePath string
	dbFilePath     string
	kvDirPath      string
	logFilePath    string
)

var once sync.Once

func Dir() string {
	return appDir
}

func DBFilePath() string {
	return dbFilePath
}

func KVDirPath() string {
	return kvDirPath
}

func LogFilePath() string {
	return logFilePath
}

func ConfigFilePath() string {
	return configFilePath
}

// InitializePaths resolves the config, database, state, and log locations
// from XDG directories. A TASKFOCUS_ENV value isolates development state
// from real data.
func InitializePaths() {
	env := strings.TrimSpace(os.Getenv("TASKFOCUS_ENV"))
	if env != "" {
		configFileName = fmt.Sprintf("config_%s.yml", env)
		dbFileName = fmt.Sprintf("taskfocus_%s.db", env)
		kvDirName = fmt.Sprintf("state_%s", env)
		logFileName = fmt.Sprintf("taskfocus_%s.log", env)
	}

	var err error

	relPath := filepath.Join(appDir, configFileName)

	configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dataDir, err := xdg.DataFile(appDir)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dbFilePath = filepath.Join(dataDir, dbFileName)

	kvDirPath = filepath.Join(dataDir, kvDirName)

	logFilePath = filepath.Join(dataDir, "log", logFileName)
}

// InitLog routes slog output to a size-rotated log file.
func InitLog() {
	l := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(l, nil)))
}

// Get loads the program configuration, creating the config file with
// defaults on first run.
func Get() *Config {
	once.Do(func() {
		cfg = &Config{
			PathToConfig: configFilePath,
			PathToDB:     dbFilePath,
			PathToKV:     kvDirPath,
		}

		err := loadViperConfig(cfg)
		if err != nil {
			pterm.Error.Printfln("%v", errInitFailed.Wrap(err))
			os.Exit(1)
		}
	})

	return cfg
}

var cfg *Config
