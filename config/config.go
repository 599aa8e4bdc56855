// Package config reads the blog's runtime configuration from the environment.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

const defaultPort = 5000

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("BLOG_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("BLOG_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("BLOG_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "db"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("BLOG_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "log"
	}
	return logFolderPath
}

// GetUploadFolder returns the directory uploaded post images are written to.
func GetUploadFolder() string {
	uploadFolder := os.Getenv("BLOG_UPLOAD_FOLDER")
	if uploadFolder == "" {
		uploadFolder = "static/imgs"
	}
	return uploadFolder
}

func GetListen() string {
	return os.Getenv("BLOG_LISTEN")
}

func GetPort() int {
	port, err := strconv.Atoi(os.Getenv("BLOG_PORT"))
	if err != nil || port <= 0 || port > 65535 {
		return defaultPort
	}
	return port
}
