// Package main is the entry point of the miniblog server and its
// maintenance commands.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/miniblog/miniblog/config"
	"github.com/miniblog/miniblog/database"
	"github.com/miniblog/miniblog/logger"
	"github.com/miniblog/miniblog/web"
	"github.com/miniblog/miniblog/web/service"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func initLogger() {
	level, err := logger.ParseLevel(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level)
}

func initDB() error {
	return database.InitDB(config.GetDatabaseConfig())
}

func runWebServer() {
	log.Printf("Starting %v %v", config.GetName(), config.GetVersion())

	initLogger()
	defer logger.CloseLogger()

	if err := initDB(); err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.Warning("close db err:", err)
		}
	}()

	server := web.NewServer()
	if err := server.Start(); err != nil {
		logger.Error("Error starting web server:", err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("Received SIGHUP signal. Restarting server...")
			if err := server.Stop(); err != nil {
				logger.Warning("Error stopping web server:", err)
			}
			server = web.NewServer()
			if err := server.Start(); err != nil {
				logger.Error("Error restarting web server:", err)
				return
			}
			logger.Info("Web server restarted successfully.")
		default:
			logger.Notice("Shutting down server...")
			if err := server.Stop(); err != nil {
				logger.Warning("Error stopping web server:", err)
			}
			return
		}
	}
}

func migrateDb() {
	if err := initDB(); err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB()
	fmt.Println("Migration done!")
}

func resetSetting() {
	if err := initDB(); err != nil {
		fmt.Println("Failed to initialize database:", err)
		return
	}
	defer database.CloseDB()

	settingService := service.SettingService{}
	if err := settingService.ResetSettings(); err != nil {
		fmt.Println("Failed to reset settings:", err)
	} else {
		fmt.Println("Settings successfully reset.")
	}
}

func showSetting() {
	if err := initDB(); err != nil {
		fmt.Println("Failed to initialize database:", err)
		return
	}
	defer database.CloseDB()

	settingService := service.SettingService{}
	maxAge, err := settingService.GetSessionMaxAge()
	if err != nil {
		fmt.Println("get session max age failed, error info:", err)
	}
	userService := service.UserService{}
	users, err := userService.GetUsers()
	if err != nil {
		fmt.Println("get users failed, error info:", err)
	}

	fmt.Println("current settings as follows:")
	fmt.Println("database:", config.GetDatabaseConfig().Type)
	fmt.Println("upload folder:", config.GetUploadFolder())
	fmt.Println("port:", config.GetPort())
	fmt.Println("sessionMaxAge:", maxAge)
	fmt.Println("registered users:", len(users))
}

func updateSetting(sessionMaxAge int) {
	if err := initDB(); err != nil {
		fmt.Println("Database initialization failed:", err)
		return
	}
	defer database.CloseDB()

	settingService := service.SettingService{}
	if sessionMaxAge >= 0 {
		if err := settingService.SetSessionMaxAge(sessionMaxAge); err != nil {
			fmt.Println("Failed to set session max age:", err)
		} else {
			fmt.Printf("Session max age set to %v minutes\n", sessionMaxAge)
		}
	}
}

func main() {
	// a missing .env is fine, the environment is used as is
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:     config.GetName(),
		Version: config.GetVersion(),
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	settingCmd := &cobra.Command{
		Use:   "setting",
		Short: "Set settings",
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset all settings",
		Run: func(cmd *cobra.Command, args []string) {
			resetSetting()
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update settings",
		Run: func(cmd *cobra.Command, args []string) {
			maxAge, _ := cmd.Flags().GetInt("sessionMaxAge")
			updateSetting(maxAge)
		},
	}
	updateCmd.Flags().Int("sessionMaxAge", -1, "set session lifetime in minutes, 0 keeps it until the browser closes")

	settingCmd.AddCommand(resetCmd, showCmd, updateCmd)
	rootCmd.AddCommand(runCmd, migrateCmd, settingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
