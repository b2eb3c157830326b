package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kardianos/service"
)

const serviceName = "IPv6Checker"

// program implements service.Interface
type program struct {
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	svcLogger service.Logger
}

func (p *program) Start(s service.Service) error {
	p.svcLogger, _ = s.Logger(nil)
	if p.svcLogger != nil {
		_ = p.svcLogger.Info("IPv6 Checker service starting")
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.done = make(chan struct{})

	go p.run()
	return nil
}

func (p *program) run() {
	defer close(p.done)

	if err := runServer(p.ctx); err != nil && p.svcLogger != nil {
		_ = p.svcLogger.Error("IPv6 Checker server error: ", err)
	}
}

func (p *program) Stop(s service.Service) error {
	if p.cancel != nil {
		p.cancel()
	}

	select {
	case <-p.done:
		if p.svcLogger != nil {
			_ = p.svcLogger.Info("IPv6 Checker service stopped")
		}
	case <-time.After(10 * time.Second):
		if p.svcLogger != nil {
			_ = p.svcLogger.Warning("IPv6 Checker service stopped with timeout")
		}
	}
	return nil
}

func serviceConfig() *service.Config {
	dir, _ := os.Getwd()
	if exe, err := os.Executable(); err == nil {
		dir = filepath.Dir(exe)
	}

	return &service.Config{
		Name:             serviceName,
		DisplayName:      "IPv6 Checker Service",
		Description:      "Reports the public IPv6 address of this host over HTTP.",
		WorkingDirectory: dir,
		Arguments:        []string{"run"},
		Option: service.KeyValue{
			// Windows
			"StartType":              "automatic",
			"OnFailure":              "restart",
			"OnFailureDelayDuration": "5s",

			// systemd
			"Restart":    "on-failure",
			"RestartSec": 5,

			// launchd
			"RunAtLoad": true,
			"KeepAlive": true,
		},
	}
}

func newService() (service.Service, error) {
	return service.New(&program{}, serviceConfig())
}

// runAsService runs under the service manager and returns the exit code.
func runAsService() int {
	s, err := newService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create service: %v\n", err)
		return 1
	}
	if err := s.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Service run failed: %v\n", err)
		return 1
	}
	return 0
}

// handleServiceCommand runs one service subcommand and returns the exit code.
func handleServiceCommand(cmd string) int {
	if cmd == "help" {
		printHelp()
		return 0
	}

	s, err := newService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create service: %v\n", err)
		return 1
	}

	switch cmd {
	case "install":
		if err := s.Install(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to install service: %v\n", err)
			return 1
		}
		cfg := serviceConfig()
		fmt.Printf("Service %q installed\n", cfg.Name)
		fmt.Printf("  Display Name: %s\n", cfg.DisplayName)
		fmt.Printf("  Directory:    %s\n", cfg.WorkingDirectory)
		fmt.Println()
		fmt.Println("Place config.json in the directory above, then run 'start'.")

	case "uninstall":
		if err := s.Uninstall(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to uninstall service: %v\n", err)
			return 1
		}
		fmt.Printf("Service %q uninstalled\n", serviceName)

	case "start":
		fmt.Printf("Starting service %q...\n", serviceName)
		if err := s.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start service: %v\n", err)
			return 1
		}
		fmt.Println("Service started")

	case "stop":
		fmt.Printf("Stopping service %q...\n", serviceName)
		if err := s.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to stop service: %v\n", err)
			return 1
		}
		fmt.Println("Service stopped")

	case "restart":
		fmt.Printf("Restarting service %q...\n", serviceName)
		if err := s.Stop(); err != nil {
			fmt.Printf("Warning: stop service: %v\n", err)
		}
		time.Sleep(2 * time.Second)
		if err := s.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start service: %v\n", err)
			return 1
		}
		fmt.Println("Service restarted")

	case "status":
		status, err := s.Status()
		fmt.Printf("Service Name: %s\n", serviceName)
		if err != nil && status == service.StatusUnknown {
			fmt.Printf("Service %q is not installed, use 'install' first\n", serviceName)
			return 0
		}
		fmt.Printf("Status:       %s\n", statusText(status))

	case "run":
		return runAsService()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprintln(os.Stderr, "Use 'help' to see available commands")
		return 2
	}
	return 0
}

func statusText(status service.Status) string {
	switch status {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

func printHelp() {
	name := filepath.Base(os.Args[0])
	fmt.Println("IPv6 Checker Service")
	fmt.Println()
	fmt.Printf("Usage: %s [flags] [command]\n", name)
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  install    Install as a system service (requires administrator/root)")
	fmt.Println("  uninstall  Remove the system service")
	fmt.Println("  start      Start the service")
	fmt.Println("  stop       Stop the service")
	fmt.Println("  restart    Restart the service")
	fmt.Println("  status     Show service status")
	fmt.Println("  run        Run under the service manager")
	fmt.Println("  help       Show this help")
	fmt.Println()
	fmt.Println("Without a command the server runs in the foreground.")
	fmt.Printf("Run '%s -h' to list flags.\n", name)
}
