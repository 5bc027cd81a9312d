// Terminal pomodoro client for the FocusTrack API: log in, pick a task,
// run focus/break countdowns, and let completed sessions be recorded on
// the server.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/deepthireddy246/focustrack/internal/apiclient"
	"github.com/deepthireddy246/focustrack/internal/dto"
	"github.com/deepthireddy246/focustrack/internal/timer"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("FOCUSTRACK_ADDR", "http://localhost:8080"), "API base URL")
	username := flag.String("user", "", "username (prompted if empty)")
	register := flag.Bool("register", false, "register a new account instead of logging in")
	flag.Parse()

	client := apiclient.New(*addr)
	user, err := authenticate(client, *username, *register)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}
	fmt.Printf("Signed in as %s\n\n", user.Username)

	tasks, err := client.ListTasks(context.Background())
	if err != nil {
		log.Fatalf("list tasks: %v", err)
	}
	printTasks(tasks)
	fmt.Println("\nCommands: start, pause, reset, skip, select <id>, tasks, stats, quit")

	run(client, tasks)
}

func authenticate(client *apiclient.Client, username string, register bool) (dto.UserResponse, error) {
	reader := bufio.NewReader(os.Stdin)
	if username == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return dto.UserResponse{}, err
		}
		username = strings.TrimSpace(line)
	}

	fmt.Print("Password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return dto.UserResponse{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if register {
		fmt.Print("Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return dto.UserResponse{}, err
		}
		resp, err := client.Register(ctx, username, strings.TrimSpace(line), string(pw))
		return resp.User, err
	}
	resp, err := client.Login(ctx, username, string(pw))
	return resp.User, err
}

// run owns the single event loop: the ticker, user commands and recording
// results all land here, so machine transitions never overlap.
func run(client *apiclient.Client, tasks []dto.TaskResponse) {
	machine := timer.New(client)

	cmds := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			cmds <- strings.TrimSpace(scanner.Text())
		}
		close(cmds)
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if machine.State() != timer.StateRunning {
				continue
			}
			machine.Tick()
			printCountdown(machine)

		case res := <-machine.Results():
			if res.Err != nil {
				fmt.Printf("\nfailed to record %s session: %v\n", res.Phase, res.Err)
				continue
			}
			fmt.Printf("\n%s session recorded (%d completed this run)\n", res.Phase, machine.Completed())
			if fresh, err := client.ListTasks(context.Background()); err == nil {
				tasks = fresh
			}

		case line, ok := <-cmds:
			if !ok {
				return
			}
			if line == "quit" || line == "exit" {
				return
			}
			tasks = handleCommand(machine, client, tasks, line)
		}
	}
}

func handleCommand(machine *timer.Machine, client *apiclient.Client, tasks []dto.TaskResponse, line string) []dto.TaskResponse {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return tasks
	}
	switch fields[0] {
	case "start":
		if err := machine.Start(); err != nil {
			fmt.Println(err)
			return tasks
		}
		fmt.Printf("%s started: %s\n", phaseLabel(machine.Phase()), formatRemaining(machine.Remaining()))
	case "pause":
		machine.Pause()
		fmt.Printf("paused at %s\n", formatRemaining(machine.Remaining()))
	case "reset":
		machine.Reset()
		fmt.Printf("reset: %s %s\n", phaseLabel(machine.Phase()), formatRemaining(machine.Remaining()))
	case "skip":
		machine.Skip()
		fmt.Printf("skipped to %s: %s\n", phaseLabel(machine.Phase()), formatRemaining(machine.Remaining()))
	case "select":
		if len(fields) != 2 {
			fmt.Println("usage: select <task id>")
			return tasks
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || id <= 0 {
			fmt.Println("invalid task id")
			return tasks
		}
		if err := machine.SelectTask(id); err != nil {
			fmt.Println(err)
			return tasks
		}
		fmt.Printf("selected task %d\n", id)
	case "tasks":
		fresh, err := client.ListTasks(context.Background())
		if err != nil {
			fmt.Printf("list tasks: %v\n", err)
			return tasks
		}
		printTasks(fresh)
		return fresh
	case "stats":
		stats, err := client.Stats(context.Background())
		if err != nil {
			fmt.Printf("stats: %v\n", err)
			return tasks
		}
		printStats(stats)
	default:
		fmt.Println("commands: start, pause, reset, skip, select <id>, tasks, stats, quit")
	}
	return tasks
}

func printCountdown(m *timer.Machine) {
	if m.State() == timer.StateRunning {
		fmt.Printf("\r%s %s  ", phaseLabel(m.Phase()), formatRemaining(m.Remaining()))
		return
	}
	// Just hit zero: the machine flipped phase and stopped.
	fmt.Printf("\n%s is up next: %s (type start)\n", phaseLabel(m.Phase()), formatRemaining(m.Remaining()))
}

func printTasks(tasks []dto.TaskResponse) {
	if len(tasks) == 0 {
		fmt.Println("No tasks yet.")
		return
	}
	fmt.Println("Tasks:")
	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Printf("  [%s] %d: %s (%d work sessions)\n", mark, t.ID, t.Title, t.SessionsCount)
	}
}

func printStats(s dto.StatsResponse) {
	fmt.Printf("Stats for %s\n", s.Date)
	fmt.Printf("  work:  %d sessions, %d min\n", s.TotalWorkSessions, s.TotalWorkTime)
	fmt.Printf("  break: %d sessions, %d min\n", s.TotalBreakSessions, s.TotalBreakTime)
	fmt.Printf("  focus efficiency: %d%%\n", s.FocusEfficiency)
	for _, t := range s.TopTasks {
		fmt.Printf("  top: %s (%d)\n", t.Title, t.Sessions)
	}
}

func phaseLabel(p timer.Phase) string {
	if p == timer.PhaseBreak {
		return "Break"
	}
	return "Focus"
}

func formatRemaining(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
