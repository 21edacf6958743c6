package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/kmed-health/kmed-backend/internal/config"
	"github.com/kmed-health/kmed-backend/internal/database"
	"github.com/kmed-health/kmed-backend/internal/logging"
	"github.com/kmed-health/kmed-backend/internal/roles"
	"github.com/kmed-health/kmed-backend/internal/services"
)

func main() {
	logging.Setup()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "setup":
		runSetup(args)
		return
	case "create-tables", "migrate-google", "list", "upgrade", "bulk-upgrade", "stats":
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(2)
	}

	cfg := config.Load()
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	admin := services.NewAdminService(database.DB)
	in := bufio.NewScanner(os.Stdin)

	var err error
	switch cmd {
	case "create-tables":
		err = database.CreateTables(database.DB)
	case "migrate-google":
		err = database.MigrateGoogleAuth(database.DB)
	case "list":
		err = runList(admin)
	case "upgrade":
		err = runUpgrade(admin, in, args)
	case "bulk-upgrade":
		err = runBulkUpgrade(admin, in, args)
	case "stats":
		err = runStats(admin)
	}

	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole):
			fmt.Fprintf(os.Stderr, "%v\nvalid roles: %s\n", err, roleNames())
		case errors.Is(err, services.ErrUserNotFound):
			fmt.Fprintln(os.Stderr, "user not found (only google-authenticated accounts are eligible)")
		case errors.Is(err, services.ErrBulkToPatient):
			fmt.Fprintln(os.Stderr, "bulk change to patient is not allowed")
		default:
			slog.Error("command failed", "command", cmd, "error", err)
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`kmed-admin — KMED role administration and schema tooling

Usage:
  kmed-admin create-tables            bootstrap the database schema
  kmed-admin migrate-google           add Google OAuth columns and mapping table
  kmed-admin setup [path]             write the environment configuration file (default .env)
  kmed-admin list                     list google-authenticated users
  kmed-admin upgrade [email] [role]   change one user's role
  kmed-admin bulk-upgrade [role]      change every google user's role
  kmed-admin stats                    role distribution of google users

Roles:
`)
	for _, r := range roles.All() {
		fmt.Printf("  %-13s %s\n", r, roles.Describe(r))
	}
}

func roleNames() string {
	names := make([]string, 0, len(roles.All()))
	for _, r := range roles.All() {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

// prompt returns the next positional argument when present, otherwise reads
// one line interactively.
func prompt(in *bufio.Scanner, args []string, idx int, label string) string {
	if idx < len(args) {
		return strings.TrimSpace(args[idx])
	}
	fmt.Printf("%s: ", label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

func runList(admin *services.AdminService) error {
	users, err := admin.ListGoogleUsers()
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("no google-authenticated users")
		return nil
	}

	fmt.Printf("%d google-authenticated user(s):\n\n", len(users))
	for _, u := range users {
		googleID := "-"
		if u.MappingGoogleID != nil {
			googleID = *u.MappingGoogleID
		} else if u.GoogleID != nil {
			googleID = *u.GoogleID
		}
		fmt.Printf("%s %s <%s>\n", u.FirstName, u.LastName, u.Email)
		fmt.Printf("  username:  %s\n", u.Username)
		fmt.Printf("  role:      %s (%s)\n", u.Role, roles.Describe(roles.Role(u.Role)))
		fmt.Printf("  google id: %s\n", googleID)
		fmt.Printf("  created:   %s\n\n", u.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runUpgrade(admin *services.AdminService, in *bufio.Scanner, args []string) error {
	email := prompt(in, args, 0, "email")
	role := prompt(in, args, 1, "new role ("+roleNames()+")")

	res, err := admin.UpgradeRole(email, role)
	if err != nil {
		return err
	}

	fmt.Printf("role updated: %s %s → %s\n", res.User.Email, res.OldRole, res.User.Role)
	fmt.Printf("  id:       %s\n", res.User.ID)
	fmt.Printf("  username: %s\n", res.User.Username)
	fmt.Printf("  role:     %s (%s)\n", res.User.Role, roles.Describe(roles.Role(res.User.Role)))
	return nil
}

func runBulkUpgrade(admin *services.AdminService, in *bufio.Scanner, args []string) error {
	role := prompt(in, args, 0, "new role for ALL google users ("+roleNames()+")")

	count, err := admin.BulkUpgradeRole(role)
	if err != nil {
		return err
	}
	fmt.Printf("%d user(s) changed to %s\n", count, role)
	return nil
}

func runStats(admin *services.AdminService) error {
	stats, total, err := admin.RoleStats()
	if err != nil {
		return err
	}

	fmt.Printf("google-authenticated users: %d\n", total)
	for _, st := range stats {
		fmt.Printf("  %-13s %5d  %5.1f%%\n", st.Role, st.Count, st.Percentage)
	}
	return nil
}

// runSetup writes the environment configuration file; it never needs a
// database connection.
func runSetup(args []string) {
	path := ".env"
	if len(args) > 0 {
		path = args[0]
	}

	cfg := config.Load()
	if err := cfg.WriteEnvFile(path); err != nil {
		slog.Error("setup failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("configuration written to %s\n", path)
}
