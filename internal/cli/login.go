// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// login.go - Account commands: login, register, logout.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jeranaias/driftline/internal/api"
	"github.com/jeranaias/driftline/internal/auth"
	"github.com/jeranaias/driftline/internal/config"
	"github.com/jeranaias/driftline/internal/secret"
)

// =============================================================================
// PROMPTS
// =============================================================================

// promptLine reads one visible line from stdin.
func promptLine(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echoing it. Requires a TTY.
func promptPassword(label string) (string, error) {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	pw := string(raw)
	secret.ZeroBytes(raw)
	return pw, nil
}

// =============================================================================
// LOGIN
// =============================================================================

// HandleLogin signs in and stores the session token encrypted in the
// config file.
func HandleLogin(args Args) {
	if !IsTTY() {
		fatalf("login requires an interactive terminal")
	}

	cfg, err := LoadConfig(args)
	if err != nil {
		fatalf("%v", err)
	}
	client, err := BuildClient(cfg)
	if err != nil {
		fatalf("%v", err)
	}

	username := strings.TrimSpace(args.Query)
	if username == "" {
		username, err = promptLine("Username: ")
		if err != nil {
			fatalf("read username: %v", err)
		}
	}
	if result := auth.ValidateUsername(username); !result.Valid {
		fatalf("invalid username: %s", result.Error)
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		fatalf("read password: %v", err)
	}

	ctx := context.Background()
	resp, err := client.Login(ctx, api.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		fatalf("login failed: %v", err)
	}

	// Two-factor accounts answer with an empty token first.
	if resp.TOTPRequired {
		code, err := promptLine("Authenticator code: ")
		if err != nil {
			fatalf("read code: %v", err)
		}
		resp, err = client.Login(ctx, api.LoginRequest{
			Username: username,
			Password: password,
			TOTPCode: code,
		})
		if err != nil {
			fatalf("login failed: %v", err)
		}
	}

	if err := storeSession(cfg, username, resp.Token); err != nil {
		fatalf("%v", err)
	}
	fmt.Println(okStyle.Render("Logged in as " + username))
}

// storeSession encrypts the token and persists it with the username.
func storeSession(cfg *config.Config, username, token string) error {
	secrets, err := openSecrets()
	if err != nil {
		return fmt.Errorf("open secret store: %w", err)
	}
	encrypted, err := secrets.Encrypt(token)
	if err != nil {
		return fmt.Errorf("encrypt token: %w", err)
	}
	cfg.Auth.Username = username
	cfg.Auth.Token = encrypted
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// =============================================================================
// REGISTER
// =============================================================================

// HandleRegister creates a new account, checking the username and
// password locally before asking the server.
func HandleRegister(args Args) {
	if !IsTTY() {
		fatalf("register requires an interactive terminal")
	}

	cfg, err := LoadConfig(args)
	if err != nil {
		fatalf("%v", err)
	}
	client, err := BuildClient(cfg)
	if err != nil {
		fatalf("%v", err)
	}
	ctx := context.Background()

	username := strings.TrimSpace(args.Query)
	if username == "" {
		username, err = promptLine("Username: ")
		if err != nil {
			fatalf("read username: %v", err)
		}
	}
	if result := auth.ValidateUsername(username); !result.Valid {
		fatalf("invalid username: %s", result.Error)
	}

	avail, err := client.CheckUsername(ctx, username)
	if err != nil {
		fmt.Fprintln(os.Stderr, warningStyle.Render("could not check availability: "+err.Error()))
	} else if !avail.Available {
		fmt.Println(errorStyle.Render(avail.Message))
		if len(avail.Suggestions) > 0 {
			fmt.Println(mutedStyle.Render("available: " + strings.Join(avail.Suggestions, ", ")))
		}
		os.Exit(1)
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		fatalf("read password: %v", err)
	}
	check := auth.ValidatePassword(password)
	if !check.Valid {
		fmt.Println(errorStyle.Render("password does not meet requirements:"))
		for _, issue := range check.Issues {
			fmt.Println("  - " + issue)
		}
		os.Exit(1)
	}
	fmt.Printf("%s %s (%d/100)\n",
		mutedStyle.Render("strength:"), strengthLabel(check.Level), check.Score)
	for _, tip := range check.Feedback {
		fmt.Println(mutedStyle.Render("  tip: " + tip))
	}

	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		fatalf("read password: %v", err)
	}
	if confirm != password {
		fatalf("passwords do not match")
	}

	resp, err := client.Register(ctx, api.RegisterRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		fatalf("registration failed: %v", err)
	}

	if err := storeSession(cfg, username, resp.Token); err != nil {
		fatalf("%v", err)
	}
	fmt.Println(okStyle.Render("Account created. Logged in as " + username))
}

// strengthLabel colors a strength level for display.
func strengthLabel(level auth.StrengthLevel) string {
	switch level {
	case auth.LevelStrong:
		return okStyle.Render(string(level))
	case auth.LevelGood:
		return okStyle.Render(string(level))
	case auth.LevelFair:
		return warningStyle.Render(string(level))
	default:
		return errorStyle.Render(string(level))
	}
}

// =============================================================================
// LOGOUT
// =============================================================================

// HandleLogout invalidates the session server-side (best effort) and
// clears the stored token.
func HandleLogout(args Args) {
	cfg, err := LoadConfig(args)
	if err != nil {
		fatalf("%v", err)
	}

	if cfg.Auth.Token == "" {
		fmt.Println(mutedStyle.Render("not logged in"))
		return
	}

	if client, err := BuildClient(cfg); err == nil {
		if err := client.Logout(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, warningStyle.Render("server logout failed: "+err.Error()))
		}
	}

	cfg.Auth.Token = ""
	if err := config.Save(cfg); err != nil {
		fatalf("save config: %v", err)
	}
	fmt.Println(okStyle.Render("Logged out"))
}
