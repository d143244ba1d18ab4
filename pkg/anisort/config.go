package anisort

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"
	"gopkg.in/ini.v1"
)

// Config holds the user's AniDB credentials and the library root files get
// sorted into. It is persisted as an INI file, matching the original tool's
// layout: a [User] section with username/password, and a [Target
// directories] section with a single target key.
type Config struct {
	User     string
	Password string
	Target   string
}

const (
	userSection   = "User"
	targetSection = "Target directories"
)

// LoadConfig reads Config from path. If the file doesn't exist, a template
// is written and ErrConfigTemplateCreated is returned so the caller can
// tell the operator to go fill it in, rather than silently proceeding with
// placeholder credentials.
func LoadConfig(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeTemplate(path); err != nil {
			return Config{}, err
		}
		return Config{}, ErrConfigTemplateCreated
	}

	f, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}

	user := f.Section(userSection)
	target := f.Section(targetSection)

	return Config{
		User:     user.Key("username").String(),
		Password: user.Key("password").String(),
		Target:   target.Key("target").String(),
	}, nil
}

func writeTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	f := ini.Empty()
	user, _ := f.NewSection(userSection)
	user.NewKey("username", "<USERNAME>")
	user.NewKey("password", "<PASSWORD>")

	target, _ := f.NewSection(targetSection)
	target.NewKey("target", filepath.Join(home, "Anime"))

	return f.SaveTo(path)
}

// SaveConfig writes cfg to path, overwriting whatever is there. Used by the
// interactive -setup flow.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	f := ini.Empty()
	user, _ := f.NewSection(userSection)
	user.NewKey("username", cfg.User)
	user.NewKey("password", cfg.Password)

	target, _ := f.NewSection(targetSection)
	target.NewKey("target", cfg.Target)

	return f.SaveTo(path)
}

// RunSetup interactively prompts for credentials and a target directory,
// masking the password the way a terminal login prompt would, and saves
// the result to path.
func RunSetup(path string) (Config, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("AniDB username: ")
	user, err := reader.ReadString('\n')
	if err != nil {
		return Config{}, err
	}
	user = trimNewline(user)

	fmt.Print("AniDB password: ")
	passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return Config{}, fmt.Errorf("reading password: %w", err)
	}

	home, _ := os.UserHomeDir()
	defaultTarget := filepath.Join(home, "Anime")
	fmt.Printf("Library target directory [%s]: ", defaultTarget)
	target, err := reader.ReadString('\n')
	if err != nil {
		return Config{}, err
	}
	target = trimNewline(target)
	if target == "" {
		target = defaultTarget
	}

	cfg := Config{User: user, Password: string(passBytes), Target: target}
	if err := SaveConfig(path, cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
