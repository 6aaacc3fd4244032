package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: Password is prompted at runtime and stored in memory - use GetPasswordBytes()
type Config struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	WalletFilePath string        `envconfig:"WALLET_FILE_PATH" required:"true"`
	Network        string        `envconfig:"ERGO_NETWORK" default:"mainnet"`
	HTTPTimeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	FragmentSize   int           `envconfig:"QR_FRAGMENT_SIZE" default:"200"`
	QRImageSize    int           `envconfig:"QR_IMAGE_SIZE" default:"256"`
	ExplorerURL    string        `envconfig:"EXPLORER_URL" default:"https://api.ergoplatform.com"`
	NodeURL        string        `envconfig:"NODE_URL"`
	LogEnv         string        `envconfig:"LOG_ENV" default:"production"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Load reads configuration from environment variables without touching the global instance
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if c.FragmentSize < 1 {
		return nil, errors.New("QR_FRAGMENT_SIZE must be positive")
	}
	return c, nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetWalletFilePath returns path to .cwt file from configuration
func GetWalletFilePath() string {
	return Get().WalletFilePath
}

var passwordBytes []byte

// PromptForPassword prompts the user for the wallet password in the terminal.
// The password is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassword() error {
	raw, err := ReadSecret("Enter wallet password: ")
	if err != nil {
		return err
	}
	SetPassword(raw)
	clear(raw)
	return nil
}

// ReadSecret reads one hidden line from the terminal
func ReadSecret(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return raw, nil
}

// SetPassword stores a copy of password in memory
func SetPassword(password []byte) {
	clear(passwordBytes)
	passwordBytes = make([]byte, len(password))
	copy(passwordBytes, password)
}

// GetPasswordBytes returns the password stored in memory (from PromptForPassword).
// Returns an error if the password was not set.
// Caller must zero the returned slice after use for security.
func GetPasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("password not set: call PromptForPassword at startup")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}
