package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names. These match the names the service has always
// been deployed with, so they stay as-is even though TOKEN is unfortunately
// generic.
const (
	EnvPracticumToken = "PRACTICUM_TOKEN"
	EnvBotToken       = "TOKEN"
	EnvChatID         = "CHAT_ID"
)

// Credentials are the three secrets the process cannot run without.
// They are loaded once at startup and passed by value into the components
// that need them; nothing reads the environment after LoadCredentials.
type Credentials struct {
	PracticumToken string
	BotToken       string
	ChatID         int64
}

// MissingCredentialsError names every absent variable, not just the first,
// so one failed start is enough to fix the deployment.
type MissingCredentialsError struct {
	Names []string
}

func (e *MissingCredentialsError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Names, ", ")
}

// LoadCredentials reads the three required values from the environment.
// A .env file in the working directory is merged in first when present
// (it never overrides already-exported variables).
func LoadCredentials() (Credentials, error) {
	// Best-effort: a missing .env is the normal production case.
	_ = godotenv.Load()

	practicum := strings.TrimSpace(os.Getenv(EnvPracticumToken))
	bot := strings.TrimSpace(os.Getenv(EnvBotToken))
	chat := strings.TrimSpace(os.Getenv(EnvChatID))

	var missing []string
	if practicum == "" {
		missing = append(missing, EnvPracticumToken)
	}
	if bot == "" {
		missing = append(missing, EnvBotToken)
	}
	if chat == "" {
		missing = append(missing, EnvChatID)
	}
	if len(missing) > 0 {
		return Credentials{}, &MissingCredentialsError{Names: missing}
	}

	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return Credentials{}, fmt.Errorf("%s: not a numeric chat id: %w", EnvChatID, err)
	}

	return Credentials{
		PracticumToken: practicum,
		BotToken:       bot,
		ChatID:         chatID,
	}, nil
}
