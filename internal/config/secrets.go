package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	EnvBotToken = "BOT_TOKEN"
	EnvChatID   = "CHAT_ID"
)

var ErrMissingSecret = errors.New("missing required secret")

type Secrets struct {
	BotToken string
	ChatID   string
}

// LoadSecrets reads BOT_TOKEN and CHAT_ID through lookup (usually os.LookupEnv).
// Both are required; blank values count as missing.
func LoadSecrets(lookup func(string) (string, bool)) (Secrets, error) {
	get := func(k string) string {
		v, _ := lookup(k)
		return strings.TrimSpace(v)
	}
	s := Secrets{BotToken: get(EnvBotToken), ChatID: get(EnvChatID)}

	var missing []string
	if s.BotToken == "" {
		missing = append(missing, EnvBotToken)
	}
	if s.ChatID == "" {
		missing = append(missing, EnvChatID)
	}
	if len(missing) > 0 {
		return s, fmt.Errorf("%w: %s", ErrMissingSecret, strings.Join(missing, ", "))
	}
	return s, nil
}
