package credentials

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-garden/internal/config"
	"github.com/zalando/go-keyring"
)

// Save stores the password of user in the OS keyring.
func Save(user, password string) error {
	if user == "" {
		return errors.New(config.ErrUserRequired)
	}
	if err := keyring.Set(config.KeyringService, user, password); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCredentialSave, err)
	}
	slog.Info(config.MsgCredentialSaved,
		config.LogKeyComponent, config.CompCredentials,
		config.LogKeyUser, user)
	return nil
}

// Lookup returns the stored password of user. A missing entry, or an empty
// user, yields an empty password: anonymous sources are valid.
func Lookup(user string) string {
	if user == "" {
		return ""
	}
	p, err := keyring.Get(config.KeyringService, user)
	if err != nil {
		slog.Debug(config.MsgPassFail,
			config.LogKeyComponent, config.CompCredentials,
			config.LogKeyUser, user,
			config.LogKeyError, err)
		return ""
	}
	return p
}
