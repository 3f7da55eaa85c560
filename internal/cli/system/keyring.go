package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/keyring"
	"github.com/julianstephens/streaklit/internal/share"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store the share database connection string in the OS keyring."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove the share database connection string from the OS keyring."`
}

// KeyringSetCmd stores the share database DSN in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string for shared achievements."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	// The keyring is encrypted, so a password in the DSN is acceptable here.
	if err := share.ValidateConnString(cmd.ConnectionString, true); err != nil {
		return fmt.Errorf("invalid connection string: %w", err)
	}

	if err := keyring.SetShareDSN(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	ctx.Println("✓ Share database connection string stored in OS keyring")
	return nil
}

// KeyringDeleteCmd removes the share database DSN from the OS keyring
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteShareDSN(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}

	ctx.Println("✓ Share database connection string removed from OS keyring")
	return nil
}
