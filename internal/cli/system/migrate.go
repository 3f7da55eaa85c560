package system

import (
	"errors"

	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/storage/sqlite"
)

type MigrateCmd struct {
	Status bool `help:"Only report the schema version."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return errors.New("migrate command only supports SQLite storage")
	}

	if c.Status {
		current, latest, err := store.SchemaVersion()
		if err != nil {
			return err
		}
		ctx.Printf("Schema version %d (latest %d)\n", current, latest)
		return nil
	}

	count, err := store.Migrate(func(msg string) { ctx.Println(msg) })
	if err != nil {
		return err
	}
	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
