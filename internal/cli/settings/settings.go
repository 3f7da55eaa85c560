package settings

import (
	"fmt"
	"strings"

	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/share"
	"github.com/julianstephens/streaklit/internal/validation"
)

type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" default:"1" help:"Show current settings."`
	Set  SettingsSetCmd  `cmd:"" help:"Change settings."`
}

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	shareDSN := settings.ShareDSN
	if shareDSN == "" {
		shareDSN = cli.Muted("(none)")
	}

	t := cli.NewTable("Setting", "Value")
	t.Row("timezone", settings.Timezone)
	t.Row("weeks_back", fmt.Sprintf("%d", settings.WeeksBack))
	t.Row("months_back", fmt.Sprintf("%d", settings.MonthsBack))
	t.Row("share_dsn", shareDSN)
	ctx.Println(t.String())

	_, source, err := share.ResolveDSN(settings)
	switch {
	case err != nil:
		ctx.Printf("Sharing: misconfigured (%v)\n", err)
	case source == share.SourceNone:
		ctx.Println("Sharing: local database")
	default:
		ctx.Printf("Sharing: PostgreSQL via %s\n", source)
	}
	return nil
}

type SettingsSetCmd struct {
	Timezone   *string `help:"IANA timezone name, or Local."`
	WeeksBack  *int    `help:"Weeks used for weekly trends, day performance and correlations."`
	MonthsBack *int    `help:"Months used for monthly trends."`
	ShareDSN   *string `name:"share-dsn" help:"PostgreSQL connection string for sharing, without a password. Empty to clear."`
}

func (c *SettingsSetCmd) Validate() error {
	if c.Timezone != nil {
		if err := validation.ValidateTimezoneName(*c.Timezone); err != nil {
			return err
		}
	}
	if c.WeeksBack != nil {
		if err := validation.ValidateWindow(*c.WeeksBack, constants.MaxWeeksBack); err != nil {
			return err
		}
	}
	if c.MonthsBack != nil {
		if err := validation.ValidateWindow(*c.MonthsBack, constants.MaxMonthsBack); err != nil {
			return err
		}
	}
	if c.ShareDSN != nil && strings.TrimSpace(*c.ShareDSN) != "" {
		// Settings are stored in plain text.
		if err := share.ValidateConnString(*c.ShareDSN, false); err != nil {
			return err
		}
	}
	return nil
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	if err := c.Validate(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	updated := false
	if c.Timezone != nil {
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.WeeksBack != nil {
		settings.WeeksBack = *c.WeeksBack
		updated = true
	}
	if c.MonthsBack != nil {
		settings.MonthsBack = *c.MonthsBack
		updated = true
	}
	if c.ShareDSN != nil {
		settings.ShareDSN = strings.TrimSpace(*c.ShareDSN)
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use 'streaklit settings show' to view settings.")
		return nil
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Println("Settings updated successfully.")
	return nil
}
