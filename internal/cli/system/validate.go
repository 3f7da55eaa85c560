package system

import (
	"fmt"

	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/validation"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	now, _, err := ctx.Now()
	if err != nil {
		return err
	}
	habits, err := ctx.Store.GetAllHabits(true)
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}

	ctx.Println("Validating habits...")
	result := validation.New().ValidateHabits(habits, now)
	ctx.Println()
	ctx.Println(result.FormatReport())

	if result.HasProblems() {
		return fmt.Errorf("found %d problem(s)", len(result.Problems))
	}
	return nil
}
