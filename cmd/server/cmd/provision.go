package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/delphinium/delphinium/internal/ports"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the record store tables",
	Long: `Create every table named by the *_TABLE settings in the configured store.
Run it once per deployment before serving. Provisioning is idempotent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProvision(cmd.Context())
	},
}

func runProvision(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	provisioner, ok := a.store.(ports.Provisioner)
	if !ok {
		return fmt.Errorf("store driver %q does not support provisioning", a.cfg.StoreDriver)
	}
	names := a.cfg.Tables.All()
	if err := provisioner.Provision(ctx, names); err != nil {
		return fmt.Errorf("failed to provision tables: %w", err)
	}
	a.logger.Info(ctx, "Tables provisioned", map[string]interface{}{
		"driver": a.cfg.StoreDriver,
		"tables": names,
	})
	return nil
}
