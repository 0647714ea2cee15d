package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/services/storefront/internal/service"
)

func NewAdvanceCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		orderID uint
		status  string
	)

	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Move an order to the next status",
		Long: `Move an order along the fulfillment table, for example from Paid to
InProcessing. Marking an order Paid is only allowed from AwaitingPayment and
stamps a transaction id; other transitions belong to the payment flow.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := rootOpts.repo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			pub, release := rootOpts.publisher()
			defer release()

			svc := &service.OrderService{Repo: r, Events: pub}

			o, err := svc.AdvanceStatus(cmd.Context(), orderID, status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %d is now %s\n", o.ID, o.Status)
			return nil
		},
	}

	cmd.Flags().UintVar(&orderID, "order", 0, "order id")
	cmd.Flags().StringVar(&status, "status", "", "target status")
	_ = cmd.MarkFlagRequired("order")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}
