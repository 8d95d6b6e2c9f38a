package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/bookcart/internal/models"
	"github.com/Skotchmaster/bookcart/internal/service"
)

func (c *cli) checkoutCmd() *cobra.Command {
	var (
		form    service.Form
		payment string
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place one order per cart line and empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form.PaymentMethod = models.PaymentMethod(payment)
			return c.withApp(cmd, appOptions{withCheckout: true}, func(ctx context.Context, a *app) error {
				receipt, err := a.checkout.PlaceOrder(ctx, form)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "placed %d order(s), payment: %s\n", len(receipt.OrderIDs), receipt.PaymentMethod)
				for _, id := range receipt.OrderIDs {
					fmt.Fprintf(c.out, "  %s\n", id)
				}
				for _, id := range receipt.Skipped {
					fmt.Fprintf(c.out, "  skipped %s: no longer listed\n", id)
				}
				_, err = fmt.Fprintf(c.out, "subtotal %s  shipping %s  total %s\n",
					receipt.Summary.Subtotal.StringFixed(2),
					receipt.Summary.Shipping.StringFixed(2),
					receipt.Summary.Total.StringFixed(2),
				)
				return err
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.FullName, "name", "", "full name")
	f.StringVar(&form.Address, "address", "", "delivery address")
	f.StringVar(&form.Phone, "phone", "", "phone number")
	f.StringVar(&payment, "payment", string(models.PaymentCash), "payment method: cash|card|transfer")
	return cmd
}

func (c *cli) ordersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List the signed-in buyer's orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, appOptions{withCheckout: true}, func(ctx context.Context, a *app) error {
				orders, err := a.checkout.ListOrders(ctx)
				if err != nil {
					return err
				}
				if len(orders) == 0 {
					_, err := fmt.Fprintln(c.out, "no orders yet")
					return err
				}
				tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ORDER\tBOOK\tQTY\tAMOUNT\tPAYMENT\tSTATUS\tCREATED")
				for _, o := range orders {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%s\t%s\t%s\n",
						o.ID, o.Title, o.Quantity, o.Amount, o.PaymentMethod, o.Status, o.CreatedAt.Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			})
		},
	}
}
