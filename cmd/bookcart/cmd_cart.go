package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Skotchmaster/bookcart/internal/cart"
	"github.com/Skotchmaster/bookcart/internal/transport"
)

func (c *cli) addCmd() *cobra.Command {
	var cand cart.Candidate
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one copy of a book to the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
				if err := a.store.AddItem(ctx, cand); err != nil {
					return err
				}
				return writeCart(c.out, "table", transport.NewCartResponse(a.store.Snapshot(), a.cfg.Pricing))
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&cand.ID, "id", "", "book id")
	f.StringVar(&cand.Title, "title", "", "book title")
	f.StringVar(&cand.Author, "author", "", "book author")
	f.Float64Var(&cand.UnitPrice, "price", 0, "unit price")
	f.StringVar(&cand.Image, "image", "", "cover image URL")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
				return writeCart(c.out, output, transport.NewCartResponse(a.store.Snapshot(), a.cfg.Pricing))
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table|json|yaml")
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <quantity>",
		Short: "Set the quantity of a line; zero or less removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be an integer: %w", err)
			}
			return c.withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
				a.store.UpdateQuantity(ctx, args[0], qty)
				return writeCart(c.out, "table", transport.NewCartResponse(a.store.Snapshot(), a.cfg.Pricing))
			})
		},
	}
}

func (c *cli) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
				a.store.RemoveItem(ctx, args[0])
				return writeCart(c.out, "table", transport.NewCartResponse(a.store.Snapshot(), a.cfg.Pricing))
			})
		},
	}
}

func (c *cli) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
				a.store.Clear(ctx)
				_, err := fmt.Fprintln(c.out, "cart cleared")
				return err
			})
		},
	}
}

func writeCart(w io.Writer, format string, resp transport.CartResponse) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		if len(resp.Items) == 0 {
			_, err := fmt.Fprintln(w, "cart is empty")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tPRICE\tQTY\tLINE")
		for _, it := range resp.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%d\t%.2f\n", it.ID, it.Title, it.Author, it.UnitPrice, it.Quantity, it.LineTotal())
		}
		fmt.Fprintf(tw, "\t\t\tSUBTOTAL\t%d\t%s\n", resp.TotalItems, resp.Summary.Subtotal.StringFixed(2))
		fmt.Fprintf(tw, "\t\t\tSHIPPING\t\t%s\n", resp.Summary.Shipping.StringFixed(2))
		fmt.Fprintf(tw, "\t\t\tTOTAL\t\t%s\n", resp.Summary.Total.StringFixed(2))
		return tw.Flush()
	}
	return fmt.Errorf("unknown output format %q", format)
}
