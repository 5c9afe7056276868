package main

import (
	"fmt"
	"os"
	"procomp-service/internal/app"
	"procomp-service/internal/service"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print order review counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(c *app.Container) error {
			result, err := c.Admin.RunCommand(rootCtx, service.CommandStats)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Output)
			return nil
		})
	},
}

var latestUserCmd = &cobra.Command{
	Use:   "latest-user",
	Short: "Print the most recently registered customer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(c *app.Container) error {
			result, err := c.Admin.RunCommand(rootCtx, service.CommandLatestUser)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Output)
			return nil
		})
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Close every sent quote whose acceptance window has elapsed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(c *app.Container) error {
			closed, err := c.Reaper.Sweep(rootCtx, c.Quotes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "closed %d expired quote(s)\n", closed)
			return nil
		})
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <ticketId>",
	Short: "Force-close the sent quote of a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticketID, err := strconv.Atoi(args[0])
		if err != nil || ticketID <= 0 {
			return fmt.Errorf("invalid ticket id %q", args[0])
		}

		return withContainer(func(c *app.Container) error {
			transitioned, err := c.Quotes.Reject(rootCtx, ticketID, true)
			if err != nil {
				return err
			}
			if !transitioned {
				fmt.Fprintln(cmd.OutOrStdout(), "already resolved")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "closed")
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export-orders",
	Short: "Write the order review list as csv or xlsx",
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, err := service.ExportFilename(exportFormat)
		if err != nil {
			return err
		}
		if exportOut == "" {
			exportOut = filename
		}

		return withContainer(func(c *app.Container) error {
			orders, err := c.Admin.ListOrders(rootCtx)
			if err != nil {
				return err
			}

			if exportFormat == "xlsx" {
				f, err := service.BuildOrdersWorkbook(orders)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := f.SaveAs(exportOut); err != nil {
					return err
				}
			} else {
				out, err := os.Create(exportOut)
				if err != nil {
					return err
				}
				defer out.Close()
				if err := service.WriteOrdersCSV(out, orders); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d order(s) to %s\n", len(orders), exportOut)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default rendelesek.<format>)")
}
