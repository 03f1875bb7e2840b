package cmd

import (
	"fmt"
	"net/netip"
	"strings"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/dnsbl"

	"github.com/spf13/cobra"
)

func newCheckDNSBLCmd(rt *Runtime) *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "check-dnsbl <ip>",
		Short: "Check an address against the configured DNSBL zones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := netip.ParseAddr(args[0])
			if err != nil {
				return fmt.Errorf("invalid address %q: %w", args[0], err)
			}

			cfg, err := rt.Config()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(cfg.Guards.DNSBL) == 0 {
				fmt.Fprintln(out, "No DNSBL zones configured.")
				return nil
			}

			l, err := rt.Logger()
			if err != nil {
				return err
			}
			rdb, err := rt.Redis()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if noCache {
				if err = rdb.Del(ctx, fmt.Sprintf(constants.CacheKeyDNSBL, addr.String())).Err(); err != nil {
					return fmt.Errorf("failed to clear cached result: %w", err)
				}
			}

			checker := dnsbl.New(l, rdb, rt.resolver, cfg.Guards.DNSBL, cfg.Guards.DNSBLCacheExpire)
			blocks, err := checker.Check(ctx, addr.String())
			if err != nil {
				return err
			}

			if len(blocks) == 0 {
				fmt.Fprintf(out, "%s is not listed.\n", addr)
			} else {
				fmt.Fprintf(out, "%s is listed on: %s\n", addr, strings.Join(blocks, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore and replace the cached result")
	return cmd
}
