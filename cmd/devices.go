// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"spektra/internal/audio"
	"spektra/internal/tui"
)

func newDevicesCommand(_ *app) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				device, rate, ok, err := tui.StartDeviceListUI()
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintf(cmd.OutOrStdout(), "Selected [%d] %s at %.0f Hz\n", device.ID, device.Name, rate)
				}
				return nil
			}

			if err := audio.Initialize(); err != nil {
				return err
			}
			defer audio.Terminate()
			return audio.ListDevices(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"Browse devices in the terminal UI")

	return cmd
}
