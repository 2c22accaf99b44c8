// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"spektra/internal/analysis"
	"spektra/internal/config"
	"spektra/internal/fft"
	"spektra/internal/transport"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		af     analysisFlags
		listen string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve spectrogram requests over a websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := af.apply(cmd, a.cfg); err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				a.cfg.Transport.ListenAddress = listen
			}

			kernel, err := fft.KernelByName(a.cfg.Analysis.Kernel)
			if err != nil {
				return err
			}

			server := transport.NewServer(a.cfg.Transport.ListenAddress,
				transport.WithDefaultFFTSize(a.cfg.Analysis.FFTSize),
				transport.WithMaxFFTSize(config.MaxFFTSize),
				transport.WithProcessorOptions(analysis.WithKernel(kernel)),
			)
			if err := server.Start(); err != nil {
				server.Close()
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on ws://%s/ws\n", server.Addr())

			<-cmd.Context().Done()
			return server.Close()
		},
	}

	af.register(cmd)
	cmd.Flags().StringVarP(&listen, "listen", "a", "",
		"Address to listen on. Default is transport.listen_address")

	return cmd
}
