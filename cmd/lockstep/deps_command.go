package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lockstep/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check availability of external tools",
		Long: `Check that the external tools lockstep shells out to are on PATH.

ffprobe and FFmpeg are required for probing containers and extracting
audio tracks. mkvmerge is optional; plans render without it, but you
need it to execute them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Analysis(
				cfg.FFprobeBinary(),
				cfg.FFmpegBinary(),
				cfg.MkvmergeBinary(),
			))

			if ctx.jsonOutput() {
				return writeDepsJSON(cmd, statuses)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, status := range statuses {
				kind := statusOK
				message := status.Description
				if !status.Available {
					kind = statusError
					if status.Optional {
						kind = statusWarn
					}
					message = status.Detail
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
			}
			if !deps.AllRequiredAvailable(statuses) {
				return errors.New("required tools are missing")
			}
			return nil
		},
	}
	return cmd
}

func writeDepsJSON(cmd *cobra.Command, statuses []deps.Status) error {
	type jsonStatus struct {
		Name      string `json:"name"`
		Command   string `json:"command"`
		Optional  bool   `json:"optional"`
		Available bool   `json:"available"`
		Detail    string `json:"detail,omitempty"`
	}
	out := make([]jsonStatus, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, jsonStatus{
			Name:      status.Name,
			Command:   status.Command,
			Optional:  status.Optional,
			Available: status.Available,
			Detail:    status.Detail,
		})
	}
	if err := writeJSON(cmd, map[string]any{
		"tools": out,
		"ready": deps.AllRequiredAvailable(statuses),
	}); err != nil {
		return err
	}
	if !deps.AllRequiredAvailable(statuses) {
		return errors.New("required tools are missing")
	}
	return nil
}
