package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamed0406/statusmonitor/internal/cli/style"
	"github.com/hamed0406/statusmonitor/internal/config"
)

func newValidateCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a targets file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			targets, err := config.LoadTargets(path)
			if err != nil {
				fmt.Fprintf(out, "%s  %s\n", style.Bold.Render(path), style.Unhealthy.Render("✗ invalid"))
				return err
			}
			fmt.Fprintf(out, "%s  %s\n", style.Bold.Render(path), style.Healthy.Render("✓ valid"))
			for _, t := range targets {
				p := t.Probe
				fmt.Fprintf(out, "  %s %s  %s\n", style.DimText.Render("·"), style.Bold.Render(t.Name), t.URL)
				fmt.Fprintf(out, "    %s\n", style.DimText.Render(fmt.Sprintf(
					"timeout=%s verify_tls=%t follow_redirects=%t success_codes=%v",
					p.Timeout, p.VerifyTLS, p.FollowRedirects, p.SuccessCodes,
				)))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "targets.yaml", "targets file to validate")
	return cmd
}
