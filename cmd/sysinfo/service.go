package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-tangra/go-tangra-sysinfo/internal/winsvc"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage Windows service installation",
}

var serviceInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install as a Windows service running 'serve'",
	RunE:  runServiceInstall,
}

var serviceUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall the Windows service",
	RunE:  runServiceUninstall,
}

func init() {
	serviceCmd.AddCommand(serviceInstallCmd)
	serviceCmd.AddCommand(serviceUninstallCmd)
	rootCmd.AddCommand(serviceCmd)
}

func runServiceInstall(cmd *cobra.Command, _ []string) error {
	svcArgs := []string{"serve"}
	if cfgFile != "" {
		svcArgs = append(svcArgs, "--config", cfgFile)
	}
	if err := winsvc.Install(winsvc.ServiceName, svcArgs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Service %s installed\n", winsvc.ServiceName)
	return nil
}

func runServiceUninstall(cmd *cobra.Command, _ []string) error {
	if err := winsvc.Uninstall(winsvc.ServiceName); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Service %s uninstalled\n", winsvc.ServiceName)
	return nil
}
