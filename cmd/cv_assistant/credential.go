package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Manage the stored Gemini API key",
	Long: `Manage the Gemini API key kept in the local store.

When no key is stored, GEMINI_API_KEY (or api_key in the config file) is used instead.
Get a key from Google AI Studio: https://ai.google.dev/`,
}

var credentialSetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store an API key; read from stdin when omitted",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCredentialSet,
}

var credentialStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether an API key is configured",
	Args:  cobra.NoArgs,
	RunE:  runCredentialStatus,
}

var credentialClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE:  runCredentialClear,
}

func init() {
	credentialCmd.AddCommand(credentialSetCmd, credentialStatusCmd, credentialClearCmd)
	rootCmd.AddCommand(credentialCmd)
}

func runCredentialSet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		key = strings.TrimSpace(string(data))
	}

	a, err := openApp(ctx, cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.SetCredential(ctx, key); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out(cmd), "API key saved successfully")
	return nil
}

func runCredentialStatus(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	stored, err := a.svc.Form().CredentialConfigured(ctx)
	if err != nil {
		return err
	}
	switch {
	case stored:
		_, _ = fmt.Fprintln(out(cmd), "API Key Configured (stored)")
	case a.cfg.APIKey != "":
		_, _ = fmt.Fprintln(out(cmd), "API Key Configured (environment)")
	default:
		_, _ = fmt.Fprintln(out(cmd), "API key not configured")
	}
	return nil
}

func runCredentialClear(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.Form().ClearCredential(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out(cmd), "Stored API key removed")
	return nil
}
