package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

// apiDo is swapped out in tests.
var apiDo = func(method, path string, payload any) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "splitpot-cli",
		Short: "SplitPot CLI tool",
		Long:  `A command line interface for interacting with the SplitPot API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the SplitPot API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	groupCmd := &cobra.Command{
		Use:   "group",
		Short: "Group operations",
	}
	groupCmd.AddCommand(balancesCmd())
	groupCmd.AddCommand(consistencyCmd())
	rootCmd.AddCommand(groupCmd)

	splitCmd := &cobra.Command{
		Use:   "split",
		Short: "Split operations",
	}
	splitCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(splitCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func balancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances <group-id>",
		Short: "Show a group's net balances and settlement plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := apiDo(http.MethodGet, "/api/v1/groups/"+args[0]+"/balances", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("request failed (status %d): %s", status, string(body))
			}

			var result struct {
				GroupID   string                     `json:"group_id"`
				Balances  map[string]decimal.Decimal `json:"balances"`
				Transfers []struct {
					From   string          `json:"from"`
					To     string          `json:"to"`
					Amount decimal.Decimal `json:"amount"`
				} `json:"transfers"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			members := make([]string, 0, len(result.Balances))
			for m := range result.Balances {
				members = append(members, m)
			}
			sort.Strings(members)

			fmt.Printf("Balances for group %s\n", result.GroupID)
			for _, m := range members {
				fmt.Printf("  %-14s %s\n", truncate(m, 14), result.Balances[m].StringFixed(2))
			}

			if len(result.Transfers) == 0 {
				fmt.Println("Settled up, no transfers needed.")
				return nil
			}
			fmt.Println("Suggested transfers:")
			for _, tr := range result.Transfers {
				fmt.Printf("  %s -> %s: %s\n", truncate(tr.From, 14), truncate(tr.To, 14), tr.Amount.StringFixed(2))
			}
			return nil
		},
	}
}

func consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency <group-id>",
		Short: "Check that a group's balances sum to zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := apiDo(http.MethodGet, "/api/v1/groups/"+args[0]+"/consistency", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("request failed (status %d): %s", status, string(body))
			}

			var result struct {
				Consistent bool            `json:"consistent"`
				Drift      decimal.Decimal `json:"drift"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if result.Consistent {
				fmt.Println("Consistency check PASSED")
			} else {
				fmt.Printf("Consistency check FAILED (drift %s)\n", result.Drift.StringFixed(2))
			}
			return nil
		},
	}
}

func previewCmd() *cobra.Command {
	var (
		amount  string
		policy  string
		members []string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Compute a split without storing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}

			items, err := parseMembers(members)
			if err != nil {
				return err
			}

			payload := map[string]any{
				"amount":  amt,
				"policy":  policy,
				"members": items,
			}
			body, status, err := apiDo(http.MethodPost, "/api/v1/splits/preview", payload)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("request failed (status %d): %s", status, string(body))
			}

			var result map[string]any
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			printJSON(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Expense amount, e.g. 100.00")
	cmd.Flags().StringVar(&policy, "policy", "equal", "Split policy: equal, percentage, shares, exact, adjustment")
	cmd.Flags().StringSliceVar(&members, "member", nil, "Participant as id, id:weight or id=amount (repeatable)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("member")
	return cmd
}

// parseMembers turns "id", "id:weight" and "id=amount" specs into the
// request items the preview endpoint expects.
func parseMembers(specs []string) ([]map[string]any, error) {
	items := make([]map[string]any, 0, len(specs))
	for _, spec := range specs {
		switch {
		case strings.Contains(spec, "="):
			parts := strings.SplitN(spec, "=", 2)
			amt, err := decimal.NewFromString(parts[1])
			if err != nil {
				return nil, fmt.Errorf("invalid member amount %q: %w", spec, err)
			}
			items = append(items, map[string]any{"member_id": parts[0], "amount": amt})
		case strings.Contains(spec, ":"):
			parts := strings.SplitN(spec, ":", 2)
			weight, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid member weight %q: %w", spec, err)
			}
			items = append(items, map[string]any{"member_id": parts[0], "weight": weight})
		default:
			items = append(items, map[string]any{"member_id": spec})
		}
	}
	return items, nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to marshal: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
