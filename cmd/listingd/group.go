package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/addons-front/listing-api/internal/card"
	"github.com/addons-front/listing-api/internal/permissions"
	"github.com/spf13/cobra"
)

type groupOutput struct {
	Required     []string `json:"required"`
	Optional     []string `json:"optional"`
	ShouldRender bool     `json:"should_render"`
}

func newGroupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group [file.json]",
		Short: "Group the permissions of a version read from a file or stdin",
		Args:  cobra.RangeArgs(0, 1),
		RunE:  runGroup,
	}
	cmd.Flags().Bool("card", false, "Print the card view model instead of the grouping")
	cmd.Flags().String("learn-more-url", card.DefaultLearnMoreURL, "Learn more link used with --card")
	cmd.Flags().StringSlice("hide", nil, "Extra permission keys to treat as non-displayable")
	return cmd
}

func runGroup(cmd *cobra.Command, args []string) error {
	asCard, _ := cmd.Flags().GetBool("card")
	learnMore, _ := cmd.Flags().GetString("learn-more-url")
	hide, _ := cmd.Flags().GetStringSlice("hide")

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	version, err := decodeVersion(in)
	if err != nil {
		return err
	}

	overrides := make(map[string]bool, len(hide))
	for _, key := range hide {
		overrides[key] = false
	}
	grouped := permissions.DefaultTable().With(overrides).Group(version)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if asCard {
		return enc.Encode(card.Build(grouped, card.Options{LearnMoreURL: learnMore}))
	}
	return enc.Encode(groupOutput{Required: grouped.Required, Optional: grouped.Optional, ShouldRender: grouped.ShouldRender()})
}

// decodeVersion reads a version document. Empty input or JSON null yields nil.
func decodeVersion(r io.Reader) (*permissions.Version, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if len(body) == 0 {
		return nil, nil
	}
	var version *permissions.Version
	if errDecode := json.Unmarshal(body, &version); errDecode != nil {
		return nil, fmt.Errorf("decode version: %w", errDecode)
	}
	return version, nil
}
