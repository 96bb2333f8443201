package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/claim-router/internal/model"
	"github.com/sells-group/claim-router/internal/pipeline"
)

var (
	routeText string
	routeFile string
	routeSave bool
)

var routeCmd = &cobra.Command{
	Use:   "route [claim text]",
	Short: "Route a single claim and print the decision as JSON",
	Example: `  claim-router route "Ferrari crashed in Rome. 35 year old driver. Repair costs 25k."
  claim-router route --file claim.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := routeInput(routeText, routeFile, args)
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), cfg, "route")
		if err != nil {
			return err
		}
		defer env.Close()

		return routeOne(cmd.Context(), env.Pipeline, in, routeSave, cmd.OutOrStdout())
	},
}

func init() {
	routeCmd.Flags().StringVar(&routeText, "text", "", "free-text claim description")
	routeCmd.Flags().StringVar(&routeFile, "file", "", "JSON file with text or structured_data")
	routeCmd.Flags().BoolVar(&routeSave, "save", false, "save the decision to the configured store")
	rootCmd.AddCommand(routeCmd)
}

// routeInput builds the claim input from --text, --file or positional
// arguments, in that order.
func routeInput(text, file string, args []string) (model.ClaimInput, error) {
	switch {
	case text != "":
		return model.ClaimInput{Text: model.Ptr(text)}, nil
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return model.ClaimInput{}, eris.Wrap(err, "route: open claim file")
		}
		defer f.Close() //nolint:errcheck
		return decodeClaimInput(f)
	case len(args) > 0:
		return model.ClaimInput{Text: model.Ptr(strings.Join(args, " "))}, nil
	default:
		return model.ClaimInput{}, eris.New("route: provide claim text, --text or --file")
	}
}

func decodeClaimInput(r io.Reader) (model.ClaimInput, error) {
	var in model.ClaimInput
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		return model.ClaimInput{}, eris.Wrap(err, "route: decode claim file")
	}
	return in, nil
}

func routeOne(ctx context.Context, p *pipeline.Pipeline, in model.ClaimInput, save bool, w io.Writer) error {
	run := p.Route
	if save {
		run = p.Submit
	}
	dec, err := run(ctx, in)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return eris.Wrap(enc.Encode(dec), "route: write decision")
}
