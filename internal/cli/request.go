package cli

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/samvad-hq/httpcall/internal/app"
	"github.com/samvad-hq/httpcall/internal/output"
	"github.com/samvad-hq/httpcall/internal/requestfile"
	"github.com/samvad-hq/httpcall/pkg/httpclient"
	"github.com/spf13/cobra"
)

type methodSpec struct {
	name     string
	method   string
	jsonBody bool
}

var methods = []methodSpec{
	{name: "get", method: http.MethodGet},
	{name: "post", method: http.MethodPost, jsonBody: true},
	{name: "put", method: http.MethodPut, jsonBody: true},
	{name: "delete", method: http.MethodDelete, jsonBody: true},
}

// renderFlags are shared by every command that performs a request.
type renderFlags struct {
	headers bool
	query   string
	curl    bool
	fail    bool
}

func (f *renderFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.headers, "headers", "i", false, "print status line and response headers")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "print only the gjson path match from a JSON body")
	cmd.Flags().BoolVar(&f.curl, "curl", false, "print the equivalent curl command to stderr before sending")
	cmd.Flags().BoolVar(&f.fail, "fail", false, "exit with status 2 when the response status is not in [200, 400)")
}

func newMethodCmd(env *Env, spec methodSpec) *cobra.Command {
	var (
		headers []string
		params  []string
		jsonArg string
		render  renderFlags
	)

	cmd := &cobra.Command{
		Use:   spec.name + " <url>",
		Short: fmt.Sprintf("Send a %s request", spec.method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def := requestfile.Definition{Method: spec.method, URL: args[0]}

			var err error
			if def.Headers, err = parseHeaders(headers); err != nil {
				return err
			}
			if def.Params, err = parseParams(params); err != nil {
				return err
			}
			if cmd.Flags().Changed("json") {
				def.JSON = &requestfile.JSONBody{Text: jsonArg}
			}
			return execute(cmd, env, def, render)
		},
	}

	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "request header as 'Name: value' (repeatable)")
	if spec.method == http.MethodGet {
		cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value, sent unescaped (repeatable)")
	} else {
		cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "form parameter as key=value, sent unescaped (repeatable)")
	}
	if spec.jsonBody {
		cmd.Flags().StringVar(&jsonArg, "json", "", "raw JSON body; sets Content-Type to application/json")
		cmd.MarkFlagsMutuallyExclusive("json", "param")
	}
	render.bind(cmd)
	return cmd
}

func newRunCmd(env *Env) *cobra.Command {
	var render renderFlags
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Send the request described by a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := requestfile.Load(args[0])
			if err != nil {
				return err
			}
			return execute(cmd, env, def, render)
		},
	}
	render.bind(cmd)
	return cmd
}

// execute performs def and prints the outcome.
func execute(cmd *cobra.Command, env *Env, def requestfile.Definition, render renderFlags) error {
	if env.Runner == nil {
		return fmt.Errorf("runner is not initialized")
	}
	if render.curl {
		wire, err := app.Prepare(def)
		if err != nil {
			return err
		}
		curl, err := output.Curl(wire)
		if err != nil {
			return err
		}
		fmt.Fprintln(env.Err, curl)
	}

	resp, err := env.Runner.Run(cmd.Context(), def)
	if err != nil {
		return err
	}

	printer := output.NewPrinter(env.Out, env.NoColor)
	if err := printer.Response(resp, output.RenderOptions{ShowHeaders: render.headers, Query: render.query}); err != nil {
		return err
	}
	if render.fail && !resp.IsSuccess() {
		return &ExitError{Code: 2}
	}
	return nil
}

// parseHeaders turns "Name: value" flags into a header map.
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (expected 'Name: value')", h)
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}

// parseParams turns key=value flags into ordered params without escaping either side.
func parseParams(raw []string) (httpclient.Params, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(httpclient.Params, 0, len(raw))
	for _, p := range raw {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (expected key=value)", p)
		}
		out = out.Add(key, value)
	}
	return out, nil
}
