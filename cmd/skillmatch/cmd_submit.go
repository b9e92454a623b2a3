package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/skillmatch/internal/domain/types"
)

const (
	defaultServerURL    = "http://localhost:9080"
	defaultHTTPTimeout  = 30 * time.Second
	defaultPollInterval = 200 * time.Millisecond
)

type submitOptions struct {
	url      string
	format   string
	wait     bool
	timeout  time.Duration
	interval time.Duration
}

func newSubmitCommand() *cobra.Command {
	opts := &submitOptions{}
	cmd := &cobra.Command{
		Use:   "submit <input.json|->",
		Short: "Submit an input file to a running server as a ranking job",
		Long: `Submit a match request to a running server as an asynchronous job.

The request_id of the input, when present, is the job id; submitting the same
id twice is acknowledged as a duplicate. With --wait the command polls the job
until it is done or failed and prints the final status.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", defaultServerURL, "Base URL of the server")
	cmd.Flags().StringVarP(&opts.format, "output", "o", formatJSON, "Output format: json or yaml")
	cmd.Flags().BoolVarP(&opts.wait, "wait", "w", false, "Wait for the job to finish")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", defaultHTTPTimeout, "Overall timeout")
	cmd.Flags().DurationVar(&opts.interval, "poll-interval", defaultPollInterval, "Polling interval with --wait")

	return cmd
}

func runSubmit(cmd *cobra.Command, opts *submitOptions, path string) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	if opts.wait && opts.interval <= 0 {
		return fmt.Errorf("invalid --poll-interval %s: must be positive", opts.interval)
	}
	in, err := readRequest(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	c := &client{base: strings.TrimRight(opts.url, "/"), http: &http.Client{}}
	ack, err := c.submit(ctx, in)
	if err != nil {
		return err
	}
	if !opts.wait {
		return writeOutput(cmd.OutOrStdout(), opts.format, ack)
	}

	status, err := c.wait(ctx, ack.JobID, opts.interval)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), opts.format, status)
}

type client struct {
	base string
	http *http.Client
}

func (c *client) submit(ctx context.Context, in types.MatchRequest) (types.SubmitResponse, error) {
	var ack types.SubmitResponse
	body, err := json.Marshal(in)
	if err != nil {
		return ack, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/jobs", bytes.NewReader(body))
	if err != nil {
		return ack, err
	}
	req.Header.Set("Content-Type", "application/json")
	err = c.do(req, &ack, http.StatusAccepted, http.StatusOK)
	return ack, err
}

func (c *client) job(ctx context.Context, id string) (types.JobStatus, error) {
	var st types.JobStatus
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/jobs/"+url.PathEscape(id), http.NoBody)
	if err != nil {
		return st, err
	}
	err = c.do(req, &st, http.StatusOK)
	return st, err
}

func (c *client) wait(ctx context.Context, id string, interval time.Duration) (types.JobStatus, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		st, err := c.job(ctx, id)
		if err != nil {
			return st, err
		}
		if st.Status == types.JobDone || st.Status == types.JobFailed {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, fmt.Errorf("waiting for job %s: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}

// do sends req and decodes a JSON body into out when the status is one of ok.
func (c *client) do(req *http.Request, out any, ok ...int) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	for _, code := range ok {
		if resp.StatusCode == code {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return fmt.Errorf("%s %s: %s: %s", req.Method, req.URL.Path, resp.Status, strings.TrimSpace(string(msg)))
}
