package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ailevelup-ai/heal-mcp/internal/config"
)

const (
	ProbeOK          ProbeStatus = "ok"
	ProbeTimeout     ProbeStatus = "timeout"
	ProbeUnreachable ProbeStatus = "unreachable"
)

// DefaultProbeTimeout bounds how long a server has to start, initialize and list its tools.
const DefaultProbeTimeout = 30 * time.Second

// ProbeStatus is the availability of a server that was launched and queried.
type ProbeStatus string

// ProbeResult is the outcome of launching a server and talking MCP to it.
type ProbeResult struct {
	Status ProbeStatus `json:"status" yaml:"status"`

	// Server is the name and version the server reported, e.g. 'github-mcp@0.6.2'.
	Server string `json:"server,omitempty" yaml:"server,omitempty"`

	// Tools is the number of tools the server offers.
	Tools int `json:"tools" yaml:"tools"`

	Latency time.Duration `json:"latency" yaml:"latency"`

	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Prober launches a server entry and checks it answers.
type Prober interface {
	Probe(ctx context.Context, entry config.ServerEntry) ProbeResult
}

// MCPClient is the subset of an MCP client used by a probe.
type MCPClient interface {
	Initialize(ctx context.Context, request mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	Close() error
}

// StartFunc launches a server over stdio.
type StartFunc func(command string, env []string, args ...string) (MCPClient, io.Reader, error)

// StdioProber launches servers as child processes and speaks MCP over their stdio.
type StdioProber struct {
	logger  hclog.Logger
	timeout time.Duration
	start   StartFunc
	now     func() time.Time
}

var _ Prober = (*StdioProber)(nil)

// NewStdioProber returns a prober which gives each server timeout to answer.
// A nil start launches real processes.
func NewStdioProber(logger hclog.Logger, timeout time.Duration, start StartFunc) *StdioProber {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if start == nil {
		start = startStdio
	}

	return &StdioProber{
		logger:  logger.Named("probe"),
		timeout: timeout,
		start:   start,
		now:     time.Now,
	}
}

// Probe launches the server, runs 'initialize' and 'tools/list', then stops it.
func (p *StdioProber) Probe(ctx context.Context, entry config.ServerEntry) ProbeResult {
	began := p.now()
	res := ProbeResult{Status: ProbeUnreachable}

	env := make([]string, 0, len(entry.Env))
	for _, k := range entry.EnvKeys() {
		env = append(env, k+"="+entry.Env[k])
	}

	p.logger.Debug("Starting server", "name", entry.Name, "command", entry.Command, "args", entry.Args)

	c, stderr, err := p.start(entry.Command, env, entry.Args...)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer func() {
		if err := c.Close(); err != nil {
			p.logger.Debug("Error stopping server", "name", entry.Name, "error", err)
		}
	}()

	if stderr != nil {
		w := p.logger.Named(entry.Name).StandardWriter(&hclog.StandardLoggerOptions{ForceLevel: hclog.Debug})
		go func() { _, _ = io.Copy(w, stderr) }()
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	initResult, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo:      mcp.Implementation{Name: "heal-mcp", Version: "0.0.1"},
		},
	})
	if err != nil {
		return p.failed(ctx, res, began, fmt.Errorf("initialize: %w", err))
	}
	res.Server = fmt.Sprintf("%s@%s", initResult.ServerInfo.Name, initResult.ServerInfo.Version)

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return p.failed(ctx, res, began, fmt.Errorf("list tools: %w", err))
	}

	res.Status = ProbeOK
	res.Tools = len(tools.Tools)
	res.Latency = p.now().Sub(began)
	p.logger.Info("Server answered", "name", entry.Name, "server", res.Server, "tools", res.Tools, "latency", res.Latency)

	return res
}

func (p *StdioProber) failed(ctx context.Context, res ProbeResult, began time.Time, err error) ProbeResult {
	res.Latency = p.now().Sub(began)
	res.Error = err.Error()
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.Status = ProbeTimeout
	}
	return res
}

func startStdio(command string, env []string, args ...string) (MCPClient, io.Reader, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, nil, err
	}

	stderr, _ := client.GetStderr(c)
	return c, stderr, nil
}
