package uci

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/open-acs/acsd/pkg/logx"
)

// Client is a live UCI client: it shells out to uci(8) to write the channel
// ACS picked back into the wireless config and commit it. This is the
// acs.BringUp collaborator for a real OpenWrt AP.
type Client struct {
	logger    *logx.Logger
	wifiIface string // wireless.<section>, e.g. "radio0"
}

// NewClient builds a Client that writes channel decisions to
// wireless.<wifiIface>.channel.
func NewClient(logger *logx.Logger, wifiIface string) *Client {
	return &Client{logger: logger, wifiIface: wifiIface}
}

func (c *Client) execUCI(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "uci", args...)
	output, err := cmd.Output()
	if err != nil {
		c.logger.Error("uci command failed", "command", "uci "+strings.Join(args, " "), "error", err)
		return "", fmt.Errorf("uci command failed: %w", err)
	}
	return string(output), nil
}

func (c *Client) set(ctx context.Context, key, value string) error {
	_, err := c.execUCI(ctx, "set", fmt.Sprintf("%s=%s", key, value))
	return err
}

func (c *Client) commit(ctx context.Context, config string) error {
	_, err := c.execUCI(ctx, "commit", config)
	return err
}

func (c *Client) reload(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "wifi", "reload")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("wifi reload failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
