package uci

import (
	"context"
	"strconv"

	"github.com/open-acs/acsd/pkg/acs"
)

// Apply implements acs.BringUp: write the chosen channel into
// wireless.<wifiIface>.channel, commit, and reload the wifi subsystem.
// Any failure along the way is reported as acs.Invalid so the controller
// can record a handoff failure without guessing at partial state.
func (c *Client) Apply(ctx context.Context, channel int) (acs.Status, error) {
	key := "wireless." + c.wifiIface + ".channel"
	if err := c.set(ctx, key, strconv.Itoa(channel)); err != nil {
		return acs.Invalid, err
	}
	if err := c.commit(ctx, "wireless"); err != nil {
		return acs.Invalid, err
	}
	if err := c.reload(ctx); err != nil {
		return acs.Invalid, err
	}
	c.logger.Info("channel committed to wireless config", "interface", c.wifiIface, "channel", channel)
	return acs.Valid, nil
}
