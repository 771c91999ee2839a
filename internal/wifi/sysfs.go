package wifi

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"acoustimon/internal/errors"
)

const sysfsNetPath = "/sys/class/net"

// sysfsLink reads the kernel operstate file for status and shells out for
// connect and disconnect. The connect command is configurable; the default
// drives NetworkManager via nmcli.
type sysfsLink struct {
	iface          string
	connectArgv    []string
	disconnectArgv []string
}

func newSysfsLink(cfg Config) *sysfsLink {
	return &sysfsLink{
		iface:          cfg.Interface,
		connectArgv:    connectArgv(cfg),
		disconnectArgv: []string{"nmcli", "device", "disconnect", cfg.Interface},
	}
}

func (l *sysfsLink) Status() (bool, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(filepath.Join(sysfsNetPath, l.iface, "operstate"))
	if err != nil {
		return false, errFactory.Wrap(ErrStatusFailed, err)
	}

	return strings.TrimSpace(string(data)) == "up", nil
}

func (l *sysfsLink) Connect(ctx context.Context) error {
	errFactory := errors.New()

	cmd := exec.CommandContext(ctx, l.connectArgv[0], l.connectArgv[1:]...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return errFactory.Wrap(ErrConnectFailed, err).WithData(strings.TrimSpace(string(output)))
	}

	return nil
}

func (l *sysfsLink) Disconnect(ctx context.Context) error {
	errFactory := errors.New()

	cmd := exec.CommandContext(ctx, l.disconnectArgv[0], l.disconnectArgv[1:]...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return errFactory.Wrap(ErrDisconnectFailed, err).WithData(strings.TrimSpace(string(output)))
	}

	return nil
}

// connectArgv builds the connect command: an explicit override wins, then a
// fresh association when credentials are configured, then a plain
// reactivation of the interface's known profile. The override is split on
// whitespace; shell quoting is not supported.
func connectArgv(cfg Config) []string {
	if cfg.ConnectCmd != "" {
		return strings.Fields(cfg.ConnectCmd)
	}

	if cfg.SSID != "" {
		argv := []string{"nmcli", "device", "wifi", "connect", cfg.SSID}
		if cfg.PSK != "" {
			argv = append(argv, "password", cfg.PSK)
		}

		return append(argv, "ifname", cfg.Interface)
	}

	return []string{"nmcli", "device", "connect", cfg.Interface}
}
