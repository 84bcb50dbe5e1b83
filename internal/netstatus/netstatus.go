package netstatus

import (
	"os"
	"path/filepath"
	"strings"
)

// Checker reports link state for one network interface by reading its sysfs
// operstate file. Polled once per tick by the presentation controller.
type Checker struct {
	iface string
}

func New(iface string) *Checker {
	return &Checker{iface: iface}
}

func (c *Checker) Up() bool {
	data, err := os.ReadFile(filepath.Join("/sys/class/net", c.iface, "operstate"))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "up"
}
