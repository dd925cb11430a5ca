package padnet

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

const ServiceType = "_dualshock._tcp"

// ServerDiscovery advertises a pad server. Its methods may be called from
// several goroutines.
type ServerDiscovery struct {
	name string
	port int

	mu        sync.Mutex
	txtRecord []string

	currentAddr string
	server      *zeroconf.Server
}

func NewServerDiscovery(name string, port int) *ServerDiscovery {
	if name == "" {
		name = "dualshock"
	}

	return &ServerDiscovery{
		txtRecord: []string{"name=" + name, "mode=digital", "locked=0"},
		name:      name,
		port:      port,
	}
}

// SetMode updates the advertised pad mode.
func (w *ServerDiscovery) SetMode(isDigital bool, isLocked bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	/* SetText keeps the slice, so every update gets a fresh one */
	w.txtRecord = append([]string{}, w.txtRecord...)
	w.txtRecord[1] = "mode=analog"
	if isDigital {
		w.txtRecord[1] = "mode=digital"
	}

	w.txtRecord[2] = "locked=0"
	if isLocked {
		w.txtRecord[2] = "locked=1"
	}

	if w.server != nil {
		w.server.SetText(w.txtRecord)
	}
}

// text returns the current TXT record.
func (w *ServerDiscovery) text() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.txtRecord
}

func (w *ServerDiscovery) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stop()
}

func (w *ServerDiscovery) stop() {
	if w.server == nil {
		return
	}
	w.server.Shutdown()
	w.server = nil
	w.currentAddr = ""
}

func getIfaceAddressV4(iface *net.Interface) (string, error) {
	addrs, err := iface.Addrs()
	if err != nil {
		return "", err
	}

	for _, m := range addrs {
		k, ok := m.(*net.IPNet)
		if ok {
			if k.IP.To4() == nil {
				continue
			}

			return k.IP.String(), nil
		}
	}

	return "", nil
}

func getIfaceAddressV4Timeout(iface *net.Interface, maxWaitIP time.Duration) (string, error) {
	for deadline := time.Now().Add(maxWaitIP); time.Now().Before(deadline); {
		addr, err := getIfaceAddressV4(iface)
		if err != nil {
			return "", err
		}

		if addr != "" {
			return addr, nil
		}

		time.Sleep(250 * time.Millisecond)
	}

	return "", errors.New("timeout waiting for IPv4 address")
}

// Start advertises the service. With an empty interface name it is announced
// on all interfaces with the host's own addresses.
func (w *ServerDiscovery) Start(ifaceName string, maxWaitIP time.Duration) error {
	var iface *net.Interface
	var addr string
	if ifaceName != "" {
		var err error
		if iface, err = net.InterfaceByName(ifaceName); err != nil {
			return err
		}
		if addr, err = getIfaceAddressV4Timeout(iface, maxWaitIP); err != nil {
			return err
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.stop()

	if iface == nil {
		server, err := zeroconf.Register(w.name, ServiceType, "local.", w.port, w.txtRecord, nil)
		if err != nil {
			return err
		}
		server.TTL(60)

		w.currentAddr = fmt.Sprintf(":%d", w.port)
		w.server = server
		return nil
	}

	server, err := zeroconf.RegisterProxy(w.name, ServiceType, "local.", w.port, w.name, []string{addr}, w.txtRecord, []net.Interface{*iface})
	if err != nil {
		return err
	}
	server.TTL(60)

	w.currentAddr = fmt.Sprintf("%s:%d", addr, w.port)
	w.server = server
	return nil
}

func (w *ServerDiscovery) CurrentAddress() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.currentAddr
}
