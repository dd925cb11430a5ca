package padnet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grandcat/zeroconf"
)

type ServiceResult struct {
	Name      string
	IsDigital bool
	IsLocked  bool
	Addr      string
}

var ErrNotFound = errors.New("no pad server found")

func parseText(text []string) (ServiceResult, bool) {
	var result ServiceResult
	var mode string

	for _, m := range text {
		kv := strings.SplitN(m, "=", 2)
		if len(kv) != 2 {
			continue
		}

		switch strings.ToLower(kv[0]) {
		case "name":
			result.Name = kv[1]
		case "mode":
			mode = kv[1]
		case "locked":
			result.IsLocked = kv[1] == "1"
		}
	}

	switch mode {
	case "digital":
		result.IsDigital = true
	case "analog":
	default:
		return result, false
	}

	return result, result.Name != ""
}

func entryAddr(m *zeroconf.ServiceEntry) string {
	var addr string
	if len(m.AddrIPv4) > 0 {
		addr = m.AddrIPv4[0].String()
	} else if len(m.AddrIPv6) > 0 {
		addr = "[" + m.AddrIPv6[0].String() + "]"
	}

	return addr + fmt.Sprintf(":%d", m.Port)
}

// Discover browses for pad servers until ctx expires and returns the first
// one matching filterName. An empty filter accepts any server.
func Discover(ctx context.Context, filterName string) (ServiceResult, error) {
	var result ServiceResult

	/* A new resolver is made every time, the interfaces may have changed */
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return result, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, ServiceType, "local.", results); err != nil {
		return result, err
	}

	for m := range results {
		result, ok := parseText(m.Text)
		if !ok {
			continue
		}

		if filterName != "" && result.Name != filterName {
			continue
		}

		result.Addr = entryAddr(m)
		return result, nil
	}

	return result, ErrNotFound
}
