package padclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/BertoldVdb/DualshockResearch/dualshock"
	"github.com/BertoldVdb/DualshockResearch/padnet"
)

// PadClient talks to a pad served by padserver.
type PadClient struct {
	client http.Client
	url    string

	last dualshock.Status
}

func New(url string) (*PadClient, error) {
	c := &PadClient{
		client: http.Client{
			Timeout: 10 * time.Second,
		},

		url: url,
	}

	if _, err := c.fetch(); err != nil {
		return nil, err
	}

	return c, nil
}

// NewDiscovered looks for a server named name on the local network.
func NewDiscovered(ctx context.Context, name string) (*PadClient, error) {
	result, err := padnet.Discover(ctx, name)
	if err != nil {
		return nil, err
	}

	return New("http://" + result.Addr)
}

func (c *PadClient) doReq(endpoint string, body []byte) ([]byte, error) {
	var rdr io.Reader
	t := "GET"

	if body != nil {
		rdr = bytes.NewBuffer(body)
		t = "POST"
	}

	req, err := http.NewRequest(t, c.url+"/"+endpoint, rdr)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("request error %s", resp.Status)
	}

	return ioutil.ReadAll(io.LimitReader(resp.Body, 8192))
}

func (c *PadClient) fetch() (dualshock.State, error) {
	raw, err := c.doReq("frame", nil)
	if err != nil {
		return dualshock.State{}, err
	}

	snap, err := padnet.UnmarshalState(raw)
	if err != nil {
		return dualshock.State{}, err
	}

	c.last = snap
	return snap.State, nil
}

// State fetches the state of the last poll done by the server.
func (c *PadClient) State() (dualshock.State, error) {
	return c.fetch()
}

// Poll makes the server poll the pad now and returns the new state.
func (c *PadClient) Poll() (dualshock.State, error) {
	if _, err := c.doReq("poll", []byte{}); err != nil {
		return dualshock.State{}, err
	}
	return c.fetch()
}

func (c *PadClient) SetMode(analog bool, locked bool) error {
	body, err := json.Marshal(struct {
		Analog bool
		Locked bool
	}{analog, locked})
	if err != nil {
		return err
	}

	if _, err := c.doReq("mode", body); err != nil {
		return err
	}

	_, err = c.fetch()
	return err
}

// IsDigital and IsLocked report the mode seen in the last fetched state.
func (c *PadClient) IsDigital() bool {
	return c.last.IsDigital
}

func (c *PadClient) IsLocked() bool {
	return c.last.IsLocked
}

func (c *PadClient) Close() error {
	return nil
}
