package provider

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceName(t *testing.T) {
	p := Provider{ID: "n1", ComponentType: Gateway, Blockchain: "eth", Network: "mainnet", IP: "10.0.0.1"}
	assert.Equal(t, "gateway-http-eth-mainnet-n1-10.0.0.1", p.ServiceName())
}

func TestHostHeader(t *testing.T) {
	cases := map[ComponentType]string{
		Node:    "p1.node.mbr.example.org",
		Gateway: "p1.gw.mbr.example.org",
		DApi:    "p1.dapi.mbr.example.org",
	}
	for ct, want := range cases {
		p := Provider{ID: "p1", ComponentType: ct}
		assert.Equal(t, want, p.HostHeader("example.org"), ct.String())
	}
}

func TestURL(t *testing.T) {
	p := Provider{IP: "10.0.0.1"}
	assert.Equal(t, "https://10.0.0.1", p.URL("https"))
	p.Endpoint = "http://127.0.0.1:8545"
	assert.Equal(t, "http://127.0.0.1:8545", p.URL("https"))
}

func TestComponentTypeJSON(t *testing.T) {
	var p Provider
	require.NoError(t, json.Unmarshal([]byte(`{"id":"g1","component_type":"gw","blockchain":"bsc"}`), &p))
	assert.Equal(t, Gateway, p.ComponentType)

	b, err := json.Marshal(Provider{ID: "d1", ComponentType: DApi})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"component_type":"dapi"`)

	assert.Error(t, json.Unmarshal([]byte(`{"component_type":"validator"}`), &p))
	assert.Equal(t, "component(9)", ComponentType(9).String())
}

func TestUserIdentity(t *testing.T) {
	u := User{ID: "u1", Name: "alice", Email: "a@x.io"}
	assert.Equal(t, "id:u1,alice,email:a@x.io", u.Identity())
}
