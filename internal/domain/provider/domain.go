package provider

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ComponentType int

const (
	Node ComponentType = iota
	Gateway
	DApi
)

func (t ComponentType) String() string {
	switch t {
	case Node:
		return "node"
	case Gateway:
		return "gateway"
	case DApi:
		return "dapi"
	default:
		return fmt.Sprintf("component(%d)", int(t))
	}
}

func ParseComponentType(s string) (ComponentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "node":
		return Node, nil
	case "gateway", "gw":
		return Gateway, nil
	case "dapi":
		return DApi, nil
	default:
		return 0, fmt.Errorf("unknown component type %q", s)
	}
}

func (t ComponentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ComponentType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("component_type: %w", err)
	}
	v, err := ParseComponentType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Provider is one monitored node, gateway or dAPI. Identity is ID.
type Provider struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	ComponentType ComponentType `json:"component_type"`
	Blockchain    string        `json:"blockchain"`
	Network       string        `json:"network"`
	IP            string        `json:"ip"`
	Zone          string        `json:"zone"`
	CountryCode   string        `json:"country_code"`
	Token         string        `json:"token"`
	Status        string        `json:"status"`
	Endpoint      string        `json:"endpoint,omitempty"`
}

func (p Provider) ServiceName() string {
	return fmt.Sprintf("%s-http-%s-%s-%s-%s", p.ComponentType, p.Blockchain, p.Network, p.ID, p.IP)
}

// URL is the explicit endpoint when set, otherwise scheme://ip.
func (p Provider) URL(scheme string) string {
	if p.Endpoint != "" {
		return p.Endpoint
	}
	return scheme + "://" + p.IP
}

// HostHeader is the virtual host the network routes to this provider.
func (p Provider) HostHeader(domain string) string {
	switch p.ComponentType {
	case Gateway:
		return p.ID + ".gw.mbr." + domain
	case DApi:
		return p.ID + ".dapi.mbr." + domain
	default:
		return p.ID + ".node.mbr." + domain
	}
}

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

func (u User) Identity() string {
	return fmt.Sprintf("id:%s,%s,email:%s", u.ID, u.Name, u.Email)
}
