package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/NordCoder/Fisherman/internal/domain/provider"
)

type DirectoryConfig struct {
	NodesURL    string `mapstructure:"nodes_url"`
	GatewaysURL string `mapstructure:"gateways_url"`
	UsersURL    string `mapstructure:"users_url"`
	Token       string `mapstructure:"token"`
}

// HTTPDirectory reads provider and user lists from the portal.
type HTTPDirectory struct {
	client *http.Client
	cfg    DirectoryConfig
}

var _ provider.Directory = (*HTTPDirectory)(nil)

func NewHTTPDirectory(client *http.Client, cfg DirectoryConfig) *HTTPDirectory {
	return &HTTPDirectory{client: client, cfg: cfg}
}

// Fetch loads nodes then gateways; component_type is forced from the list
// each record came from. A missing users URL yields no users.
func (d *HTTPDirectory) Fetch(ctx context.Context) ([]provider.Provider, []provider.User, error) {
	var providers []provider.Provider
	for _, src := range []struct {
		url string
		ct  provider.ComponentType
	}{
		{d.cfg.NodesURL, provider.Node},
		{d.cfg.GatewaysURL, provider.Gateway},
	} {
		if src.url == "" {
			continue
		}
		var list []provider.Provider
		if err := d.getJSON(ctx, src.url, &list); err != nil {
			return nil, nil, fmt.Errorf("fetch %s list: %w", src.ct, err)
		}
		for i := range list {
			list[i].ComponentType = src.ct
		}
		providers = append(providers, list...)
	}

	var users []provider.User
	if d.cfg.UsersURL != "" {
		if err := d.getJSON(ctx, d.cfg.UsersURL, &users); err != nil {
			return nil, nil, fmt.Errorf("fetch users: %w", err)
		}
	}
	return providers, users, nil
}

func (d *HTTPDirectory) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if d.cfg.Token != "" {
		req.Header.Set("Authorization", d.cfg.Token)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", url, err)
	}
	return nil
}
