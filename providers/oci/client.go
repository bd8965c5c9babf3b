// Package oci wraps the Oracle Cloud SDK behind small domain-level
// clients. Everything above this package works with plain resource
// records, never SDK request or response types.
package oci

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/core"
	"github.com/oracle/oci-go-sdk/v65/identity"
	"github.com/rs/zerolog/log"
)

// Client bundles the SDK clients for one tenancy and profile.
type Client struct {
	compute  core.ComputeClient
	network  core.VirtualNetworkClient
	storage  core.BlockstorageClient
	identity identity.IdentityClient

	tenancyID string
	userID    string
	region    string

	// resolved lazily, most calls in the storage path need it
	availabilityDomain string
}

// New loads the named profile from an OCI config file and builds the
// SDK clients. Failures here are authentication problems, not
// connectivity ones.
func New(configFile, profile string) (*Client, error) {
	provider, err := common.ConfigurationProviderFromFileWithProfile(configFile, profile, "")
	if err != nil {
		return nil, &AuthError{Profile: profile, Err: err}
	}

	computeClient, err := core.NewComputeClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, &AuthError{Profile: profile, Err: fmt.Errorf("compute client: %w", err)}
	}
	networkClient, err := core.NewVirtualNetworkClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, &AuthError{Profile: profile, Err: fmt.Errorf("network client: %w", err)}
	}
	storageClient, err := core.NewBlockstorageClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, &AuthError{Profile: profile, Err: fmt.Errorf("blockstorage client: %w", err)}
	}
	identityClient, err := identity.NewIdentityClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, &AuthError{Profile: profile, Err: fmt.Errorf("identity client: %w", err)}
	}

	tenancyID, err := readConfigValue(configFile, profile, "tenancy")
	if err != nil {
		return nil, &AuthError{Profile: profile, Err: err}
	}
	region, err := readConfigValue(configFile, profile, "region")
	if err != nil {
		return nil, &AuthError{Profile: profile, Err: err}
	}
	// absent under session-token auth, templates tolerate an empty value
	userID, _ := readConfigValue(configFile, profile, "user")

	log.Debug().
		Str("profile", profile).
		Str("region", region).
		Msg("oci clients initialized")

	return &Client{
		compute:   computeClient,
		network:   networkClient,
		storage:   storageClient,
		identity:  identityClient,
		tenancyID: tenancyID,
		userID:    userID,
		region:    region,
	}, nil
}

// TenancyID returns the tenancy OCID the clients are scoped to.
func (c *Client) TenancyID() string { return c.tenancyID }

// UserID returns the user OCID, empty under session-token auth.
func (c *Client) UserID() string { return c.userID }

// Region returns the region from the loaded profile.
func (c *Client) Region() string { return c.region }

// VerifyConnectivity confirms the credentials actually reach the API.
func (c *Client) VerifyConnectivity(ctx context.Context) error {
	_, err := c.identity.GetTenancy(ctx, identity.GetTenancyRequest{
		TenancyId: common.String(c.tenancyID),
	})
	if err != nil {
		return &ConnectivityError{Op: "get tenancy", Err: err}
	}
	return nil
}

// AvailabilityDomain returns the first availability domain of the
// tenancy. Free-tier placement always uses the first one.
func (c *Client) AvailabilityDomain(ctx context.Context) (string, error) {
	if c.availabilityDomain != "" {
		return c.availabilityDomain, nil
	}

	resp, err := c.identity.ListAvailabilityDomains(ctx, identity.ListAvailabilityDomainsRequest{
		CompartmentId: common.String(c.tenancyID),
	})
	if err != nil {
		return "", &ConnectivityError{Op: "list availability domains", Err: err}
	}
	if len(resp.Items) == 0 {
		return "", &ConnectivityError{Op: "list availability domains", Err: fmt.Errorf("none found")}
	}

	c.availabilityDomain = *resp.Items[0].Name
	return c.availabilityDomain, nil
}

// readConfigValue pulls one key out of an OCI config profile section.
func readConfigValue(configFile, profile, key string) (string, error) {
	f, err := os.Open(configFile) // #nosec G304 -- path comes from run configuration
	if err != nil {
		return "", err
	}
	defer f.Close()

	inProfile := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inProfile = strings.Trim(line, "[]") == profile
			continue
		}
		if !inProfile {
			continue
		}
		// both "key=value" and "key = value" appear in the wild
		k, v, found := strings.Cut(line, "=")
		if found && strings.TrimSpace(k) == key {
			return strings.TrimSpace(v), nil
		}
	}
	return "", fmt.Errorf("key %s not found in profile %s of %s", key, profile, configFile)
}
